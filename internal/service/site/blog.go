package site

import (
	"fmt"
	"html/template"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/relware/sitegen/internal/entity"
	"github.com/spf13/afero"
)

const (
	dateLayout = "2006-01-02"

	// Post sources are named YYYY-MM-DD-slug.md.
	postNameParts = 4
)

// generateSection builds one chronological section (blog or news):
// per-post pages with prev/next navigation, a root listing with a tag
// index, and RSS/Atom feeds. Returns the posts newest-first.
func (g *Generator) generateSection(folder, title string) ([]*entity.Document, error) {
	srcDir := filepath.Join(g.cfg.InDir, folder)

	entries, err := afero.ReadDir(g.fs, srcDir)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s dir: %w", folder, err)
	}

	var docs []*entity.Document
	tagLookup := make(map[string]*entity.Tag)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			g.log.Info("Skipping file", slog.String("path", filepath.Join(srcDir, entry.Name())))

			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".md")
		parts := strings.SplitN(name, "-", postNameParts)
		if len(parts) < postNameParts {
			g.log.Warn("Post name is not YYYY-MM-DD-slug, skipping", slog.String("name", entry.Name()))

			continue
		}

		date, err := time.Parse(dateLayout, strings.Join(parts[:3], "-"))
		if err != nil {
			g.log.Warn("Cannot parse post date, skipping", slog.String("name", entry.Name()), slog.Any("error", err))

			continue
		}

		doc, err := g.docs.FromMarkdown(filepath.Join(srcDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		doc.Date = date

		if doc.Meta.Slug == "" {
			g.log.Warn("Post missing slug, using filename remainder",
				slog.String("name", entry.Name()), slog.String("slug", parts[3]))
			doc.Meta.Slug = parts[3]
		}

		doc.URL = "/" + folder + "/" + doc.Meta.Slug
		doc.Path = filepath.Join(folder, doc.Meta.Slug)

		for _, tag := range doc.Meta.Tags {
			t, exists := tagLookup[tag]
			if !exists {
				t = &entity.Tag{Name: tag}
				tagLookup[tag] = t
			}
			t.Articles = append(t.Articles, doc.Link())
		}

		docs = append(docs, doc)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Date.After(docs[j].Date)
	})

	// Newest-first, so Prev points at the newer neighbour.
	for i, doc := range docs {
		if i > 0 {
			doc.Prev = docs[i-1].Link()
		}
		if i < len(docs)-1 {
			doc.Next = docs[i+1].Link()
		}
	}

	sidebar, err := g.renderSidebar(title, docs)
	if err != nil {
		return nil, err
	}

	var rootPosts []string
	for _, doc := range docs {
		postHTML, err := buildTemplate(g.tmpl.Lookup(templateNameBlogPost),
			&PageContext{Doc: doc, Contents: template.HTML(doc.HTML)})
		if err != nil {
			return nil, err
		}
		rootPosts = append(rootPosts, postHTML)

		page, err := g.renderDoc(&PageContext{
			Title:    doc.Meta.Title,
			Contents: template.HTML(postHTML),
			Sidebar:  template.HTML(sidebar),
			Globals:  g.meta,
			Doc:      doc,
		})
		if err != nil {
			return nil, err
		}

		if err := g.writePage(doc.Path, page); err != nil {
			return nil, err
		}
	}

	tags := make([]*entity.Tag, 0, len(tagLookup))
	for _, tag := range tagLookup {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	// The section root lists every post in one continuous page.
	rootPage, err := g.renderDoc(&PageContext{
		Title:    title,
		Contents: template.HTML(strings.Join(rootPosts, "\n")),
		Sidebar:  template.HTML(sidebar),
		Globals:  g.meta,
		Tags:     tags,
	})
	if err != nil {
		return nil, err
	}

	if err := g.writePage(folder, rootPage); err != nil {
		return nil, err
	}

	if err := g.writeFeeds(folder, title, docs); err != nil {
		return nil, err
	}

	g.log.Info("Wrote section", slog.String("folder", folder), slog.Int("posts", len(docs)))

	return docs, nil
}

func (g *Generator) renderSidebar(title string, docs []*entity.Document) (string, error) {
	ctx := &SidebarContext{Title: title}
	for _, doc := range docs {
		ctx.Links = append(ctx.Links, doc.Link())
	}

	return buildTemplate(g.tmpl.Lookup(templateNameBlogSidebar), ctx)
}

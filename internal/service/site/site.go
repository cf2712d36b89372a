package site

import (
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "embed"

	"github.com/relware/sitegen/internal/config"
	"github.com/relware/sitegen/internal/entity"
	"github.com/spf13/afero"
)

const (
	serviceName = "site"

	templateNameDoc         = "doc"
	templateNameBlogPost    = "blog_post"
	templateNameBlogSidebar = "blog_sidebar"

	indexFileName = "index.html"
)

var (
	//go:embed templates/doc.html
	defaultDocTemplate []byte

	//go:embed templates/blog_post.html
	defaultBlogPostTemplate []byte

	//go:embed templates/blog_sidebar.html
	defaultBlogSidebarTemplate []byte
)

// DocumentParser converts a markdown source into a Document.
type DocumentParser interface {
	FromMarkdown(path string) (*entity.Document, error)
}

// PageContext is the data every template executes against.
type PageContext struct {
	Title    string
	Contents template.HTML
	Sidebar  template.HTML
	Globals  *entity.GlobalMeta
	Doc      *entity.Document
	Tags     []*entity.Tag
}

// SidebarContext feeds the blog_sidebar template.
type SidebarContext struct {
	Title string
	Links []*entity.DocLink
}

// Generator writes the whole static site: plain pages, the download
// pages rendered from GlobalMeta, blog and news sections with feeds, and
// the static asset tree.
type Generator struct {
	fs   afero.Fs
	cfg  *config.SiteConfig
	docs DocumentParser
	meta *entity.GlobalMeta
	tmpl *template.Template
	log  *slog.Logger
}

func NewGenerator(fs afero.Fs, cfg *config.SiteConfig, docs DocumentParser, meta *entity.GlobalMeta, log *slog.Logger) (*Generator, error) {
	g := &Generator{
		fs:   fs,
		cfg:  cfg,
		docs: docs,
		meta: meta,
		log:  log.With(slog.String("service", serviceName)),
	}

	tmpl, err := g.loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("cannot load templates: %w", err)
	}
	g.tmpl = tmpl

	return g, nil
}

// loadTemplates parses the built-in templates, letting any file of the
// same name in the template directory take precedence.
func (g *Generator) loadTemplates() (*template.Template, error) {
	tmpl := template.New("")

	builtin := []struct {
		name    string
		content []byte
	}{
		{templateNameDoc, defaultDocTemplate},
		{templateNameBlogPost, defaultBlogPostTemplate},
		{templateNameBlogSidebar, defaultBlogSidebarTemplate},
	}

	var err error
	for _, bt := range builtin {
		content := bt.content

		path := filepath.Join(g.cfg.InDir, g.cfg.TemplateDir, bt.name+".html")
		if g.fileExists(path) {
			content, err = afero.ReadFile(g.fs, path)
			if err != nil {
				return nil, fmt.Errorf("cannot read template file %s: %w", path, err)
			}
		}

		tmpl, err = tmpl.New(bt.name).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("cannot parse template %s: %w", bt.name, err)
		}
	}

	return tmpl, nil
}

// Generate runs the whole build. Any failure aborts it, a half-written
// output tree is never served.
func (g *Generator) Generate() error {
	if err := g.fs.MkdirAll(g.cfg.OutDir, 0755); err != nil {
		return fmt.Errorf("cannot create output dir: %w", err)
	}

	if err := g.copyStatic(); err != nil {
		return fmt.Errorf("cannot copy static files: %w", err)
	}

	if err := g.generatePages(); err != nil {
		return fmt.Errorf("cannot generate pages: %w", err)
	}

	if _, err := g.generateSection(g.cfg.BlogDir, "Blog"); err != nil {
		return fmt.Errorf("cannot generate blog: %w", err)
	}

	if _, err := g.generateSection(g.cfg.NewsDir, "News"); err != nil {
		return fmt.Errorf("cannot generate news: %w", err)
	}

	return nil
}

// generatePages renders every file of the pages directory by extension:
// markdown and html get wrapped into the doc template, .tmpl files are
// executed directly against GlobalMeta (the download tables live there),
// everything else is skipped.
func (g *Generator) generatePages() error {
	dir := filepath.Join(g.cfg.InDir, g.cfg.PagesDir)

	entries, err := afero.ReadDir(g.fs, dir)
	if err != nil {
		return fmt.Errorf("cannot read pages dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		path := filepath.Join(dir, name)

		switch ext {
		case ".md":
			doc, err := g.docs.FromMarkdown(path)
			if err != nil {
				return err
			}

			title := doc.Meta.Title
			if title == "" {
				title = base
			}

			html, err := g.renderDoc(&PageContext{Title: title, Contents: template.HTML(doc.HTML), Globals: g.meta})
			if err != nil {
				return err
			}

			if err := g.writePage(base, html); err != nil {
				return err
			}
		case ".html":
			content, err := afero.ReadFile(g.fs, path)
			if err != nil {
				return fmt.Errorf("cannot read page %s: %w", path, err)
			}

			html, err := g.renderDoc(&PageContext{Title: base, Contents: template.HTML(content), Globals: g.meta})
			if err != nil {
				return err
			}

			if err := g.writePage(base, html); err != nil {
				return err
			}
		case ".tmpl":
			html, err := g.renderPageTemplate(path)
			if err != nil {
				return err
			}

			if base == "index" {
				// The site root stays a plain index.html.
				if err := g.writeFile(filepath.Join(g.cfg.OutDir, indexFileName), html); err != nil {
					return err
				}

				continue
			}

			if err := g.writePage(base, html); err != nil {
				return err
			}
		default:
			g.log.Info("Ignoring page source", slog.String("path", path))
		}
	}

	return nil
}

// renderPageTemplate executes a standalone page template. These pages are
// not wrapped into the doc template; they bring their own chrome.
func (g *Generator) renderPageTemplate(path string) (string, error) {
	content, err := afero.ReadFile(g.fs, path)
	if err != nil {
		return "", fmt.Errorf("cannot read page template %s: %w", path, err)
	}

	tmpl, err := g.tmpl.Clone()
	if err != nil {
		return "", fmt.Errorf("cannot clone templates: %w", err)
	}

	tmpl, err = tmpl.New(filepath.Base(path)).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("cannot parse page template %s: %w", path, err)
	}

	return buildTemplate(tmpl, &PageContext{Title: g.cfg.Title, Globals: g.meta})
}

func (g *Generator) renderDoc(ctx *PageContext) (string, error) {
	return buildTemplate(g.tmpl.Lookup(templateNameDoc), ctx)
}

// writePage emits a page as <slug>/index.html so it is served without an
// extension in the URL.
func (g *Generator) writePage(slug, html string) error {
	return g.writeFile(filepath.Join(g.cfg.OutDir, slug, indexFileName), html)
}

func (g *Generator) writeFile(path, content string) error {
	if err := g.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("cannot create dir for %s: %w", path, err)
	}

	if err := afero.WriteFile(g.fs, path, []byte(content), 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}

	g.log.Info("Wrote page", slog.String("path", path))

	return nil
}

// copyStatic mirrors the static directory into the output tree and
// promotes the favicon to the site root.
func (g *Generator) copyStatic() error {
	src := filepath.Join(g.cfg.InDir, g.cfg.StaticDir)

	exists, err := afero.DirExists(g.fs, src)
	if err != nil {
		return err
	}
	if !exists {
		g.log.Warn("No static dir, skipping", slog.String("path", src))

		return nil
	}

	err = afero.Walk(g.fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(g.cfg.OutDir, g.cfg.StaticDir, rel)

		if info.IsDir() {
			return g.fs.MkdirAll(target, 0755)
		}

		data, err := afero.ReadFile(g.fs, path)
		if err != nil {
			return err
		}

		return afero.WriteFile(g.fs, target, data, 0644)
	})
	if err != nil {
		return err
	}

	favicon := filepath.Join(src, "img", "favicon.ico")
	if g.fileExists(favicon) {
		data, err := afero.ReadFile(g.fs, favicon)
		if err != nil {
			return err
		}

		return afero.WriteFile(g.fs, filepath.Join(g.cfg.OutDir, "favicon.ico"), data, 0644)
	}

	return nil
}

func (g *Generator) fileExists(path string) bool {
	if path == "" {
		return false
	}

	_, err := g.fs.Stat(path)

	return err == nil
}

func buildTemplate(tmpl *template.Template, data any) (string, error) {
	if tmpl == nil {
		return "", fmt.Errorf("template is not defined")
	}

	buf := strings.Builder{}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("cannot execute template: %w", err)
	}

	return buf.String(), nil
}

package site

import (
	"fmt"
	"path/filepath"

	"github.com/gorilla/feeds"
	"github.com/relware/sitegen/internal/entity"
)

const (
	rssFileName  = "rss.xml"
	atomFileName = "atom.xml"
)

// writeFeeds emits RSS and Atom feeds for one section. Posts arrive
// newest-first; feed readers get them in that order.
func (g *Generator) writeFeeds(folder, title string, docs []*entity.Document) error {
	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s - %s", g.cfg.Title, title),
		Link:        &feeds.Link{Href: g.cfg.URL + "/" + folder},
		Description: title,
	}
	if len(docs) > 0 {
		feed.Created = docs[0].Date
	}

	for _, doc := range docs {
		item := &feeds.Item{
			Title:       doc.Meta.Title,
			Link:        &feeds.Link{Href: g.cfg.URL + doc.URL},
			Description: doc.Meta.Summary,
			Content:     doc.HTML,
			Created:     doc.Date,
			Id:          g.cfg.URL + doc.URL,
		}
		if doc.Meta.Author != "" {
			item.Author = &feeds.Author{Name: doc.Meta.Author}
		}

		feed.Items = append(feed.Items, item)
	}

	rss, err := feed.ToRss()
	if err != nil {
		return fmt.Errorf("cannot render rss feed for %s: %w", folder, err)
	}
	if err := g.writeFile(filepath.Join(g.cfg.OutDir, folder, rssFileName), rss); err != nil {
		return err
	}

	atom, err := feed.ToAtom()
	if err != nil {
		return fmt.Errorf("cannot render atom feed for %s: %w", folder, err)
	}

	return g.writeFile(filepath.Join(g.cfg.OutDir, folder, atomFileName), atom)
}

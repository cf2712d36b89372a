package mdadapter

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/relware/sitegen/internal/entity"
	"github.com/relware/sitegen/internal/util"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

// Adapter converts markdown source files into Documents: GFM markdown to
// HTML plus the decoded YAML frontmatter. Raw HTML in the source is passed
// through, site content is trusted input.
type Adapter struct {
	fs  afero.Fs
	md  goldmark.Markdown
	log *slog.Logger
}

func New(fs afero.Fs, log *slog.Logger) *Adapter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			&frontmatter.Extender{},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)

	return &Adapter{
		fs:  fs,
		md:  md,
		log: log.With(slog.String("item", "MDAdapter")),
	}
}

// FromMarkdown reads and converts one markdown file. A document without
// frontmatter is fine, its Meta just stays empty.
func (a *Adapter) FromMarkdown(path string) (*entity.Document, error) {
	src, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read md file: %w", err)
	}

	var buf bytes.Buffer
	ctx := parser.NewContext()
	if err := a.md.Convert(src, &buf, parser.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("cannot convert markdown %s: %w", path, err)
	}

	doc := &entity.Document{
		ID:   util.GetIDFromString(path),
		HTML: buf.String(),
	}

	if fm := frontmatter.Get(ctx); fm != nil {
		if err := fm.Decode(&doc.Meta); err != nil {
			return nil, fmt.Errorf("cannot decode frontmatter of %s: %w", path, err)
		}
	} else {
		a.log.Debug("Document has no frontmatter", slog.String("path", path))
	}

	return doc, nil
}

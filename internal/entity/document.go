package entity

import "time"

// DocMeta is the YAML frontmatter of a markdown document.
type DocMeta struct {
	Title   string   `yaml:"title"`
	Slug    string   `yaml:"slug"`
	Author  string   `yaml:"author"`
	Summary string   `yaml:"summary"`
	Tags    []string `yaml:"tags"`
}

// DocLink is a rendered reference to another document (sidebar entries,
// prev/next navigation, tag indexes).
type DocLink struct {
	Title string
	URL   string
	Date  string
}

// Document is one converted page or post. Date is zero for plain pages
// and taken from the source filename for blog/news posts.
type Document struct {
	ID   string // Stable hash of the source path
	Meta DocMeta
	HTML string // Converted body, without the surrounding chrome
	Date time.Time
	URL  string // Site-absolute URL, e.g. /blog/my-post
	Path string // Output path relative to the output root

	Prev *DocLink
	Next *DocLink
}

// Link returns the document as a navigation link.
func (d *Document) Link() *DocLink {
	link := &DocLink{Title: d.Meta.Title, URL: d.URL}
	if !d.Date.IsZero() {
		link.Date = d.Date.Format("2006-01-02")
	}

	return link
}

// Tag collects the posts published under one tag.
type Tag struct {
	Name     string
	Articles []*DocLink
}

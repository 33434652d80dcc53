// Package renderer turns markdown posts into HTML fragments and minifies the
// finished pages.
package renderer

import (
	"bytes"
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	htmlRenderer "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Options tunes post rendering.
type Options struct {
	// TOCMinLevel and TOCMaxLevel bound the headings listed in a post's
	// table of contents. Every heading still gets an anchor.
	TOCMinLevel int
	TOCMaxLevel int
}

// DefaultOptions lists h2 and h3 only; the post title is the page's h1.
func DefaultOptions() Options {
	return Options{TOCMinLevel: 2, TOCMaxLevel: 3}
}

// Heading is one table of contents entry.
type Heading struct {
	ID    string
	Text  string
	Level int
}

// Document is a rendered post.
type Document struct {
	HTML      []byte
	PlainText string
	TOC       []Heading
	// Meta holds the raw front matter; nil when the source has none.
	Meta map[string]any
}

// Renderer is safe for concurrent use.
type Renderer struct {
	md       goldmark.Markdown
	minifier *minify.M
	opts     Options
}

// New builds a renderer with GitHub flavored markdown, footnotes, definition
// lists, typographic quotes and class based code highlighting.
func New(opts Options) *Renderer {
	if opts.TOCMinLevel <= 0 {
		opts.TOCMinLevel = 1
	}
	if opts.TOCMaxLevel < opts.TOCMinLevel {
		opts.TOCMaxLevel = 6
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.DefinitionList,
			extension.Footnote,
			extension.Typographer,
			highlighter(),
			meta.Meta,
		),
		goldmark.WithParserOptions(parser.WithAttribute()),
		goldmark.WithRendererOptions(htmlRenderer.WithUnsafe()),
	)
	return &Renderer{md: md, minifier: newMinifier(), opts: opts}
}

// Render converts a markdown post, front matter included, into HTML.
func (r *Renderer) Render(src []byte) (*Document, error) {
	pc := parser.NewContext()
	root := r.md.Parser().Parse(text.NewReader(src), parser.WithContext(pc))

	doc := &Document{Meta: frontMatter(pc)}
	doc.TOC, doc.PlainText = r.outline(root, src)

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, root); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	doc.HTML = buf.Bytes()
	return doc, nil
}

func frontMatter(pc parser.Context) map[string]any {
	raw := meta.Get(pc)
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	return out
}

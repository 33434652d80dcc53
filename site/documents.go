package site

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/s0l0c0ding/solocoding/content"
	"github.com/s0l0c0ding/solocoding/renderer"
	"github.com/s0l0c0ding/solocoding/templatex"
)

// PostStore wraps the content scan and markdown rendering of the posts folder.
type PostStore struct {
	scanner  *content.Scanner
	renderer *renderer.Renderer
	logger   *slog.Logger
}

func newPostStore(folder, pattern string, renderer *renderer.Renderer, logger *slog.Logger) *PostStore {
	return &PostStore{
		scanner:  content.NewScanner(folder, pattern, logger),
		renderer: renderer,
		logger:   logger,
	}
}

// Folder returns the scanned content folder.
func (d *PostStore) Folder() string {
	return d.scanner.Dir()
}

// List scans the folder. An empty folder yields no records and no error.
func (d *PostStore) List(ctx context.Context) ([]content.Record, error) {
	records, err := d.scanner.Scan(ctx)
	if errors.Is(err, content.ErrNoContent) {
		d.logger.Warn("scan", "folder", d.scanner.Dir(), "error", err)
		return nil, nil
	}
	return records, err
}

// RenderPost renders the markdown body of rec.
func (d *PostStore) RenderPost(rec content.Record) (post, error) {
	data, err := d.scanner.Read(rec)
	if err != nil {
		return post{}, fmt.Errorf("read %s: %w", rec.SourceFile, err)
	}

	rendered, err := d.renderer.Render(data)
	if err != nil {
		return post{}, fmt.Errorf("render %s: %w", rec.SourceFile, err)
	}

	sections := make([]templatex.TOCEntry, 0, len(rendered.TOC))
	for _, heading := range rendered.TOC {
		sections = append(sections, templatex.TOCEntry{ID: heading.ID, Text: heading.Text, Level: heading.Level})
	}

	if rec.Title == "" {
		if title, ok := rendered.Meta["title"].(string); ok {
			rec.Title = title
		} else {
			rec.Title = deriveTitle(rec.Slug)
		}
	}

	return post{
		Record:    rec,
		HTML:      template.HTML(rendered.HTML),
		Sections:  sections,
		Summary:   summarize(firstNonEmpty(rec.Description, rendered.PlainText)),
		PlainText: rendered.PlainText,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

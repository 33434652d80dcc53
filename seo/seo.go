// Package seo computes the title and social meta tags of a page and writes
// them into its rendered head.
package seo

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/s0l0c0ding/solocoding/config"
	"github.com/s0l0c0ding/solocoding/plugins"
)

const (
	twitterTitleLimit       = 69
	twitterDescriptionLimit = 123
)

// Defaults are the site-wide values used when a route carries no content metadata.
type Defaults struct {
	URLPrefix   string
	SiteName    string
	Twitter     string
	Description string
	Image       string
}

// DefaultsFromConfig extracts the tag defaults from the site configuration.
func DefaultsFromConfig(cfg *config.Config) Defaults {
	return Defaults{
		URLPrefix:   cfg.BaseURL,
		SiteName:    cfg.SiteName,
		Twitter:     cfg.Twitter,
		Description: cfg.Description,
		Image:       cfg.Image,
	}
}

// Tag is a single meta element. Open Graph keys are written with the
// property attribute, everything else with name.
type Tag struct {
	Key     string
	Content string
}

// Attr returns the attribute the tag is identified by.
func (t Tag) Attr() string {
	if strings.HasPrefix(t.Key, "og:") || strings.HasPrefix(t.Key, "article:") {
		return "property"
	}
	return "name"
}

// Head is the computed title and tag set of a page.
type Head struct {
	Title string
	Tags  []Tag
}

// Get returns the content of the tag with key.
func (h Head) Get(key string) (string, bool) {
	for _, t := range h.Tags {
		if t.Key == key {
			return t.Content, true
		}
	}
	return "", false
}

// Build computes the head of route. Posts with a title get article tags from
// their record; every other page gets the site defaults.
func Build(d Defaults, route plugins.HandledRoute) Head {
	pageURL := d.absolute(route.Route)
	head := Head{Tags: []Tag{
		{Key: "twitter:url", Content: pageURL},
		{Key: "og:url", Content: pageURL},
		{Key: "og:site_name", Content: d.SiteName},
		{Key: "twitter:creator", Content: d.Twitter},
		{Key: "twitter:site", Content: d.Twitter},
	}}

	if rec := route.Data; rec != nil && strings.TrimSpace(rec.Title) != "" {
		description := rec.Description
		if description == "" {
			description = d.Description
		}
		image := d.asset(rec.Photo)
		if rec.Photo == "" {
			image = d.asset(d.Image)
		}
		head.Title = rec.Title
		head.Tags = append(head.Tags,
			Tag{Key: "description", Content: description},
			Tag{Key: "image", Content: image},
			Tag{Key: "og:title", Content: rec.Title},
			Tag{Key: "og:description", Content: description},
			Tag{Key: "og:type", Content: "article"},
		)
		if section := rec.PrimaryKeyword(); section != "" {
			head.Tags = append(head.Tags, Tag{Key: "article:section", Content: section})
		}
		head.Tags = append(head.Tags,
			Tag{Key: "og:image", Content: image},
			Tag{Key: "twitter:title", Content: truncate(rec.Title, twitterTitleLimit)},
			Tag{Key: "twitter:description", Content: truncate(description, twitterDescriptionLimit)},
			Tag{Key: "twitter:image", Content: image},
		)
		return head
	}

	title := strings.TrimSpace(route.Title)
	if title == "" {
		title = d.SiteName
	}
	image := d.asset(d.Image)
	head.Title = title
	head.Tags = append(head.Tags,
		Tag{Key: "description", Content: d.Description},
		Tag{Key: "image", Content: image},
		Tag{Key: "og:title", Content: title},
		Tag{Key: "og:description", Content: d.Description},
		Tag{Key: "og:type", Content: "website"},
		Tag{Key: "og:image", Content: image},
		Tag{Key: "twitter:title", Content: title},
		Tag{Key: "twitter:description", Content: truncate(d.Description, twitterDescriptionLimit)},
		Tag{Key: "twitter:image", Content: image},
	)
	return head
}

// Apply writes head into the document: the title is replaced, existing tags
// are updated in place and missing ones are appended to <head>.
func Apply(document string, head Head) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}
	headSel := doc.Find("head").First()

	if head.Title != "" {
		if title := headSel.Find("title"); title.Length() > 0 {
			title.First().SetText(head.Title)
			title.Slice(1, title.Length()).Remove()
		} else {
			headSel.PrependHtml("<title>" + html.EscapeString(head.Title) + "</title>")
		}
	}

	for _, tag := range head.Tags {
		sel := headSel.Find(fmt.Sprintf(`meta[%s=%q]`, tag.Attr(), tag.Key))
		if sel.Length() > 0 {
			sel.SetAttr("content", tag.Content)
			continue
		}
		headSel.AppendHtml(fmt.Sprintf(`<meta %s="%s" content="%s">`,
			tag.Attr(), html.EscapeString(tag.Key), html.EscapeString(tag.Content)))
	}

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	return out, nil
}

// SocialTags returns the render plugin that applies Build and Apply to every page.
func SocialTags(d Defaults) plugins.RenderFunc {
	return func(_ context.Context, document string, route plugins.HandledRoute) (string, error) {
		return Apply(document, Build(d, route))
	}
}

func (d Defaults) absolute(route string) string {
	prefix := strings.TrimRight(d.URLPrefix, "/")
	if route == "" || route == "/" {
		return prefix + "/"
	}
	return prefix + "/" + strings.TrimPrefix(route, "/")
}

func (d Defaults) asset(p string) string {
	return strings.TrimRight(d.URLPrefix, "/") + "/" + strings.TrimPrefix(p, "/")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

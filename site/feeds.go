package site

import (
	"bytes"
	"encoding/xml"
	"time"

	"github.com/s0l0c0ding/solocoding/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Categories  []string `xml:"category,omitempty"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
}

// buildSitemap lists every rendered route; post routes carry their date.
func (s *Service) buildSitemap(routes []string, records map[string]content.Record) ([]byte, error) {
	urls := make([]sitemapURL, 0, len(routes))
	for _, route := range routes {
		u := sitemapURL{Loc: s.cfg.AbsoluteURL(route)}
		if rec, ok := records[route]; ok {
			if t, ok := rec.PublishedAt(); ok {
				u.LastMod = t.Format("2006-01-02")
			}
		}
		urls = append(urls, u)
	}
	return encodeXML(sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	})
}

// buildFeed renders an RSS 2.0 feed of the posts, newest first.
func (s *Service) buildFeed(posts []content.Record) ([]byte, error) {
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		pubDate := ""
		if t, ok := p.PublishedAt(); ok {
			pubDate = t.Format(time.RFC1123Z)
		}
		link := s.cfg.AbsoluteURL(p.Route)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        link,
			Description: p.Description,
			Categories:  p.Keywords,
			PubDate:     pubDate,
			GUID:        link,
		})
	}
	return encodeXML(rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       s.cfg.SiteName,
			Link:        s.cfg.AbsoluteURL("/"),
			Description: s.cfg.Description,
			Language:    content.DefaultLanguage,
			Items:       items,
		},
	})
}

func encodeXML(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

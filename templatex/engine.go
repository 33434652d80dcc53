package templatex

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/s0l0c0ding/solocoding/category"
	"github.com/s0l0c0ding/solocoding/config"
	"github.com/s0l0c0ding/solocoding/content"
)

const (
	HomeContentTemplate      = "content-home"
	DashboardContentTemplate = "content-dashboard"
	PostContentTemplate      = "content-post"
	AboutContentTemplate     = "content-about"
	PortfolioContentTemplate = "content-portfolio"
	TrainingContentTemplate  = "content-training"
	DonateContentTemplate    = "content-donate"
	NotFoundContentTemplate  = "content-404"
	LayoutTemplate           = "layout"
)

//go:embed default/*.html default/partials/*.html
var defaultTheme embed.FS

// Engine is a thin wrapper around Go templates with a fallback default theme.
type Engine struct {
	templates *template.Template
	StaticDir string
}

// PageData represents the data model expected by the layout and content
// templates. ContentHTML is filled by Render from ContentTemplate.
type PageData struct {
	Title           string
	PageTitle       string
	SiteName        string
	Twitter         string
	BaseURL         string
	BasePath        string
	ContentTemplate string
	ContentHTML     template.HTML
	BodyHTML        template.HTML
	Sections        []TOCEntry
	Breadcrumbs     []Breadcrumb
	ActivePath      string
	RequestedPath   string
	Posts           []content.Record
	Post            *content.Record
	Selection       category.Selection
	Categories      []NavCategory
	Features        config.FeaturesConfig
	Courses         []Course
	SearchIndexURL  string
	Year            int
	Meta            Meta
}

// Meta holds the head fields rendered by the layout before social tags are applied.
type Meta struct {
	Description string
}

// TOCEntry models a single heading of a post.
type TOCEntry struct {
	ID    string
	Text  string
	Level int
}

// Breadcrumb models a single breadcrumb entry for navigation.
type Breadcrumb struct {
	Title   string
	Path    string
	Current bool
}

// NavCategory is a dashboard link in the navigation bar.
type NavCategory struct {
	Keyword string
	Route   string
	Badge   string
	Active  bool
}

// Course is an entry of the training page.
type Course struct {
	Title       string
	Subtitle    string
	Description string
	Technology  []string
	Language    string
	URL         string
	Coupon      string
	Border      string
	Photo       string
}

// Load instantiates an engine using files from templateDir. An empty
// templateDir selects the embedded default theme.
func Load(templateDir string) (*Engine, error) {
	engine := &Engine{}

	if strings.TrimSpace(templateDir) == "" {
		tpl, err := template.New("root").Funcs(funcMap()).ParseFS(defaultTheme, "default/*.html", "default/partials/*.html")
		if err != nil {
			return nil, fmt.Errorf("parse default theme: %w", err)
		}
		if tpl.Lookup(LayoutTemplate) == nil {
			return nil, fmt.Errorf("template %q is not defined", LayoutTemplate)
		}
		engine.templates = tpl
		return engine, nil
	}

	files := make([]string, 0)
	mainFiles, err := filepath.Glob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("glob main templates: %w", err)
	}
	files = append(files, mainFiles...)

	partialsDir := filepath.Join(templateDir, "partials")
	if info, err := os.Stat(partialsDir); err == nil && info.IsDir() {
		partialFiles, err := filepath.Glob(filepath.Join(partialsDir, "*.html"))
		if err != nil {
			return nil, fmt.Errorf("glob partial templates: %w", err)
		}
		files = append(files, partialFiles...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found in %s", templateDir)
	}

	sort.Strings(files)

	tpl, err := template.New("root").Funcs(funcMap()).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	if tpl.Lookup(LayoutTemplate) == nil {
		return nil, fmt.Errorf("template %q is not defined", LayoutTemplate)
	}

	engine.templates = tpl

	assetsPath := filepath.Join(templateDir, "assets")
	if info, err := os.Stat(assetsPath); err == nil && info.IsDir() {
		engine.StaticDir = assetsPath
	}

	return engine, nil
}

// DefaultTheme exposes the embedded theme, mainly for tooling that wants to
// scaffold a template directory from it.
func DefaultTheme() fs.FS {
	sub, err := fs.Sub(defaultTheme, "default")
	if err != nil {
		panic(err)
	}
	return sub
}

// Render writes the rendered layout into the provided writer.
func (e *Engine) Render(w io.Writer, data *PageData) error {
	if e.templates == nil {
		return fmt.Errorf("template engine not initialized")
	}
	if data == nil {
		return fmt.Errorf("missing page data")
	}
	if strings.TrimSpace(data.ContentTemplate) == "" {
		data.ContentTemplate = NotFoundContentTemplate
	}
	if strings.TrimSpace(data.RequestedPath) == "" {
		data.RequestedPath = data.ActivePath
	}
	if e.templates.Lookup(data.ContentTemplate) == nil {
		return fmt.Errorf("content template %q is not defined", data.ContentTemplate)
	}

	var body bytes.Buffer
	if err := e.templates.ExecuteTemplate(&body, data.ContentTemplate, data); err != nil {
		return fmt.Errorf("render %s: %w", data.ContentTemplate, err)
	}
	data.ContentHTML = template.HTML(body.String())
	return e.templates.ExecuteTemplate(w, LayoutTemplate, data)
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"safeHTML": func(v any) template.HTML {
			switch value := v.(type) {
			case template.HTML:
				return value
			case string:
				return template.HTML(value)
			default:
				return ""
			}
		},
		"baseHref": func(base string) string {
			base = strings.TrimSpace(base)
			if base == "" || base == "/" {
				return "/"
			}
			trimmed := strings.Trim(base, "/")
			return "/" + trimmed + "/"
		},
		"badge":         category.Badge,
		"categoryParam": CategoryParam,
		"affiliate":     func(f config.FeaturesConfig, keyword string) string { return f.AffiliateLink(keyword) },
		"formatDate":    FormatDate,
		"isoDate":       ISODate,
		"join":          func(items []string, sep string) string { return strings.Join(items, sep) },
	}
}

// CategoryParam is the dashboard parameter listing keyword posts in language.
func CategoryParam(keyword, language string) string {
	return category.Selection{Keyword: keyword, Language: language}.Param()
}

// FormatDate renders a front matter date for humans; unparseable input is returned as is.
func FormatDate(raw string) string {
	t, ok := content.ParseDate(raw)
	if !ok {
		return raw
	}
	return t.Format("Jan 2, 2006")
}

// ISODate renders a front matter date as RFC 3339 or "" when it cannot be parsed.
func ISODate(raw string) string {
	t, ok := content.ParseDate(raw)
	if !ok {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

package templatex

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/s0l0c0ding/solocoding/category"
	"github.com/s0l0c0ding/solocoding/config"
	"github.com/s0l0c0ding/solocoding/content"
)

func TestDefaultThemeRendersEveryPage(t *testing.T) {
	engine, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	post := &content.Record{Route: "/blog/hello", Title: "Hello", Keywords: []string{"spring"}, Date: "2021-03-04"}
	features := config.FeaturesConfig{AmazonLinksEnabled: true, AmazonLinks: map[string]string{"all": "https://amzn.example/all"}}

	for _, name := range []string{
		HomeContentTemplate, DashboardContentTemplate, PostContentTemplate, AboutContentTemplate,
		PortfolioContentTemplate, TrainingContentTemplate, DonateContentTemplate, NotFoundContentTemplate,
	} {
		data := &PageData{
			Title:           "T",
			PageTitle:       "T - soloCoding",
			SiteName:        "soloCoding",
			ContentTemplate: name,
			BodyHTML:        template.HTML("<p>body</p>"),
			Posts:           []content.Record{*post},
			Post:            post,
			Selection:       category.Selection{Keyword: "spring", Language: "en"},
			Features:        features,
			Courses:         []Course{{Title: "Course", Technology: []string{"a", "b"}}},
		}
		var buf bytes.Buffer
		if err := engine.Render(&buf, data); err != nil {
			t.Fatalf("Render(%s): %v", name, err)
		}
		out := buf.String()
		if !strings.Contains(out, "</head>") || !strings.Contains(out, "<title>T - soloCoding</title>") {
			t.Fatalf("Render(%s) missing head: %s", name, out)
		}
	}
}

func TestPostPageCarriesArticleAndAffiliate(t *testing.T) {
	engine, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	post := &content.Record{Route: "/blog/hello", Title: "Hello", Keywords: []string{"java"}, Date: "2021-03-04"}
	data := &PageData{
		ContentTemplate: PostContentTemplate,
		BodyHTML:        template.HTML("<p>body</p>"),
		Post:            post,
		Features: config.FeaturesConfig{
			AmazonLinksEnabled: true,
			AmazonLinks:        map[string]string{"java": "https://amzn.example/java"},
		},
	}
	var buf bytes.Buffer
	if err := engine.Render(&buf, data); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if strings.Count(out, "</article>") != 1 {
		t.Errorf("expected exactly one article: %s", out)
	}
	if !strings.Contains(out, "https://amzn.example/java") {
		t.Errorf("affiliate link missing: %s", out)
	}
	if !strings.Contains(out, "Mar 4, 2021") {
		t.Errorf("formatted date missing: %s", out)
	}
	if !strings.Contains(out, "badge-warning") {
		t.Errorf("java badge missing: %s", out)
	}
}

func TestPostKeywordLinksKeepLanguage(t *testing.T) {
	engine, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tests := []struct {
		language string
		want     string
	}{
		{"it", `href="posts/it_spring"`},
		{"en", `href="posts/spring"`},
	}
	for _, tt := range tests {
		post := &content.Record{Route: "/blog/x", Title: "X", Keywords: []string{"spring"}, Language: tt.language}
		var buf bytes.Buffer
		if err := engine.Render(&buf, &PageData{ContentTemplate: PostContentTemplate, Post: post}); err != nil {
			t.Fatalf("Render: %v", err)
		}
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("language %s: keyword link %s missing", tt.language, tt.want)
		}
	}
}

func TestSearchBoxReadsIndex(t *testing.T) {
	engine, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var buf bytes.Buffer
	if err := engine.Render(&buf, &PageData{ContentTemplate: HomeContentTemplate, SearchIndexURL: "/search-index.json"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), `data-index="/search-index.json"`) {
		t.Errorf("search box missing: %s", buf.String())
	}

	buf.Reset()
	if err := engine.Render(&buf, &PageData{ContentTemplate: HomeContentTemplate}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(buf.String(), "site-search") {
		t.Error("search box rendered without an index")
	}
}

func TestLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("layout.html", `{{define "layout"}}<html><head></head><body>{{.ContentHTML}}</body></html>{{end}}`)
	write("partials/page.html", `{{define "content-404"}}missing {{.RequestedPath}}{{end}}`)
	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0o755); err != nil {
		t.Fatal(err)
	}

	engine, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if engine.StaticDir != filepath.Join(dir, "assets") {
		t.Errorf("StaticDir = %q", engine.StaticDir)
	}
	var buf bytes.Buffer
	if err := engine.Render(&buf, &PageData{ActivePath: "/nope"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := buf.String(); got != "<html><head></head><body>missing /nope</body></html>" {
		t.Errorf("Render = %q", got)
	}
	if err := engine.Render(&buf, &PageData{ContentTemplate: "content-unknown"}); err == nil {
		t.Error("expected error for undefined content template")
	}
}

func TestLoadRejectsMissingLayout(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.html"), []byte(`{{define "other"}}{{end}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error without layout template")
	}
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for empty template dir")
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate("2020-12-01T10:00:00"); got != "Dec 1, 2020" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := FormatDate("someday"); got != "someday" {
		t.Errorf("FormatDate passthrough = %q", got)
	}
	if got := ISODate("2020-12-01"); got != "2020-12-01T00:00:00Z" {
		t.Errorf("ISODate = %q", got)
	}
}

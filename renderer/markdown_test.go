package renderer

import (
	"strings"
	"testing"
)

func TestRenderStripsFrontMatter(t *testing.T) {
	src := []byte("---\ntitle: Spring intro\nsubtitle: part one\n---\n## Hello world\n\nSome *text*.\n")
	doc, err := New(DefaultOptions()).Render(src)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := string(doc.HTML)
	if strings.Contains(out, "title: Spring intro") {
		t.Errorf("front matter leaked into HTML: %s", out)
	}
	if !strings.Contains(out, `<h2 id="hello-world">Hello world</h2>`) {
		t.Errorf("heading not rendered with id: %s", out)
	}
	if doc.Meta["subtitle"] != "part one" {
		t.Errorf("Meta = %v", doc.Meta)
	}
	if len(doc.TOC) != 1 || doc.TOC[0].ID != "hello-world" {
		t.Errorf("TOC = %+v", doc.TOC)
	}
	if !strings.HasPrefix(doc.PlainText, "Hello world Some text") {
		t.Errorf("PlainText = %q", doc.PlainText)
	}
}

func TestRenderWithoutFrontMatter(t *testing.T) {
	doc, err := New(DefaultOptions()).Render([]byte("plain"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if doc.Meta != nil {
		t.Errorf("Meta = %v, want nil", doc.Meta)
	}
}

func TestRenderTOCDepth(t *testing.T) {
	src := []byte("# Title\n\n## Setup\n\n### Maven\n\n#### Details\n\n## Setup\n")
	doc, err := New(DefaultOptions()).Render(src)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := []Heading{
		{ID: "setup", Text: "Setup", Level: 2},
		{ID: "maven", Text: "Maven", Level: 3},
		{ID: "setup-1", Text: "Setup", Level: 2},
	}
	if len(doc.TOC) != len(want) {
		t.Fatalf("TOC = %+v", doc.TOC)
	}
	for i := range want {
		if doc.TOC[i] != want[i] {
			t.Errorf("TOC[%d] = %+v, want %+v", i, doc.TOC[i], want[i])
		}
	}
	out := string(doc.HTML)
	for _, anchor := range []string{`<h1 id="title">`, `<h4 id="details">`} {
		if !strings.Contains(out, anchor) {
			t.Errorf("heading outside the TOC lost its anchor %s: %s", anchor, out)
		}
	}
}

func TestRenderExplicitAnchor(t *testing.T) {
	doc, err := New(DefaultOptions()).Render([]byte("## Install {#setup}\n\n## Setup\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(doc.TOC) != 2 || doc.TOC[0].ID != "setup" || doc.TOC[1].ID != "setup-1" {
		t.Errorf("TOC = %+v", doc.TOC)
	}
}

func TestRenderHighlightsCode(t *testing.T) {
	doc, err := New(DefaultOptions()).Render([]byte("```java\nclass A {}\n```\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := string(doc.HTML)
	if !strings.Contains(out, `data-lang="java"`) || !strings.Contains(out, ChromaClassPrefix+"chroma") {
		t.Errorf("code block not highlighted: %s", out)
	}
}

func TestMinifyHTMLKeepsMarkers(t *testing.T) {
	page := []byte("<!DOCTYPE html>\n<html>\n  <head>\n    <title> t </title>\n  </head>\n  <body>\n    <article>\n      <p>hi</p>\n    </article>\n  </body>\n</html>\n")
	out, err := New(DefaultOptions()).MinifyHTML(page)
	if err != nil {
		t.Fatalf("MinifyHTML: %v", err)
	}
	got := string(out)
	for _, marker := range []string{"</head>", "</article>", "</body>", "</html>"} {
		if !strings.Contains(got, marker) {
			t.Errorf("minified output lost %s: %s", marker, got)
		}
	}
	if len(out) >= len(page) {
		t.Errorf("minified output not smaller: %d >= %d", len(out), len(page))
	}
}

func TestAnchorFor(t *testing.T) {
	tests := map[string]string{
		"Hello World":           "hello-world",
		"  Spring Boot 3":       "spring-boot-3",
		"Perché usare Quarkus?": "perche-usare-quarkus",
		"node.js & C++":         "node-js-c",
		"!!!":                   "section",
	}
	for in, want := range tests {
		if got := anchorFor(in); got != want {
			t.Errorf("anchorFor(%q) = %q, want %q", in, got, want)
		}
	}
}

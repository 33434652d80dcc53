package plugins

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/s0l0c0ding/solocoding/config"
	"github.com/s0l0c0ding/solocoding/content"
)

const page = `<html><head><title>x</title></head><body><article><p>post</p></article></body></html>`

func tweetConfig(endpoint string) config.TweetConfig {
	cfg := config.Default().Tweet
	cfg.Enabled = true
	cfg.Endpoint = endpoint
	cfg.Account = "s0l0c0ding"
	return cfg
}

func postRoute(tweetID string, published bool) HandledRoute {
	return HandledRoute{
		Route: "/blog/hello",
		Type:  config.RouteTypeContentFolder,
		Data:  &content.Record{Route: "/blog/hello", Title: "Hello", TweetID: tweetID, Published: &published},
	}
}

func TestRegistryDuplicateAndUnknown(t *testing.T) {
	reg := NewRegistry()
	noop := func(_ context.Context, html string, _ HandledRoute) (string, error) { return html, nil }
	if err := reg.RegisterRender("noop", noop); err != nil {
		t.Fatalf("RegisterRender: %v", err)
	}
	if err := reg.RegisterRender("noop", noop); !errors.Is(err, ErrDuplicatePlugin) {
		t.Fatalf("duplicate register err = %v", err)
	}
	if _, err := reg.Render("missing"); !errors.Is(err, ErrUnknownPlugin) {
		t.Fatalf("unknown render err = %v", err)
	}
	if _, err := reg.Router("missing"); !errors.Is(err, ErrUnknownPlugin) {
		t.Fatalf("unknown router err = %v", err)
	}
	if _, err := reg.Chain([]string{"noop", "missing"}); !errors.Is(err, ErrUnknownPlugin) {
		t.Fatalf("chain with unknown err = %v", err)
	}
}

func TestChainAppliesInOrder(t *testing.T) {
	reg := NewRegistry()
	appender := func(s string) RenderFunc {
		return func(_ context.Context, html string, _ HandledRoute) (string, error) { return html + s, nil }
	}
	_ = reg.RegisterRender("a", appender("a"))
	_ = reg.RegisterRender("b", appender("b"))
	_ = reg.RegisterRender("fail", func(context.Context, string, HandledRoute) (string, error) {
		return "", errors.New("boom")
	})

	chain, err := reg.Chain([]string{"b", "a", "b"})
	if err != nil {
		t.Fatalf("Chain: %v", err)
	}
	got, err := chain(context.Background(), "", HandledRoute{Route: "/"})
	if err != nil || got != "bab" {
		t.Fatalf("chain = %q, %v", got, err)
	}

	failing, _ := reg.Chain([]string{"a", "fail", "b"})
	if _, err := failing(context.Background(), "", HandledRoute{Route: "/x"}); err == nil || !strings.Contains(err.Error(), "fail on /x") {
		t.Fatalf("failing chain err = %v", err)
	}
	if names := reg.RenderNames(); !reflect.DeepEqual(names, []string{"a", "b", "fail"}) {
		t.Fatalf("RenderNames = %v", names)
	}
}

func TestTweetEmbedWithoutTweetIDIsUnchanged(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	plugin := NewTweetEmbed(tweetConfig(srv.URL), srv.Client(), nil, "")
	for _, route := range []HandledRoute{
		postRoute("", true),
		postRoute("12345", false),
		{Route: "/posts/devops"},
	} {
		got, err := plugin.Render(context.Background(), page, route)
		if err != nil {
			t.Fatalf("Render(%s): %v", route.Route, err)
		}
		if got != page {
			t.Fatalf("Render(%s) modified the page: %q", route.Route, got)
		}
	}
	if called {
		t.Fatal("oembed endpoint was queried")
	}
}

func TestTweetEmbedDisabledByDefault(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	cfg := config.Default().Tweet
	cfg.Endpoint = srv.URL
	got, err := NewTweetEmbed(cfg, srv.Client(), nil, "").Render(context.Background(), page, postRoute("987", true))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != page || called {
		t.Fatalf("disabled embed touched the page (called=%v): %q", called, got)
	}
}

func TestTweetEmbedSplicesWidget(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.Query().Get("url")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"html":"<blockquote class=\"twitter-tweet\"><p>hi<\/p><\/blockquote>\n<script async src=\"https:\/\/platform.twitter.com\/widgets.js\"><\/script>\n"}`))
	}))
	defer srv.Close()

	plugin := NewTweetEmbed(tweetConfig(srv.URL), srv.Client(), nil, "test")
	got, err := plugin.Render(context.Background(), page, postRoute("987", true))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if gotURL != "https://twitter.com/s0l0c0ding/status/987" {
		t.Fatalf("oembed url = %q", gotURL)
	}
	widget := `<blockquote class="twitter-tweet"><p>hi</p></blockquote></article>`
	if !strings.Contains(got, widget) {
		t.Fatalf("widget not spliced before marker: %s", got)
	}
	if strings.Count(got, "widgets.js") != 1 || !strings.Contains(got, `widgets.js" charset="utf-8"></script></head>`) {
		t.Fatalf("widget script not spliced into head once: %s", got)
	}
}

func TestTweetEmbedFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	plugin := NewTweetEmbed(tweetConfig(srv.URL), srv.Client(), nil, "")
	if _, err := plugin.Render(context.Background(), page, postRoute("1", true)); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}

func TestSanitizeEmbed(t *testing.T) {
	in := `<blockquote>a<\/blockquote>\n<script src=\"x\"></script>`
	if got := sanitizeEmbed(in); got != `<blockquote>a</blockquote>` {
		t.Fatalf("sanitizeEmbed = %q", got)
	}
}

func TestAdScript(t *testing.T) {
	plugin := NewAdScript(config.AdsConfig{Enabled: true, Client: "ca-pub-1", ScriptSrc: "https://ads.example/ads.js"})
	tests := []struct {
		route  string
		inject bool
	}{
		{"/blog/hello", true},
		{"/posts/devops", true},
		{"/posts", true},
		{"/about", false},
		{"/", false},
	}
	for _, tt := range tests {
		got, err := plugin.Render(context.Background(), page, HandledRoute{Route: tt.route})
		if err != nil {
			t.Fatalf("Render(%s): %v", tt.route, err)
		}
		injected := strings.Contains(got, `src="https://ads.example/ads.js?client=ca-pub-1"`)
		if injected != tt.inject {
			t.Errorf("Render(%s) injected = %v, want %v", tt.route, injected, tt.inject)
		}
		if injected && !strings.Contains(got, `</script></head>`) {
			t.Errorf("Render(%s) script not in head: %s", tt.route, got)
		}
	}

	disabled := NewAdScript(config.AdsConfig{ScriptSrc: "https://ads.example/ads.js"})
	if got, _ := disabled.Render(context.Background(), page, HandledRoute{Route: "/blog/x"}); got != page {
		t.Fatalf("disabled plugin modified the page")
	}
}

func TestRouters(t *testing.T) {
	hidden := false
	source := func(_ context.Context, folder, pattern string) ([]content.Record, error) {
		if folder != "./blog" || pattern != "/blog/:slug" {
			t.Fatalf("source called with %q %q", folder, pattern)
		}
		return []content.Record{
			{Route: "/blog/a", Title: "A", Slug: "a"},
			{Route: "/blog/b", Title: "B", Slug: "b", Published: &hidden},
		}, nil
	}
	routes, err := ContentFolder(source)(context.Background(), "/blog/:slug", config.RouteConfig{Folder: "./blog"})
	if err != nil {
		t.Fatalf("ContentFolder: %v", err)
	}
	if len(routes) != 1 || routes[0].Route != "/blog/a" || routes[0].Data == nil || routes[0].Param != "a" {
		t.Fatalf("ContentFolder routes = %+v", routes)
	}

	dash, err := CategoryIDs()(context.Background(), "/posts/:categoryId", config.RouteConfig{})
	if err != nil {
		t.Fatalf("CategoryIDs: %v", err)
	}
	got := make([]string, 0, len(dash))
	for _, r := range dash {
		got = append(got, r.Route)
	}
	want := []string{"/posts/devops", "/posts/spring", "/posts/angular", "/posts/it", "/posts/it_devops", "/posts/it_spring", "/posts/it_angular"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CategoryIDs routes = %v", got)
	}
}

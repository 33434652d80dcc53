package category

import (
	"reflect"
	"testing"

	"github.com/s0l0c0ding/solocoding/content"
)

func TestParseParam(t *testing.T) {
	tests := []struct {
		param string
		want  Selection
	}{
		{"it_angular", Selection{Keyword: "angular", Language: "it"}},
		{"it_spring", Selection{Keyword: "spring", Language: "it"}},
		{"devops", Selection{Keyword: "devops", Language: "en"}},
		{"it", Selection{Keyword: "it", Language: "it"}},
		{"it_", Selection{Keyword: "it", Language: "it"}},
		{"italy", Selection{Keyword: "italy", Language: "en"}},
		{"", Selection{Language: "en"}},
	}
	for _, tt := range tests {
		if got := ParseParam(tt.param); got != tt.want {
			t.Errorf("ParseParam(%q) = %+v, want %+v", tt.param, got, tt.want)
		}
	}
}

func TestParseParamPrefixedSuffix(t *testing.T) {
	for _, suffix := range []string{"angular", "devops", "spring", "quarkus"} {
		sel := ParseParam(LanguageMarker + "_" + suffix)
		if sel.Keyword != suffix || sel.Language != LanguageMarker {
			t.Errorf("ParseParam(it_%s) = %+v", suffix, sel)
		}
		if back := ParseParam(sel.Param()); back != sel {
			t.Errorf("Param round trip %+v -> %+v", sel, back)
		}
	}
}

func TestParseParamExtraSegments(t *testing.T) {
	tests := []struct {
		param string
		want  Selection
	}{
		{"it_a_b", Selection{Keyword: "a", Language: LanguageMarker}},
		{"it_spring_boot", Selection{Keyword: "spring", Language: LanguageMarker}},
		{"it__b", Selection{Keyword: LanguageMarker, Language: LanguageMarker}},
		{"spring_boot", Selection{Keyword: "spring_boot", Language: "en"}},
	}
	for _, tt := range tests {
		if got := ParseParam(tt.param); got != tt.want {
			t.Errorf("ParseParam(%q) = %+v, want %+v", tt.param, got, tt.want)
		}
	}
}

func sampleRecords() []content.Record {
	return []content.Record{
		{Route: "/blog/a", Keywords: []string{"angular"}, Language: "en", Date: "2020-01-01"},
		{Route: "/blog/b", Keywords: []string{"spring"}, Language: "it", Date: "2021-01-01"},
		{Route: "/blog/c", Language: "en", Date: "2022-01-01"},
		{Route: "/blog/d", Keywords: []string{"angular", "devops"}, Language: "en", Date: "2019-06-01"},
		{Route: "/blog/e", Keywords: []string{"devops"}, Language: "it", Date: "2018-06-01"},
	}
}

func routes(records []content.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Route)
	}
	return out
}

func TestFilterExample(t *testing.T) {
	records := []content.Record{
		{Keywords: []string{"angular"}, Language: "en"},
		{Keywords: []string{"spring"}, Language: "it"},
	}
	got := Filter(records, Selection{Keyword: "angular", Language: "en"})
	if len(got) != 1 || got[0].Keywords[0] != "angular" {
		t.Fatalf("Filter = %+v", got)
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		param string
		want  []string
	}{
		{"angular", []string{"/blog/a", "/blog/d"}},
		{"devops", []string{"/blog/d"}},
		{"it", []string{"/blog/b", "/blog/e"}},
		{"it_devops", []string{"/blog/e"}},
		{"", []string{"/blog/a", "/blog/d"}},
		{"quarkus", []string{}},
	}
	for _, tt := range tests {
		got := routes(Filter(sampleRecords(), ParseParam(tt.param)))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Filter(%q) = %v, want %v", tt.param, got, tt.want)
		}
	}
}

func TestFilterIdempotent(t *testing.T) {
	for _, param := range []string{"angular", "it", "it_spring", "", "devops"} {
		sel := ParseParam(param)
		once := Filter(sampleRecords(), sel)
		twice := Filter(once, sel)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Filter not idempotent for %q: %v vs %v", param, routes(once), routes(twice))
		}
	}
}

func TestFilterExcludesUntagged(t *testing.T) {
	for _, r := range Filter(sampleRecords(), Selection{Language: "en"}) {
		if !r.HasKeywords() {
			t.Errorf("untagged record %s passed the filter", r.Route)
		}
	}
}

func TestSortByDate(t *testing.T) {
	records := []content.Record{
		{Route: "/old", Date: "2019-01-01"},
		{Route: "/bad1", Date: "not a date"},
		{Route: "/new", Date: "2022-05-01"},
		{Route: "/same1", Date: "2020-01-01"},
		{Route: "/bad2"},
		{Route: "/same2", Date: "2020-01-01T00:00:00Z"},
	}
	SortByDate(records)
	want := []string{"/new", "/same1", "/same2", "/old", "/bad1", "/bad2"}
	if got := routes(records); !reflect.DeepEqual(got, want) {
		t.Fatalf("SortByDate = %v, want %v", got, want)
	}
}

func TestBadge(t *testing.T) {
	tests := map[string]string{
		"angular": "badge-danger",
		"Spring":  "badge-success",
		"devops":  "badge-primary",
		"rust":    DefaultBadge,
		"":        DefaultBadge,
	}
	for kw, want := range tests {
		if got := Badge(kw); got != want {
			t.Errorf("Badge(%q) = %q, want %q", kw, got, want)
		}
	}
	if Lookup("quarkus") != Quarkus || Quarkus.String() != "quarkus" {
		t.Errorf("Lookup(quarkus) = %v", Lookup("quarkus"))
	}
}

func TestDashboardRoutes(t *testing.T) {
	want := []RouteEntry{
		{Route: "/posts/devops"},
		{Route: "/posts/spring"},
		{Route: "/posts/angular"},
		{Route: "/posts/it"},
		{Route: "/posts/it_devops"},
		{Route: "/posts/it_spring"},
		{Route: "/posts/it_angular"},
	}
	if got := DashboardRoutes(""); !reflect.DeepEqual(got, want) {
		t.Fatalf("DashboardRoutes = %v, want %v", got, want)
	}
}

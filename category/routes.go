package category

import "github.com/s0l0c0ding/solocoding/content"

// RouteEntry is the value a router plugin hands back to the generator.
type RouteEntry struct {
	Route string `json:"route"`
}

// DashboardPattern is the default route pattern of the category dashboards.
const DashboardPattern = "/posts/:categoryId"

// DashboardParams lists the category parameters that get pre-rendered: one
// per routed category, the Italian landing page, then one Italian page per
// routed category.
func DashboardParams() []string {
	routed := Routed()
	out := make([]string, 0, 2*len(routed)+1)
	for _, c := range routed {
		out = append(out, c.String())
	}
	out = append(out, LanguageMarker)
	for _, c := range routed {
		out = append(out, LanguageMarker+separator+c.String())
	}
	return out
}

// DashboardRoutes expands pattern with every dashboard parameter.
func DashboardRoutes(pattern string) []RouteEntry {
	if pattern == "" {
		pattern = DashboardPattern
	}
	params := DashboardParams()
	out := make([]RouteEntry, 0, len(params))
	for _, p := range params {
		out = append(out, RouteEntry{Route: content.ExpandPattern(pattern, p)})
	}
	return out
}

package category

import "strings"

// Category enumerates the technology tags the site knows how to present.
type Category int

const (
	Unknown Category = iota
	DevOps
	Spring
	Angular
	Java
	Quarkus
	Docker
	Kubernetes
)

// DefaultBadge is the CSS class for tags outside the table.
const DefaultBadge = "badge-secondary"

type entry struct {
	keyword string
	badge   string
	routed  bool
}

var table = [...]entry{
	Unknown:    {keyword: "", badge: DefaultBadge},
	DevOps:     {keyword: "devops", badge: "badge-primary", routed: true},
	Spring:     {keyword: "spring", badge: "badge-success", routed: true},
	Angular:    {keyword: "angular", badge: "badge-danger", routed: true},
	Java:       {keyword: "java", badge: "badge-warning"},
	Quarkus:    {keyword: "quarkus", badge: "badge-info"},
	Docker:     {keyword: "docker", badge: "badge-dark"},
	Kubernetes: {keyword: "kubernetes", badge: "badge-light"},
}

// Lookup maps a keyword to its category.
func Lookup(keyword string) Category {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return Unknown
	}
	for c := DevOps; int(c) < len(table); c++ {
		if table[c].keyword == keyword {
			return c
		}
	}
	return Unknown
}

// String returns the keyword of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(table) {
		return ""
	}
	return table[c].keyword
}

// Badge returns the CSS class used to render the category tag.
func (c Category) Badge() string {
	if c <= Unknown || int(c) >= len(table) {
		return DefaultBadge
	}
	return table[c].badge
}

// Badge returns the CSS class for a keyword.
func Badge(keyword string) string {
	return Lookup(keyword).Badge()
}

// Routed returns the categories that get their own dashboard pages, in menu order.
func Routed() []Category {
	out := make([]Category, 0, len(table))
	for c := DevOps; int(c) < len(table); c++ {
		if table[c].routed {
			out = append(out, c)
		}
	}
	return out
}

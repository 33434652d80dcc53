package site

import (
	"github.com/s0l0c0ding/solocoding/category"
	"github.com/s0l0c0ding/solocoding/templatex"
)

// buildBreadcrumbs returns Home > Posts > <category> > <title> for a post and
// Home > Posts > <category> for a dashboard.
func buildBreadcrumbs(dashboardPattern string, sel category.Selection, title string, isPost bool) []templatex.Breadcrumb {
	crumbs := make([]templatex.Breadcrumb, 0, 4)
	crumbs = append(crumbs, templatex.Breadcrumb{Title: "Home", Path: "/"})

	if sel.Keyword == "" && !isPost {
		crumbs = append(crumbs, templatex.Breadcrumb{Title: "Posts", Current: true})
		return crumbs
	}
	crumbs = append(crumbs, templatex.Breadcrumb{Title: "Posts", Path: "/posts"})

	if sel.Keyword != "" {
		crumb := templatex.Breadcrumb{Title: sel.Keyword, Current: !isPost}
		if isPost {
			crumb.Path = expandDashboard(dashboardPattern, sel.Param())
		}
		crumbs = append(crumbs, crumb)
	}
	if isPost {
		crumbs = append(crumbs, templatex.Breadcrumb{Title: title, Current: true})
	}
	return crumbs
}

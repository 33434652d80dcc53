package site

import (
	"fmt"
	"strings"
	"time"

	"github.com/s0l0c0ding/solocoding/category"
	"github.com/s0l0c0ding/solocoding/config"
	"github.com/s0l0c0ding/solocoding/content"
	"github.com/s0l0c0ding/solocoding/plugins"
	"github.com/s0l0c0ding/solocoding/templatex"
)

// RouteTypeStatic marks the fixed pages that no router plugin produces.
const RouteTypeStatic = "static"

const (
	routeHome      = "/"
	routePosts     = "/posts"
	routeAbout     = "/about"
	routePortfolio = "/portfolio"
	routeTraining  = "/training"
	routeDonate    = "/donate"
	routeNotFound  = "/404"
)

type staticPage struct {
	Route    string
	Title    string
	Template string
}

var staticPages = []staticPage{
	{Route: routeHome, Title: "Home", Template: templatex.HomeContentTemplate},
	{Route: routePosts, Title: "Posts", Template: templatex.DashboardContentTemplate},
	{Route: routeAbout, Title: "About", Template: templatex.AboutContentTemplate},
	{Route: routePortfolio, Title: "Portfolio", Template: templatex.PortfolioContentTemplate},
	{Route: routeTraining, Title: "Training", Template: templatex.TrainingContentTemplate},
	{Route: routeDonate, Title: "Donate", Template: templatex.DonateContentTemplate},
}

var trainingCourses = []templatex.Course{
	{
		Title:       "Spring boot, il corso completo",
		Subtitle:    "Impariamo spring creando una applicazione con Spring Framework 5+, spring boot 2+, spring security, docker e altro",
		Description: "Realizziamo un applicazione web completa, vedendo tutti i livelli classici, dal database al controller",
		Technology:  []string{"Spring boot", "Spring Framework", "Spring data jpa", "Spring Security", "Caching", "docker", "PostgreSQL"},
		Language:    "it",
		URL:         "https://goto.solocoding.dev/redirect/f14582",
		Coupon:      "Già applicato al link sotto",
		Border:      "border border-primary",
		Photo:       "assets/springCourse.webp",
	},
	{
		Title:      "Youtube educational videos",
		Subtitle:   "My channel for sharing some tips and guides on different technologies",
		Technology: []string{"Spring boot", "docker", "PostgreSQL", "others"},
		Language:   "eng / it",
		URL:        "https://www.youtube.com/channel/UCULYygcBWe1YBY2iLiRhUnQ/playlists",
		Border:     "border border-danger",
		Photo:      "assets/logo.png",
	},
}

func staticRoutes() []plugins.HandledRoute {
	routes := make([]plugins.HandledRoute, 0, len(staticPages))
	for _, p := range staticPages {
		routes = append(routes, plugins.HandledRoute{Route: p.Route, Type: RouteTypeStatic, Title: p.Title})
	}
	return routes
}

func lookupStaticPage(route string) (staticPage, bool) {
	for _, p := range staticPages {
		if p.Route == route {
			return p, true
		}
	}
	return staticPage{}, false
}

// pageData builds the template model of a handled route. available is the
// date-sorted list of published posts.
func (s *Service) pageData(route plugins.HandledRoute, available []content.Record, rendered *post) (*templatex.PageData, error) {
	switch route.Type {
	case config.RouteTypeCategoryIDs:
		return s.dashboardData(route, category.ParseParam(route.Param), available), nil
	case RouteTypeStatic:
		page, ok := lookupStaticPage(route.Route)
		if !ok {
			return nil, fmt.Errorf("%w: static %s", ErrUnknownRouteType, route.Route)
		}
		switch page.Route {
		case routeHome:
			data := s.baseData(route, page.Title, page.Template)
			data.Posts = category.Tagged(available)
			return data, nil
		case routePosts:
			return s.dashboardData(route, category.ParseParam(""), available), nil
		case routeTraining:
			data := s.baseData(route, page.Title, page.Template)
			data.Courses = trainingCourses
			return data, nil
		default:
			return s.baseData(route, page.Title, page.Template), nil
		}
	}

	if rendered == nil {
		return nil, fmt.Errorf("%w: %q for %s", ErrUnknownRouteType, route.Type, route.Route)
	}
	rec := rendered.Record
	data := s.baseData(route, rec.Title, templatex.PostContentTemplate)
	data.Post = &rec
	data.BodyHTML = rendered.HTML
	data.Sections = rendered.Sections
	data.Selection = category.Selection{Keyword: rec.PrimaryKeyword(), Language: rec.Language}
	data.Breadcrumbs = buildBreadcrumbs(s.dashboardPattern, data.Selection, rec.Title, true)
	data.Meta.Description = metaDescription(rec.Description, rendered.Summary)
	return data, nil
}

func (s *Service) dashboardData(route plugins.HandledRoute, sel category.Selection, available []content.Record) *templatex.PageData {
	title := "Posts"
	if route.Title != "" {
		title = route.Title
	}
	data := s.baseData(route, title, templatex.DashboardContentTemplate)
	data.Selection = sel
	data.Posts = category.Filter(available, sel)
	data.Categories = s.navCategories(route.Route)
	data.Breadcrumbs = buildBreadcrumbs(s.dashboardPattern, sel, title, false)
	return data
}

func (s *Service) baseData(route plugins.HandledRoute, title, tmpl string) *templatex.PageData {
	return &templatex.PageData{
		Title:           title,
		PageTitle:       s.pageTitle(title),
		SiteName:        s.cfg.SiteName,
		Twitter:         strings.TrimLeft(s.cfg.Twitter, "@"),
		BaseURL:         s.cfg.BaseURL,
		BasePath:        "/",
		ContentTemplate: tmpl,
		ActivePath:      route.Route,
		RequestedPath:   route.Route,
		Selection:       category.Selection{Language: content.DefaultLanguage},
		Categories:      s.navCategories(route.Route),
		Features:        s.cfg.Features,
		SearchIndexURL:  "/" + artifactSearchIndex,
		Year:            time.Now().Year(),
		Meta:            templatex.Meta{Description: s.cfg.Description},
	}
}

func (s *Service) navCategories(active string) []templatex.NavCategory {
	routed := category.Routed()
	out := make([]templatex.NavCategory, 0, len(routed))
	for _, c := range routed {
		route := expandDashboard(s.dashboardPattern, c.String())
		out = append(out, templatex.NavCategory{
			Keyword: c.String(),
			Route:   route,
			Badge:   c.Badge(),
			Active:  route == active,
		})
	}
	return out
}

func (s *Service) pageTitle(raw string) string {
	if raw == "" || raw == s.cfg.SiteName {
		return s.cfg.SiteName
	}
	return fmt.Sprintf("%s - %s", raw, s.cfg.SiteName)
}

func expandDashboard(pattern, param string) string {
	if pattern == "" {
		pattern = category.DashboardPattern
	}
	return content.ExpandPattern(pattern, param)
}

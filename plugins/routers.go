package plugins

import (
	"context"
	"fmt"

	"github.com/s0l0c0ding/solocoding/category"
	"github.com/s0l0c0ding/solocoding/config"
	"github.com/s0l0c0ding/solocoding/content"
)

// RecordSource yields the records of a content folder routed through pattern.
type RecordSource func(ctx context.Context, folder, pattern string) ([]content.Record, error)

// ContentFolder returns the router plugin that turns every published post of
// the configured folder into a route.
func ContentFolder(source RecordSource) RouterFunc {
	return func(ctx context.Context, pattern string, cfg config.RouteConfig) ([]HandledRoute, error) {
		records, err := source(ctx, cfg.Folder, pattern)
		if err != nil {
			return nil, fmt.Errorf("content folder %s: %w", cfg.Folder, err)
		}
		routes := make([]HandledRoute, 0, len(records))
		for i := range records {
			if !records[i].IsPublished() {
				continue
			}
			rec := records[i].Clone()
			routes = append(routes, HandledRoute{
				Route: rec.Route,
				Type:  config.RouteTypeContentFolder,
				Title: rec.Title,
				Param: rec.Slug,
				Data:  &rec,
			})
		}
		return routes, nil
	}
}

// CategoryIDs returns the router plugin for the category dashboards.
func CategoryIDs() RouterFunc {
	return func(ctx context.Context, pattern string, cfg config.RouteConfig) ([]HandledRoute, error) {
		params := category.DashboardParams()
		entries := category.DashboardRoutes(pattern)
		routes := make([]HandledRoute, 0, len(entries))
		for i, entry := range entries {
			routes = append(routes, HandledRoute{
				Route: entry.Route,
				Type:  config.RouteTypeCategoryIDs,
				Title: "Posts",
				Param: params[i],
			})
		}
		return routes, nil
	}
}

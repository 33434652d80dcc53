package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/s0l0c0ding/solocoding/content"
	"github.com/s0l0c0ding/solocoding/plugins"
	"github.com/s0l0c0ding/solocoding/templatex"
)

// chainSet resolves the post renderer chain of each route.
type chainSet struct {
	defaults []string
	byType   map[string][]string
	chains   map[string]plugins.RenderFunc
}

func (s *Service) buildChains() (*chainSet, error) {
	set := &chainSet{
		defaults: s.cfg.PostRenderers,
		byType:   make(map[string][]string),
		chains:   make(map[string]plugins.RenderFunc),
	}
	lists := [][]string{set.defaults}
	for _, pattern := range s.cfg.RoutePatterns() {
		rc := s.cfg.Routes[pattern]
		if len(rc.PostRenderers) == 0 {
			continue
		}
		set.byType[rc.Type] = rc.PostRenderers
		lists = append(lists, rc.PostRenderers)
	}
	for _, names := range lists {
		key := strings.Join(names, ",")
		if _, ok := set.chains[key]; ok {
			continue
		}
		chain, err := s.registry.Chain(names)
		if err != nil {
			return nil, err
		}
		set.chains[key] = chain
	}
	return set, nil
}

func (c *chainSet) For(route plugins.HandledRoute) plugins.RenderFunc {
	names, ok := c.byType[route.Type]
	if !ok {
		names = c.defaults
	}
	return c.chains[strings.Join(names, ",")]
}

// renderAll renders every route with at most RenderWorkers pages in flight.
// A failing page does not stop the others; all failures are returned joined.
func (s *Service) renderAll(ctx context.Context, routes []plugins.HandledRoute, available []content.Record, chains *chainSet) ([]output, error) {
	outputs := make([]output, len(routes))
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(s.cfg.RenderWorkers)

	for i, route := range routes {
		g.Go(func() error {
			out, err := s.renderRoute(ctx, route, available, chains.For(route))
			if err != nil {
				s.logger.Error("render", "route", route.Route, "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("render %s: %w", route.Route, err))
				mu.Unlock()
				return nil
			}
			outputs[i] = out
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return outputs, nil
}

func (s *Service) renderRoute(ctx context.Context, route plugins.HandledRoute, available []content.Record, chain plugins.RenderFunc) (output, error) {
	if err := ctx.Err(); err != nil {
		return output{}, err
	}
	if err := validateRoute(route.Route); err != nil {
		return output{}, err
	}

	var rendered *post
	if route.Data != nil && route.Type != RouteTypeStatic {
		if s.posts == nil {
			return output{}, ErrNoContentFolder
		}
		p, err := s.posts.RenderPost(*route.Data)
		if err != nil {
			return output{}, err
		}
		rendered = &p
	}

	data, err := s.pageData(route, available, rendered)
	if err != nil {
		return output{}, err
	}
	page, err := s.finishPage(ctx, route, data, chain)
	if err != nil {
		return output{}, err
	}
	return output{Route: route.Route, Path: outputPathFor(route.Route), HTML: page, Post: rendered}, nil
}

// finishPage executes the templates, runs the post renderers and minifies.
func (s *Service) finishPage(ctx context.Context, route plugins.HandledRoute, data *templatex.PageData, chain plugins.RenderFunc) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.Render(&buf, data); err != nil {
		return nil, err
	}

	html := buf.String()
	if chain != nil {
		var err error
		if html, err = chain(ctx, html, route); err != nil {
			return nil, err
		}
	}

	if s.cfg.DisableMinify {
		return []byte(html), nil
	}
	minified, err := s.renderer.MinifyHTML([]byte(html))
	if err != nil {
		return nil, fmt.Errorf("minify %s: %w", route.Route, err)
	}
	return minified, nil
}

// RenderNotFoundPage renders the themed 404 page for requestedPath.
func (s *Service) RenderNotFoundPage(ctx context.Context, requestedPath string) ([]byte, error) {
	route := plugins.HandledRoute{Route: routeNotFound, Type: RouteTypeStatic, Title: "404 - Not found"}
	data := s.baseData(route, route.Title, templatex.NotFoundContentTemplate)
	data.ActivePath = ""

	sanitized := ""
	if strings.TrimSpace(requestedPath) != "" {
		sanitized = sanitizeRoute(requestedPath)
	}
	data.RequestedPath = sanitized
	description := "The page you are looking for could not be found."
	if sanitized != "" && sanitized != "/" {
		description = fmt.Sprintf("The requested path %s could not be found.", sanitized)
	}
	data.Meta.Description = description

	chain, err := s.registry.Chain(s.cfg.PostRenderers)
	if err != nil {
		return nil, err
	}
	return s.finishPage(ctx, route, data, chain)
}

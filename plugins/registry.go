// Package plugins holds the generator's named hook points: router plugins
// that expand parameterised routes and render plugins that rewrite the
// finished HTML of a page.
package plugins

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/s0l0c0ding/solocoding/config"
	"github.com/s0l0c0ding/solocoding/content"
)

var (
	// ErrUnknownPlugin is returned when a configured plugin name is not registered.
	ErrUnknownPlugin = errors.New("unknown plugin")
	// ErrDuplicatePlugin is returned when a name is registered twice on the same hook.
	ErrDuplicatePlugin = errors.New("plugin already registered")
)

// HandledRoute is a concrete route the generator will render.
type HandledRoute struct {
	Route string `json:"route"`
	Type  string `json:"type,omitempty"`
	// Title is the page title used when Data carries none.
	Title string `json:"title,omitempty"`
	// Param is the value substituted into the route pattern.
	Param string          `json:"param,omitempty"`
	Data  *content.Record `json:"data,omitempty"`
}

// RouterFunc expands a route pattern into concrete routes.
type RouterFunc func(ctx context.Context, pattern string, cfg config.RouteConfig) ([]HandledRoute, error)

// RenderFunc rewrites the HTML of a rendered route.
type RenderFunc func(ctx context.Context, html string, route HandledRoute) (string, error)

// Registry stores plugins by hook and name.
type Registry struct {
	mu        sync.RWMutex
	routers   map[string]RouterFunc
	renderers map[string]RenderFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		routers:   make(map[string]RouterFunc),
		renderers: make(map[string]RenderFunc),
	}
}

// RegisterRouter adds a router plugin under name.
func (r *Registry) RegisterRouter(name string, fn RouterFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("register router %q: missing name or function", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routers[name]; ok {
		return fmt.Errorf("router %q: %w", name, ErrDuplicatePlugin)
	}
	r.routers[name] = fn
	return nil
}

// RegisterRender adds a render plugin under name.
func (r *Registry) RegisterRender(name string, fn RenderFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("register render %q: missing name or function", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.renderers[name]; ok {
		return fmt.Errorf("render %q: %w", name, ErrDuplicatePlugin)
	}
	r.renderers[name] = fn
	return nil
}

// Router looks up a router plugin.
func (r *Registry) Router(name string) (RouterFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.routers[name]
	if !ok {
		return nil, fmt.Errorf("router %q: %w", name, ErrUnknownPlugin)
	}
	return fn, nil
}

// Render looks up a render plugin.
func (r *Registry) Render(name string) (RenderFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("render %q: %w", name, ErrUnknownPlugin)
	}
	return fn, nil
}

// RenderNames lists the registered render plugins.
func (r *Registry) RenderNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Chain composes the named render plugins into one, applied in order. The
// first failing plugin stops the chain.
func (r *Registry) Chain(names []string) (RenderFunc, error) {
	fns := make([]RenderFunc, 0, len(names))
	for _, name := range names {
		fn, err := r.Render(name)
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	steps := append([]string(nil), names...)
	return func(ctx context.Context, html string, route HandledRoute) (string, error) {
		out := html
		for i, fn := range fns {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			next, err := fn(ctx, out, route)
			if err != nil {
				return "", fmt.Errorf("%s on %s: %w", steps[i], route.Route, err)
			}
			out = next
		}
		return out, nil
	}, nil
}

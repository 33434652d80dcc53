package site

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/s0l0c0ding/solocoding/category"
	"github.com/s0l0c0ding/solocoding/config"
	"github.com/s0l0c0ding/solocoding/content"
	"github.com/s0l0c0ding/solocoding/fsutil"
	"github.com/s0l0c0ding/solocoding/plugins"
	"github.com/s0l0c0ding/solocoding/renderer"
	"github.com/s0l0c0ding/solocoding/seo"
	"github.com/s0l0c0ding/solocoding/templatex"
)

// Service orchestrates route discovery, page rendering and output persistence.
type Service struct {
	cfg       *config.Config
	logger    *slog.Logger
	templates *templatex.Engine
	renderer  *renderer.Renderer
	registry  *plugins.Registry
	catalog   *content.Catalog
	artifacts *artifactCache

	posts            *PostStore
	dashboardPattern string

	buildMu sync.Mutex
}

// NewService constructs a Service with the built-in plugins registered. A nil
// client gets the tweet embed default.
func NewService(cfg *config.Config, templates *templatex.Engine, client *http.Client, userAgent string, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rend := renderer.New(renderer.DefaultOptions())
	s := &Service{
		cfg:              cfg,
		logger:           logger,
		templates:        templates,
		renderer:         rend,
		registry:         plugins.NewRegistry(),
		catalog:          content.NewCatalog(),
		artifacts:        newArtifactCache(),
		dashboardPattern: category.DashboardPattern,
	}
	if folder, pattern, ok := cfg.ContentFolder(); ok {
		s.posts = newPostStore(folder, pattern, rend, logger)
	}
	for _, pattern := range cfg.RoutePatterns() {
		if cfg.Routes[pattern].Type == config.RouteTypeCategoryIDs {
			s.dashboardPattern = pattern
			break
		}
	}

	if err := s.registerBuiltins(client, userAgent); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) registerBuiltins(client *http.Client, userAgent string) error {
	tweet := plugins.NewTweetEmbed(s.cfg.Tweet, client, s.logger, userAgent)
	ads := plugins.NewAdScript(s.cfg.Ads)

	steps := []error{
		s.registry.RegisterRouter(config.RouteTypeContentFolder, plugins.ContentFolder(s.recordSource)),
		s.registry.RegisterRouter(config.RouteTypeCategoryIDs, plugins.CategoryIDs()),
		s.registry.RegisterRender(config.RendererSocialTags, seo.SocialTags(seo.DefaultsFromConfig(s.cfg))),
		s.registry.RegisterRender(config.RendererTweetEmbed, tweet.Render),
		s.registry.RegisterRender(config.RendererAdScript, ads.Render),
	}
	for _, err := range steps {
		if err != nil {
			return fmt.Errorf("register plugins: %w", err)
		}
	}
	return nil
}

// Registry exposes the plugin registry so callers can add their own plugins.
func (s *Service) Registry() *plugins.Registry {
	return s.registry
}

// Catalog returns the catalog of published posts, refreshed after every build.
func (s *Service) Catalog() *content.Catalog {
	return s.catalog
}

func (s *Service) recordSource(ctx context.Context, folder, pattern string) ([]content.Record, error) {
	if s.posts != nil && filepath.Clean(folder) == filepath.Clean(s.posts.Folder()) {
		return s.posts.List(ctx)
	}
	return newPostStore(folder, pattern, s.renderer, s.logger).List(ctx)
}

// Routes expands every configured route through its router plugin. The fixed
// pages come first, followed by the plugin routes in pattern order.
func (s *Service) Routes(ctx context.Context) ([]plugins.HandledRoute, error) {
	routes := staticRoutes()
	seen := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		seen[r.Route] = struct{}{}
	}

	for _, pattern := range s.cfg.RoutePatterns() {
		rc := s.cfg.Routes[pattern]
		router, err := s.registry.Router(rc.Type)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w: %w", pattern, ErrUnknownRouteType, err)
		}
		handled, err := router(ctx, pattern, rc)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", pattern, err)
		}
		for _, r := range handled {
			if err := validateRoute(r.Route); err != nil {
				s.logger.Warn("routes", "pattern", pattern, "route", r.Route, "error", err)
				continue
			}
			if _, dup := seen[r.Route]; dup {
				s.logger.Warn("routes", "pattern", pattern, "route", r.Route, "error", "duplicate route")
				continue
			}
			seen[r.Route] = struct{}{}
			routes = append(routes, r)
		}
	}
	return routes, nil
}

// BuildStatic renders every route into the output directory. The new output
// is assembled in a temporary directory and swapped in only when every page
// rendered; on failure the previous output stays in place.
func (s *Service) BuildStatic(ctx context.Context) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	started := time.Now()

	routes, err := s.Routes(ctx)
	if err != nil {
		return err
	}
	available := availableRecords(routes)
	chains, err := s.buildChains()
	if err != nil {
		return err
	}

	outputs, err := s.renderAll(ctx, routes, available, chains)
	if err != nil {
		return err
	}
	notFound, err := s.RenderNotFoundPage(ctx, "")
	if err != nil {
		return fmt.Errorf("render 404: %w", err)
	}

	finalDir := s.cfg.OutputDir
	parent := filepath.Dir(finalDir)
	if parent == "" {
		parent = "."
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("ensure output parent: %w", err)
	}

	tempDir, err := os.MkdirTemp(parent, ".__build-")
	if err != nil {
		return fmt.Errorf("create temp output dir: %w", err)
	}
	cleanTemp := true
	defer func() {
		if cleanTemp && tempDir != "" {
			_ = os.RemoveAll(tempDir)
		}
	}()

	if err := s.copyAssets(tempDir); err != nil {
		return err
	}
	if err := writeOutputs(tempDir, outputs); err != nil {
		return err
	}
	if err := writeFile(tempDir, "404.html", notFound); err != nil {
		return err
	}

	artifacts, err := s.buildArtifacts(routes, outputs, available)
	if err != nil {
		return err
	}
	for name, payload := range artifacts {
		if err := writeFile(tempDir, name, payload); err != nil {
			return err
		}
	}

	if err := fsutil.ReplaceDir(tempDir, finalDir); err != nil {
		return err
	}
	cleanTemp = false
	tempDir = ""

	s.artifacts.Update(artifactSearchIndex, artifacts[artifactSearchIndex])
	s.artifacts.Update(artifactRoutes, artifacts[artifactRoutes])
	s.catalog.Publish(available)

	s.logger.Info("static build completed",
		"output", finalDir,
		"pages", len(outputs)+1,
		"posts", len(available),
		"duration", time.Since(started).Round(time.Millisecond),
	)
	return nil
}

// SearchIndex returns the search index of the last build.
func (s *Service) SearchIndex() json.RawMessage {
	payload := s.artifacts.Snapshot(artifactSearchIndex)
	if len(payload) == 0 {
		return append(json.RawMessage(nil), emptySearchIndexJSON...)
	}
	return payload
}

// ThemeDir returns the directory containing template assets, if any.
func (s *Service) ThemeDir() string {
	return s.templates.StaticDir
}

// buildArtifacts produces the machine readable files of the build keyed by file name.
func (s *Service) buildArtifacts(routes []plugins.HandledRoute, outputs []output, available []content.Record) (map[string][]byte, error) {
	catalog := make([]content.Record, 0, len(routes))
	paths := make([]string, 0, len(routes))
	byRoute := make(map[string]content.Record, len(available))
	for _, r := range routes {
		if r.Data != nil {
			catalog = append(catalog, r.Data.Clone())
			byRoute[r.Route] = *r.Data
		} else {
			catalog = append(catalog, content.Record{Route: r.Route, Title: r.Title})
		}
		paths = append(paths, r.Route)
	}

	routesJSON, err := json.Marshal(catalog)
	if err != nil {
		return nil, fmt.Errorf("encode routes: %w", err)
	}

	posts := make([]post, 0, len(available))
	for _, out := range outputs {
		if out.Post != nil {
			posts = append(posts, *out.Post)
		}
	}
	indexJSON, err := buildSearchIndex(posts)
	if err != nil {
		return nil, fmt.Errorf("encode search index: %w", err)
	}

	sitemap, err := s.buildSitemap(paths, byRoute)
	if err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	feed, err := s.buildFeed(available)
	if err != nil {
		return nil, fmt.Errorf("encode feed: %w", err)
	}

	return map[string][]byte{
		artifactRoutes:      routesJSON,
		artifactSearchIndex: indexJSON,
		"sitemap.xml":       sitemap,
		"feed.xml":          feed,
	}, nil
}

func (s *Service) copyAssets(tempDir string) error {
	if info, err := os.Stat(s.cfg.AssetsDir); err == nil && info.IsDir() {
		if err := fsutil.CopyTree(s.cfg.AssetsDir, filepath.Join(tempDir, "assets")); err != nil {
			return fmt.Errorf("copy assets: %w", err)
		}
	}
	if s.templates.StaticDir != "" {
		if err := fsutil.CopyTree(s.templates.StaticDir, filepath.Join(tempDir, "theme")); err != nil {
			return fmt.Errorf("copy theme assets: %w", err)
		}
	}
	return nil
}

// availableRecords returns the published post records, newest first.
func availableRecords(routes []plugins.HandledRoute) []content.Record {
	out := make([]content.Record, 0, len(routes))
	for _, r := range routes {
		if r.Data != nil && r.Data.IsPublished() {
			out = append(out, r.Data.Clone())
		}
	}
	category.SortByDate(out)
	return out
}

func writeOutputs(baseDir string, outputs []output) error {
	for _, out := range outputs {
		if err := writeFile(baseDir, out.Path, out.HTML); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(baseDir, rel string, data []byte) error {
	target := filepath.Join(baseDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", rel, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

// Route types understood by the generator.
const (
	RouteTypeContentFolder = "contentFolder"
	RouteTypeCategoryIDs   = "categoryIds"
)

// Names of the built-in post renderers.
const (
	RendererSocialTags = "socialTags"
	RendererTweetEmbed = "tweetEmbed"
	RendererAdScript   = "adScript"
)

// EnvPrefix is the prefix for environment overrides, e.g. BLOG_BASEURL.
const EnvPrefix = "BLOG"

// RouteConfig maps a parameterised route to the router plugin that expands it.
type RouteConfig struct {
	Type          string   `json:"type" mapstructure:"type"`
	Folder        string   `json:"folder" mapstructure:"folder"`
	PostRenderers []string `json:"postRenderers" mapstructure:"postRenderers"`
}

// TweetConfig controls the tweet embed post renderer.
type TweetConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Account      string        `json:"account" mapstructure:"account"`
	Marker       string        `json:"marker" mapstructure:"marker"`
	WidgetScript string        `json:"widgetScript" mapstructure:"widgetScript"`
	TimeoutSec   int           `json:"timeoutSec" mapstructure:"timeoutSec"`
	timeout      time.Duration `json:"-"`
}

// Timeout returns the effective per-request timeout of the oEmbed client.
func (t TweetConfig) Timeout() time.Duration {
	return t.timeout
}

// AdsConfig controls the ad script post renderer.
type AdsConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	Client    string `json:"client" mapstructure:"client"`
	ScriptSrc string `json:"scriptSrc" mapstructure:"scriptSrc"`
}

// FeaturesConfig holds build-time toggles shown on the auxiliary pages.
type FeaturesConfig struct {
	PaypalEnabled      bool              `json:"paypalEnabled" mapstructure:"paypalEnabled"`
	PaypalID           string            `json:"paypalId" mapstructure:"paypalId"`
	AmazonLinksEnabled bool              `json:"amazonLinksEnabled" mapstructure:"amazonLinksEnabled"`
	AmazonLinks        map[string]string `json:"amazonLinks" mapstructure:"amazonLinks"`
}

// AffiliateLink returns the affiliate URL for a technology keyword, falling
// back to the generic "all" entry. Empty when affiliate links are disabled.
func (f FeaturesConfig) AffiliateLink(keyword string) string {
	if !f.AmazonLinksEnabled || len(f.AmazonLinks) == 0 {
		return ""
	}
	if link, ok := f.AmazonLinks[strings.ToLower(strings.TrimSpace(keyword))]; ok {
		return link
	}
	return f.AmazonLinks["all"]
}

// WatchConfig tunes the rebuild watcher used by `serve --watch`.
type WatchConfig struct {
	DebounceMs int           `json:"debounceMs" mapstructure:"debounceMs"`
	debounce   time.Duration `json:"-"`
}

// Debounce returns the effective debounce window.
func (w WatchConfig) Debounce() time.Duration {
	return w.debounce
}

// Config encapsulates runtime and build-time options.
type Config struct {
	Listen        string                 `json:"listen" mapstructure:"listen"`
	OutputDir     string                 `json:"outputDir" mapstructure:"outputDir"`
	TemplateDir   string                 `json:"templateDir" mapstructure:"templateDir"`
	AssetsDir     string                 `json:"assetsDir" mapstructure:"assetsDir"`
	BaseURL       string                 `json:"baseUrl" mapstructure:"baseUrl"`
	SiteName      string                 `json:"siteName" mapstructure:"siteName"`
	Description   string                 `json:"description" mapstructure:"description"`
	Image         string                 `json:"image" mapstructure:"image"`
	Twitter       string                 `json:"twitter" mapstructure:"twitter"`
	LogLevel      string                 `json:"logLevel" mapstructure:"logLevel"`
	DisableMinify bool                   `json:"disableMinify" mapstructure:"disableMinify"`
	RenderWorkers int                    `json:"renderWorkers" mapstructure:"renderWorkers"`
	Routes        map[string]RouteConfig `json:"routes" mapstructure:"routes"`
	PostRenderers []string               `json:"postRenderers" mapstructure:"postRenderers"`
	Tweet         TweetConfig            `json:"tweet" mapstructure:"tweet"`
	Ads           AdsConfig              `json:"ads" mapstructure:"ads"`
	Features      FeaturesConfig         `json:"features" mapstructure:"features"`
	Watch         WatchConfig            `json:"watch" mapstructure:"watch"`
}

var envKeys = []string{
	"listen",
	"outputDir",
	"templateDir",
	"assetsDir",
	"baseUrl",
	"logLevel",
	"tweet.enabled",
	"ads.enabled",
	"ads.client",
	"features.paypalEnabled",
	"features.paypalId",
	"features.amazonLinksEnabled",
}

// Load reads configuration from disk and applies sane defaults. An empty path
// yields the defaults, still subject to environment overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if strings.TrimSpace(configPath) != "" {
		v.SetConfigFile(filepath.Clean(configPath))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration populated only with defaults.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.applyDefaults()
	return cfg
}

// FileExists reports whether a config file is present at the given path.
func FileExists(configPath string) bool {
	info, err := os.Stat(filepath.Clean(configPath))
	return err == nil && !info.IsDir()
}

func (c *Config) applyDefaults() error {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.OutputDir == "" {
		c.OutputDir = "./dist/static"
	}
	if c.AssetsDir == "" {
		c.AssetsDir = "./assets"
	}
	c.TemplateDir = strings.TrimSpace(c.TemplateDir)

	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = "https://solocoding.dev"
	}
	c.SiteName = strings.TrimSpace(c.SiteName)
	if c.SiteName == "" {
		c.SiteName = "soloCoding"
	}
	if strings.TrimSpace(c.Description) == "" {
		c.Description = "A blog about programming and software development, writing about Spring, Quarkus, java, Angular, DevOps, Docker and kubernetes"
	}
	if strings.TrimSpace(c.Image) == "" {
		c.Image = "assets/logo.png"
	}
	if strings.TrimSpace(c.Twitter) == "" {
		c.Twitter = "@s0l0c0ding"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.RenderWorkers <= 0 {
		c.RenderWorkers = 8
	}

	if len(c.Routes) == 0 {
		c.Routes = map[string]RouteConfig{
			"/blog/:slug":        {Type: RouteTypeContentFolder, Folder: "./blog"},
			"/posts/:categoryId": {Type: RouteTypeCategoryIDs},
		}
	}
	normalized := make(map[string]RouteConfig, len(c.Routes))
	for pattern, rc := range c.Routes {
		norm, err := normalizeRoute(pattern)
		if err != nil {
			return fmt.Errorf("route %q: %w", pattern, err)
		}
		rc.Type = strings.TrimSpace(rc.Type)
		rc.Folder = strings.TrimSpace(rc.Folder)
		normalized[norm] = rc
	}
	c.Routes = normalized

	if c.PostRenderers == nil {
		c.PostRenderers = []string{RendererSocialTags, RendererTweetEmbed, RendererAdScript}
	}

	c.Tweet.Endpoint = strings.TrimSpace(c.Tweet.Endpoint)
	if c.Tweet.Endpoint == "" {
		c.Tweet.Endpoint = "https://publish.twitter.com/oembed"
	}
	c.Tweet.Account = strings.TrimPrefix(strings.TrimSpace(c.Tweet.Account), "@")
	if c.Tweet.Account == "" {
		c.Tweet.Account = strings.TrimPrefix(c.Twitter, "@")
	}
	if c.Tweet.Marker == "" {
		c.Tweet.Marker = "</article>"
	}
	if c.Tweet.WidgetScript == "" {
		c.Tweet.WidgetScript = "https://platform.twitter.com/widgets.js"
	}
	if c.Tweet.TimeoutSec <= 0 {
		c.Tweet.TimeoutSec = 15
	}
	c.Tweet.timeout = time.Duration(c.Tweet.TimeoutSec) * time.Second

	c.Ads.Client = strings.TrimSpace(c.Ads.Client)
	if c.Ads.ScriptSrc == "" {
		c.Ads.ScriptSrc = "https://pagead2.googlesyndication.com/pagead/js/adsbygoogle.js"
	}

	if c.Watch.DebounceMs <= 0 {
		c.Watch.DebounceMs = 500
	}
	c.Watch.debounce = time.Duration(c.Watch.DebounceMs) * time.Millisecond
	return nil
}

func (c *Config) validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Routes, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if filepath.Clean(c.OutputDir) == "." || filepath.Clean(c.OutputDir) == "/" {
		return fmt.Errorf("invalid config: outputDir must not be the working directory or root")
	}

	folders := 0
	for _, pattern := range c.RoutePatterns() {
		rc := c.Routes[pattern]
		switch rc.Type {
		case RouteTypeContentFolder:
			if rc.Folder == "" {
				return fmt.Errorf("route %s: contentFolder requires a folder", pattern)
			}
			folders++
		case "":
			return fmt.Errorf("route %s: missing type", pattern)
		}
		if !strings.Contains(pattern, "/:") {
			return fmt.Errorf("route %s: pattern has no parameter", pattern)
		}
	}
	if folders > 1 {
		return errors.New("only one contentFolder route is supported")
	}

	if c.Tweet.Enabled {
		if err := validation.Validate(c.Tweet.Endpoint, validation.Required, is.URL); err != nil {
			return fmt.Errorf("invalid tweet endpoint: %w", err)
		}
	}
	if c.Ads.Enabled && c.Ads.Client == "" {
		return errors.New("ads enabled but ads.client missing")
	}
	if c.Features.PaypalEnabled && strings.TrimSpace(c.Features.PaypalID) == "" {
		return errors.New("paypal enabled but features.paypalId missing")
	}
	return nil
}

// RoutePatterns returns the configured route patterns in a stable order.
func (c *Config) RoutePatterns() []string {
	patterns := make([]string, 0, len(c.Routes))
	for pattern := range c.Routes {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)
	return patterns
}

// ContentFolder returns the configured markdown folder and its route pattern.
func (c *Config) ContentFolder() (folder, pattern string, ok bool) {
	for _, p := range c.RoutePatterns() {
		rc := c.Routes[p]
		if rc.Type == RouteTypeContentFolder {
			return rc.Folder, p, true
		}
	}
	return "", "", false
}

// AbsoluteURL joins the base URL with a site-relative path.
func (c *Config) AbsoluteURL(route string) string {
	trimmed := strings.TrimSpace(route)
	if trimmed == "" || trimmed == "/" {
		return c.BaseURL + "/"
	}
	return c.BaseURL + "/" + strings.TrimPrefix(trimmed, "/")
}

func normalizeRoute(raw string) (string, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(raw, "\\", "/"))
	if trimmed == "" {
		return "", errors.New("empty route")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	cleaned := path.Clean(trimmed)
	if strings.HasPrefix(cleaned, "/..") || strings.Contains(cleaned, "/../") {
		return "", errors.New("path escapes root")
	}
	if cleaned != "/" {
		cleaned = strings.TrimSuffix(cleaned, "/")
	}
	return cleaned, nil
}

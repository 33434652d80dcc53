package plugins

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/s0l0c0ding/solocoding/config"
)

// AdScript injects the ad loader into post and blog pages.
type AdScript struct {
	enabled bool
	tag     string
}

// NewAdScript builds the ad script plugin.
func NewAdScript(cfg config.AdsConfig) *AdScript {
	src := cfg.ScriptSrc
	if cfg.Client != "" {
		sep := "?"
		if strings.Contains(src, "?") {
			sep = "&"
		}
		src += sep + "client=" + url.QueryEscape(cfg.Client)
	}
	tag := fmt.Sprintf(`<script async src="%s" crossorigin="anonymous"></script>`, html.EscapeString(src))
	return &AdScript{enabled: cfg.Enabled, tag: tag}
}

// Render implements RenderFunc.
func (a *AdScript) Render(_ context.Context, page string, route HandledRoute) (string, error) {
	if !a.enabled || !carriesAds(route.Route) {
		return page, nil
	}
	out, _ := insertBefore(page, HeadMarker, a.tag)
	return out, nil
}

func carriesAds(route string) bool {
	return strings.Contains(route, "posts") || strings.Contains(route, "blog")
}

package plugins

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/s0l0c0ding/solocoding/config"
)

const maxEmbedResponse = 1 << 20

var embedEscapes = strings.NewReplacer(
	`\n`, "",
	`\r`, "",
	`\t`, "",
	`\"`, `"`,
	`\/`, "/",
	"\n", "",
	"\r", "",
)

// TweetEmbed splices an embedded tweet into published posts that reference one.
type TweetEmbed struct {
	cfg       config.TweetConfig
	client    *http.Client
	logger    *slog.Logger
	userAgent string
}

type oEmbedResponse struct {
	HTML string `json:"html"`
}

// NewTweetEmbed builds the tweet embed plugin. A nil client gets one with the
// configured timeout.
func NewTweetEmbed(cfg config.TweetConfig, client *http.Client, logger *slog.Logger, userAgent string) *TweetEmbed {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout()}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TweetEmbed{cfg: cfg, client: client, logger: logger, userAgent: userAgent}
}

// Render implements RenderFunc. It only calls the oEmbed endpoint when
// tweet.enabled is set, which it is not by default; otherwise every page,
// including posts with a tweetId, passes through unchanged.
func (t *TweetEmbed) Render(ctx context.Context, page string, route HandledRoute) (string, error) {
	if !t.cfg.Enabled || route.Data == nil {
		return page, nil
	}
	if !route.Data.IsPublished() || strings.TrimSpace(route.Data.TweetID) == "" {
		return page, nil
	}

	markup, err := t.fetch(ctx, route.Data.TweetID)
	if err != nil {
		return "", err
	}

	out, ok := insertBefore(page, t.cfg.Marker, markup)
	if !ok {
		t.logger.Debug("tweet embed", "route", route.Route, "error", "body marker not found", "marker", t.cfg.Marker)
	}
	script := fmt.Sprintf(`<script async src="%s" charset="utf-8"></script>`, html.EscapeString(t.cfg.WidgetScript))
	out, _ = insertBefore(out, HeadMarker, script)
	return out, nil
}

// StatusURL is the public URL of a tweet of the configured account.
func (t *TweetEmbed) StatusURL(id string) string {
	return "https://twitter.com/" + url.PathEscape(t.cfg.Account) + "/status/" + url.PathEscape(id)
}

func (t *TweetEmbed) fetch(ctx context.Context, id string) (string, error) {
	endpoint, err := url.Parse(t.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse oembed endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("url", t.StatusURL(id))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("construct oembed request: %w", err)
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("oembed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("oembed request failed: %s (%s)", resp.Status, strings.TrimSpace(string(data)))
	}

	var payload oEmbedResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxEmbedResponse)).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode oembed: %w", err)
	}
	return sanitizeEmbed(payload.HTML), nil
}

// sanitizeEmbed drops escape sequences and everything from the first script tag on.
func sanitizeEmbed(markup string) string {
	markup = embedEscapes.Replace(markup)
	if idx := strings.Index(markup, "<script"); idx >= 0 {
		markup = markup[:idx]
	}
	return strings.TrimSpace(markup)
}

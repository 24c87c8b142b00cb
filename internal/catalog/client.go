// Package catalog fetches movie listings from the upstream catalog (TMDB) on behalf of the
// browser, attaching the server-held API key so it never reaches the client.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"

	"flickhub/internal/core/apperr"
)

type Category string

const (
	Trending   Category = "trending"
	TopRated   Category = "top-rated"
	NowPlaying Category = "now-playing"
	TVPopular  Category = "tv-popular"
	Upcoming   Category = "upcoming"
)

var upstreamPaths = map[Category]string{
	Trending:   "/trending/movie/week",
	TopRated:   "/movie/top_rated",
	NowPlaying: "/movie/now_playing",
	TVPopular:  "/tv/popular",
	Upcoming:   "/movie/upcoming",
}

// Categories lists the supported categories in a stable order.
func Categories() []Category {
	out := make([]Category, 0, len(upstreamPaths))
	for c := range upstreamPaths {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// UpstreamPath returns the catalog path for c.
func UpstreamPath(c Category) (string, bool) {
	p, ok := upstreamPaths[c]
	return p, ok
}

const (
	MsgUpstreamFailed  = "Failed to fetch data from catalog"
	MsgUnknownCategory = "Unknown category"

	defaultLanguage = "en-US"
	maxBodyBytes    = 8 << 20
)

type Config struct {
	BaseURL  string
	APIKey   string
	Language string
	Timeout  time.Duration
}

type Client struct {
	base     *url.URL
	apiKey   string
	language string
	http     *http.Client
	log      *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.New("catalog: base url must be absolute")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("catalog: api key is required")
	}
	lang := cfg.Language
	if lang == "" {
		lang = defaultLanguage
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:     base,
		apiKey:   cfg.APIKey,
		language: lang,
		http:     &http.Client{Timeout: timeout},
		log:      log,
	}, nil
}

// Fetch performs exactly one upstream request for category and returns the JSON body as-is.
func (c *Client) Fetch(ctx context.Context, category Category) ([]byte, error) {
	path, ok := upstreamPaths[category]
	if !ok {
		return nil, apperr.NotFound(MsgUnknownCategory)
	}
	log := c.log.With(zap.String("category", string(category)), zap.String("path", path))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		// the url embeds the key, keep it out of the cause
		log.Error("catalog request build failed")
		observe(category, outcomeError)
		return nil, apperr.Upstream(MsgUpstreamFailed, nil)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		cause := scrub(err)
		log.Error("catalog request failed", zap.Duration("latency", time.Since(start)), zap.Error(cause))
		observe(category, outcomeError)
		return nil, apperr.Upstream(MsgUpstreamFailed, cause)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		cause := scrub(err)
		log.Error("catalog body read failed", zap.Error(cause))
		observe(category, outcomeError)
		return nil, apperr.Upstream(MsgUpstreamFailed, cause)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("catalog returned non-2xx",
			zap.Int("status", resp.StatusCode),
			zap.Duration("latency", time.Since(start)),
		)
		observe(category, outcomeStatus)
		return nil, apperr.Upstream(MsgUpstreamFailed, fmt.Errorf("catalog status %d", resp.StatusCode))
	}
	if !json.Valid(body) {
		log.Warn("catalog returned non-JSON body", zap.Int("bytes", len(body)))
		observe(category, outcomeInvalid)
		return nil, apperr.Upstream(MsgUpstreamFailed, errors.New("catalog body is not JSON"))
	}

	log.Debug("catalog fetched", zap.Int("bytes", len(body)), zap.Duration("latency", time.Since(start)))
	observe(category, outcomeOK)
	return body, nil
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = u.Path + path
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)
	u.RawQuery = q.Encode()
	return u.String()
}

// scrub drops the *url.Error wrapper, whose message carries the full request URL.
func scrub(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		if ue.Timeout() {
			return fmt.Errorf("%s: timeout: %w", ue.Op, ue.Err)
		}
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}

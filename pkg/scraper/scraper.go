// Package scraper provides functionality to fetch ranking, schedule and profile pages
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/myusername/tennis-stats-scraper/internal/metrics"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ClientConfig configures a Client
type ClientConfig struct {
	Timeout   time.Duration
	UserAgent string
	// DumpDir, when set, receives a copy of every fetched page body
	DumpDir string
	Logger  *zap.Logger
	// HTTPClient overrides the client built from Timeout
	HTTPClient *http.Client
}

// Client fetches HTML pages and parses them into goquery documents
type Client struct {
	http      *http.Client
	userAgent string
	dumpDir   string
	logger    *zap.SugaredLogger
}

// NewClient creates a Client, applying defaults for unset fields
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				TLSHandshakeTimeout: 10 * time.Second,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConns:        10,
			},
		}
	}
	return &Client{
		http:      httpClient,
		userAgent: cfg.UserAgent,
		dumpDir:   cfg.DumpDir,
		logger:    cfg.Logger.Sugar(),
	}
}

// FetchDocument downloads the page at rawURL and parses it.
// The returned document carries its URL so relative links can be resolved.
func (c *Client) FetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := c.FetchURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML from %s: %w", rawURL, err)
	}
	if u, err := url.Parse(rawURL); err == nil {
		doc.Url = u
	}
	return doc, nil
}

// FetchURL downloads the content at rawURL and returns it as a string
func (c *Client) FetchURL(ctx context.Context, rawURL string) (string, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.FetchErrors.WithLabelValues(errorKind(err)).Inc()
		return "", Classify(fmt.Errorf("error fetching URL %s: %w", rawURL, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
		metrics.FetchErrors.WithLabelValues("status").Inc()
		return "", Classify(err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.FetchErrors.WithLabelValues(errorKind(err)).Inc()
		return "", Classify(fmt.Errorf("error reading response body from %s: %w", rawURL, err))
	}

	metrics.DocumentsFetched.Inc()
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	c.logger.Debugw("Fetched page",
		"url", rawURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)

	if c.dumpDir != "" {
		c.dump(rawURL, body)
	}

	return string(body), nil
}

func (c *Client) dump(rawURL string, body []byte) {
	path := filepath.Join(c.dumpDir, DumpFilename(rawURL))
	if err := SaveContentToFile(path, string(body)); err != nil {
		c.logger.Warnw("Error saving page HTML", "url", rawURL, "path", path, "error", err)
	}
}

// DumpFilename maps a URL to a flat, filesystem-safe HTML filename
func DumpFilename(rawURL string) string {
	name := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
	return name + ".html"
}

// SaveContentToFile saves content to a file, creating parent directories
func SaveContentToFile(filename string, content string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filename, err)
	}
	return os.WriteFile(filename, []byte(content), 0o644)
}

// ResolveRelativeURL resolves ref against the document's own URL.
// Absolute refs are returned unchanged.
func ResolveRelativeURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if r.IsAbs() || base == nil {
		return r.String()
	}
	return base.ResolveReference(r).String()
}

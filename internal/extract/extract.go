// Package extract fetches a page and pulls out the metadata a link is saved
// with: title, description, thumbnail, platform and tags.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Source is the platform a link was saved from.
type Source string

const (
	SourceYouTube       Source = "youtube"
	SourceGitHub        Source = "github"
	SourceMedium        Source = "medium"
	SourceTwitter       Source = "twitter"
	SourceStackOverflow Source = "stackoverflow"
	SourceReddit        Source = "reddit"
	SourceOther         Source = "other"
)

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case SourceYouTube, SourceGitHub, SourceMedium, SourceTwitter, SourceStackOverflow, SourceReddit, SourceOther:
		return true
	}
	return false
}

// SourceFor maps a URL to its platform.
func SourceFor(rawURL string) Source {
	u := strings.ToLower(rawURL)
	switch {
	case strings.Contains(u, "youtube.com") || strings.Contains(u, "youtu.be"):
		return SourceYouTube
	case strings.Contains(u, "github.com"):
		return SourceGitHub
	case strings.Contains(u, "medium.com"):
		return SourceMedium
	case strings.Contains(u, "twitter.com") || strings.Contains(u, "x.com"):
		return SourceTwitter
	case strings.Contains(u, "stackoverflow.com"):
		return SourceStackOverflow
	case strings.Contains(u, "reddit.com"):
		return SourceReddit
	}
	return SourceOther
}

// Metadata is what a page says about itself.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Source      Source   `json:"source"`
	Tags        []string `json:"tags"`
	Author      string   `json:"author,omitempty"`

	// Readable body text, kept for summarisation and never persisted.
	Text string `json:"-"`
}

// Page is a fetched and parsed document handed to a platform.
type Page struct {
	URL *url.URL
	Raw []byte
	Doc *goquery.Document
}

// Platform knows how to read one kind of site.
type Platform interface {
	// Name returns a short identifier used in logs
	Name() string
	// Matches reports whether the platform handles the lower-cased URL
	Matches(lowerURL string) bool
	// Extract fills md from the page
	Extract(page *Page, md *Metadata)
}

// Config contains extractor configuration
type Config struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultConfig returns default extractor configuration
func DefaultConfig() Config {
	return Config{
		Timeout:      5 * time.Second,
		UserAgent:    defaultUserAgent,
		MaxBodyBytes: 2 << 20,
	}
}

// Extractor fetches pages and dispatches them to the matching platform.
type Extractor struct {
	cfg       Config
	client    *http.Client
	platforms []Platform
	fallback  Platform
	logger    *slog.Logger
}

// New creates an Extractor with the YouTube, GitHub and generic platforms.
func New(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return &Extractor{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		platforms: []Platform{youTube{}, gitHub{}},
		fallback:  generic{},
		logger:    logger,
	}
}

// Extract fetches rawURL and returns its metadata. When the page cannot be
// fetched the returned metadata still carries the source, with the URL as
// its title, alongside the error.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Metadata, error) {
	md := &Metadata{
		Source: SourceFor(rawURL),
		Tags:   []string{},
	}

	platform := e.platformFor(rawURL)

	page, err := e.fetch(ctx, rawURL)
	if err != nil {
		md.Title = rawURL
		return md, err
	}

	platform.Extract(page, md)
	if md.Title == "" {
		md.Title = rawURL
	}

	e.logger.Debug("extracted metadata",
		"url", rawURL,
		"platform", platform.Name(),
		"title", md.Title,
		"has_description", md.Description != "",
		"tags", len(md.Tags),
	)
	return md, nil
}

func (e *Extractor) platformFor(rawURL string) Platform {
	lower := strings.ToLower(rawURL)
	for _, p := range e.platforms {
		if p.Matches(lower) {
			return p
		}
	}
	return e.fallback
}

func (e *Extractor) fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("URL must be http or https")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if e.cfg.MaxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, e.cfg.MaxBodyBytes)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return &Page{URL: u, Raw: raw, Doc: doc}, nil
}

// metaContent returns the trimmed content attribute of the first match.
func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(v)
}

func titleTag(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Truncate shortens s to at most maxBytes without splitting a UTF-8 sequence.
func Truncate(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	i := maxBytes
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[:i]
}

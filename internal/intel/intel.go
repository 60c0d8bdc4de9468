// Package intel fetches inspiration pages and extracts a bounded summary.
package intel

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

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"

	"github.com/leefowlercu/phoenix/internal/metrics"
)

const (
	noTitle       = "No Title"
	excerptLength = 500
)

// Record is the result of fetching one URL. Error is set instead of the
// content fields when the fetch fails.
type Record struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Text    string `json:"text,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Failed returns true if the record carries an error.
func (r Record) Failed() bool {
	return r.Error != ""
}

// Fetcher retrieves and summarizes web pages.
type Fetcher struct {
	client        *http.Client
	userAgent     string
	maxParagraphs int
	maxBodyBytes  int64
	concurrency   int
	logger        *slog.Logger
}

// Option configures the Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxParagraphs sets how many leading paragraphs form the text.
func WithMaxParagraphs(n int) Option {
	return func(f *Fetcher) {
		f.maxParagraphs = n
	}
}

// WithMaxBodyBytes caps how much of the response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodyBytes = n
	}
}

// WithConcurrency bounds parallel fetches in FetchAll.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		f.concurrency = n
	}
}

// WithHTTPClient replaces the HTTP client. Its timeout is kept as given.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher with the given options.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:        &http.Client{Timeout: 10 * time.Second},
		userAgent:     "Mozilla/5.0",
		maxParagraphs: 10,
		maxBodyBytes:  5 * 1024 * 1024,
		concurrency:   4,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.concurrency < 1 {
		f.concurrency = 1
	}
	return f
}

// Fetch retrieves rawURL and returns its title and leading paragraphs.
// Failures are reported in Record.Error; Fetch never returns an error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (rec Record) {
	rec = Record{URL: rawURL}
	defer func() {
		if r := recover(); r != nil {
			rec = Record{URL: rawURL, Error: fmt.Sprintf("failed to parse page; %v", r)}
		}
		if rec.Failed() {
			metrics.RecordScrape(fmt.Errorf("%s", rec.Error))
			f.logger.Warn("inspiration fetch failed", "url", rawURL, "error", rec.Error)
		} else {
			metrics.RecordScrape(nil)
		}
	}()

	pageURL, err := url.Parse(rawURL)
	if err != nil || pageURL.Scheme == "" || pageURL.Host == "" {
		rec.Error = fmt.Sprintf("invalid url %q", rawURL)
		return rec
	}

	body, err := f.get(ctx, rawURL)
	if err != nil {
		rec.Error = err.Error()
		return rec
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		rec.Error = fmt.Sprintf("failed to parse page; %v", err)
		return rec
	}

	rec.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if rec.Title == "" {
		rec.Title = noTitle
	}
	rec.Text = f.paragraphs(doc)
	rec.Excerpt = excerpt(body, pageURL)

	return rec
}

// FetchAll fetches every URL with bounded parallelism. Results keep the
// input order.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []Record {
	records := make([]Record, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, u := range urls {
		g.Go(func() error {
			records[i] = f.Fetch(gctx, u)
			return nil
		})
	}
	_ = g.Wait()

	return records
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request; %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page; %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d fetching page", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read page; %w", err)
	}
	return body, nil
}

func (f *Fetcher) paragraphs(doc *goquery.Document) string {
	var parts []string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := strings.Join(strings.Fields(s.Text()), " "); t != "" {
			parts = append(parts, t)
		}
		return len(parts) < f.maxParagraphs
	})
	return strings.Join(parts, " ")
}

// excerpt is a best-effort readability summary; failures yield "".
func excerpt(body []byte, pageURL *url.URL) string {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return ""
	}
	text := strings.Join(strings.Fields(article.TextContent), " ")
	runes := []rune(text)
	if len(runes) > excerptLength {
		return string(runes[:excerptLength])
	}
	return text
}

// Package wikipedia looks up short page summaries through the MediaWiki API.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// NoResult is returned as the summary when the search finds nothing.
const NoResult = "No good Wikipedia Search Result was found"

// Config configures the client.
type Config struct {
	// Lang selects the wiki, e.g. "en" for en.wikipedia.org.
	Lang string
	// BaseURL overrides the API endpoint derived from Lang.
	BaseURL   string
	MaxChars  int
	Timeout   time.Duration
	UserAgent string
	// RequestsPerSecond paces outgoing requests; 0 disables pacing.
	RequestsPerSecond float64
}

// Client queries one language edition of Wikipedia.
type Client struct {
	endpoint  string
	maxChars  int
	userAgent string
	limiter   *rate.Limiter
	http      *http.Client
}

// Page is one resolved search hit.
type Page struct {
	Title   string
	Extract string
}

func NewClient(cfg Config) *Client {
	if cfg.Lang == "" {
		cfg.Lang = "en"
	}
	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.wikipedia.org/w/api.php", cfg.Lang)
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 4000
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "docchat/1.0 (local document QA)"
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Client{
		endpoint:  endpoint,
		maxChars:  cfg.MaxChars,
		userAgent: cfg.UserAgent,
		limiter:   limiter,
		http:      &http.Client{Timeout: cfg.Timeout},
	}
}

// Summarize searches for query and returns the intro of up to topK pages as
// "Page: ...\nSummary: ..." blocks, capped at MaxChars runes in total.
// topK <= 0 means 1.
func (c *Client) Summarize(ctx context.Context, query string, topK int) (string, error) {
	pages, err := c.Lookup(ctx, query, topK)
	if err != nil {
		return "", err
	}
	if len(pages) == 0 {
		return NoResult, nil
	}
	blocks := make([]string, 0, len(pages))
	for _, p := range pages {
		blocks = append(blocks, "Page: "+p.Title+"\nSummary: "+p.Extract)
	}
	return truncate(strings.Join(blocks, "\n\n"), c.maxChars), nil
}

// Lookup returns the top pages for query with their full plain-text intros.
// Pages without an extract are skipped.
func (c *Client) Lookup(ctx context.Context, query string, topK int) ([]Page, error) {
	if topK <= 0 {
		topK = 1
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	titles, err := c.search(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	var pages []Page
	for _, title := range titles {
		p, ok, err := c.extract(ctx, title)
		if err != nil {
			return nil, err
		}
		if ok {
			pages = append(pages, p)
		}
	}
	return pages, nil
}

func (c *Client) search(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {strconv.Itoa(limit)},
		"srprop":   {""},
	}
	var out struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := c.get(ctx, params, &out); err != nil {
		return nil, fmt.Errorf("wikipedia search %q: %w", query, err)
	}
	titles := make([]string, 0, len(out.Query.Search))
	for _, s := range out.Query.Search {
		titles = append(titles, s.Title)
	}
	return titles, nil
}

func (c *Client) extract(ctx context.Context, title string) (Page, bool, error) {
	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"redirects":   {"1"},
		"titles":      {title},
	}
	var out struct {
		Query struct {
			Pages []struct {
				Title   string `json:"title"`
				Extract string `json:"extract"`
				Missing bool   `json:"missing"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := c.get(ctx, params, &out); err != nil {
		return Page{}, false, fmt.Errorf("wikipedia page %q: %w", title, err)
	}
	for _, p := range out.Query.Pages {
		text := strings.TrimSpace(p.Extract)
		if p.Missing || text == "" {
			continue
		}
		return Page{Title: p.Title, Extract: text}, true, nil
	}
	return Page{}, false, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	params.Set("format", "json")
	params.Set("formatversion", "2")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

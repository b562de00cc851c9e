// Package news scrapes global market trends and financial headlines from
// Google Finance through a CORS proxy. Best-effort by contract: every
// failure mode collapses to a static fallback payload, never an error.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"megatron-solana/internal/domain"
	"megatron-solana/internal/observability"
)

// Default endpoints. The proxy wraps the target page in a JSON envelope so
// the scrape works from environments that cannot reach google.com directly.
const (
	DefaultProxyURL  = "https://api.allorigins.win/get?url="
	DefaultTargetURL = "https://www.google.com/finance/"
	DefaultTimeout   = 20 * time.Second
)

// maxHeadlines caps the number of scraped news items.
const maxHeadlines = 5

// Class names Google Finance currently uses for the "Compare Markets" chips
// and the news list. When Google rotates them the scrape finds nothing and
// the fallback payload is served instead.
const (
	classTrendChip   = "SxcTic"
	classTrendTitle  = "ZvmM7"
	classTrendValue  = "YMlKec"
	classTrendChange = "P2Luy"
	classTrendUp     = "EjqUne"
	classNewsItem    = "yY3Lee"
	classNewsTitle   = "Yfwt5"
	classNewsSource  = "sfyJob"
	classNewsTime    = "Adak"
)

// ScraperOptions contains configuration for creating a Scraper.
type ScraperOptions struct {
	ProxyURL  string
	TargetURL string
	Client    *http.Client
	Logger    *log.Logger
	Now       func() time.Time // cache-busting timestamp source, defaults to time.Now
}

// Scraper fetches and parses the Google Finance front page.
type Scraper struct {
	proxyURL  string
	targetURL string
	client    *http.Client
	logger    *log.Logger
	now       func() time.Time
}

// NewScraper creates a Scraper.
func NewScraper(opts ScraperOptions) *Scraper {
	proxyURL := opts.ProxyURL
	if proxyURL == "" {
		proxyURL = DefaultProxyURL
	}
	targetURL := opts.TargetURL
	if targetURL == "" {
		targetURL = DefaultTargetURL
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Scraper{
		proxyURL:  proxyURL,
		targetURL: targetURL,
		client:    client,
		logger:    logger,
		now:       now,
	}
}

// proxyEnvelope is the JSON body returned by the CORS proxy.
type proxyEnvelope struct {
	Contents string `json:"contents"`
}

// Fetch scrapes trends and headlines. It never returns nil: any failure,
// and any scrape that finds nothing (proxy down, Google rotated its class
// names), yields the static fallback so the display never breaks.
func (s *Scraper) Fetch(ctx context.Context) *domain.MarketPulse {
	pulse, err := s.scrape(ctx)
	if err != nil {
		s.logger.Printf("News scrape failed, serving fallback: %v", err)
		observability.RecordNewsFetch("fallback")
		return Fallback()
	}
	observability.RecordNewsFetch("live")
	return pulse
}

func (s *Scraper) scrape(ctx context.Context) (*domain.MarketPulse, error) {
	// Timestamp query param defeats proxy-side caching.
	endpoint := fmt.Sprintf("%s%s&timestamp=%d",
		s.proxyURL, url.QueryEscape(s.targetURL), s.now().UnixMilli())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("proxy request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("proxy status %d", resp.StatusCode)
	}

	var envelope proxyEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode proxy envelope: %w", err)
	}
	if envelope.Contents == "" {
		return nil, fmt.Errorf("empty proxied page")
	}

	doc, err := html.Parse(strings.NewReader(envelope.Contents))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	trends := extractTrends(doc)
	items := extractNews(doc)

	if len(trends) == 0 && len(items) == 0 {
		return nil, fmt.Errorf("no recognizable markup found")
	}

	// Partial scrapes are padded from the fallback so both panels render.
	fb := Fallback()
	if len(trends) == 0 {
		trends = fb.Trends
	}
	if len(items) == 0 {
		items = fb.News
	}

	return &domain.MarketPulse{Trends: trends, News: items}, nil
}

// extractTrends collects the market index chips.
func extractTrends(doc *html.Node) []domain.MarketTrend {
	var trends []domain.MarketTrend
	for _, chip := range findAllByClass(doc, classTrendChip) {
		title := textByClass(chip, classTrendTitle)
		if title == "" {
			title = "Unknown"
		}
		value := textByClass(chip, classTrendValue)
		if value == "" {
			value = "0.00"
		}
		change := textByClass(chip, classTrendChange)
		if change == "" {
			change = "0%"
		}
		positive := strings.Contains(change, "+") ||
			hasDescendantClass(chip, classTrendUp) ||
			!strings.Contains(change, "-")

		trends = append(trends, domain.MarketTrend{
			Title:    title,
			Value:    value,
			Change:   change,
			Positive: positive,
		})
	}
	return trends
}

// extractNews collects up to maxHeadlines headlines.
func extractNews(doc *html.Node) []domain.NewsItem {
	var items []domain.NewsItem
	for _, node := range findAllByClass(doc, classNewsItem) {
		if len(items) >= maxHeadlines {
			break
		}
		title := textByClass(node, classNewsTitle)
		if title == "" {
			title = "No Title"
		}
		source := textByClass(node, classNewsSource)
		if source == "" {
			source = "Google Finance"
		}
		when := textByClass(node, classNewsTime)
		if when == "" {
			when = "Now"
		}
		items = append(items, domain.NewsItem{Title: title, Source: source, Time: when})
	}
	return items
}

// hasClass reports whether the element node carries the CSS class.
func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// findAllByClass returns all descendant elements with the class, in
// document order.
func findAllByClass(root *html.Node, class string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if hasClass(n, class) {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

// hasDescendantClass reports whether any descendant carries the class.
func hasDescendantClass(root *html.Node, class string) bool {
	return len(findAllByClass(root, class)) > 0
}

// textByClass returns the collected text of the first descendant with the
// class, or "".
func textByClass(root *html.Node, class string) string {
	nodes := findAllByClass(root, class)
	if len(nodes) == 0 {
		return ""
	}
	return strings.TrimSpace(collectText(nodes[0]))
}

// collectText concatenates all text nodes under n.
func collectText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(collectText(c))
	}
	return sb.String()
}

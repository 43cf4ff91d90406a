// Package collector ingests news headlines per symbol, scores them with a
// sentiment lexicon and produces daily SentimentRecords for the analysis
// engine.
package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/tidemark/pkg/httputil"
	"github.com/wonny/tidemark/pkg/logger"
)

// Headline is one scraped news item for a symbol.
type Headline struct {
	Title     string
	Published time.Time
}

// Client fetches and parses news headline pages.
// ⭐ SSOT: headline HTTP calls and HTML parsing live here only
type Client struct {
	httpClient *httputil.Client
	baseURL    string
	logger     *logger.Logger
}

// NewClient creates a headline client on top of the shared rate-limited
// HTTP client.
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     log.WithField("module", "collector"),
	}
}

// FetchHeadlines fetches the news headlines for a symbol on a given date.
func (c *Client) FetchHeadlines(ctx context.Context, symbol string, date time.Time) ([]Headline, error) {
	url := fmt.Sprintf("%s/item/news.naver?code=%s&date=%s",
		c.baseURL, symbol, date.Format("2006-01-02"))

	headers := map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
		"Referer":    c.baseURL + "/",
	}

	resp, err := c.httpClient.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	headlines, err := parseHeadlines(string(body), date)
	if err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(headlines),
	}).Debug("Fetched headlines")
	return headlines, nil
}

// parseHeadlines extracts headline rows from a news list page. Rows without
// a title cell are skipped; a missing or malformed timestamp falls back to
// the requested date.
func parseHeadlines(html string, date time.Time) ([]Headline, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var headlines []Headline
	doc.Find("table.news_list tr").Each(func(i int, row *goquery.Selection) {
		title := strings.TrimSpace(row.Find("td.title a").Text())
		if title == "" {
			return
		}

		published := date
		if ts := strings.TrimSpace(row.Find("td.date").Text()); ts != "" {
			if parsed, err := time.Parse("2006.01.02 15:04", ts); err == nil {
				published = parsed
			}
		}

		headlines = append(headlines, Headline{Title: title, Published: published})
	})

	return headlines, nil
}

package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/newscluster/telegram-bot/internal/errors"
	"github.com/newscluster/telegram-bot/pkg/metrics"
)

const maxFeedBodyBytes = 10 << 20

// pubDate layouts seen in the wild, most common first.
var pubDateLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	time.RFC822,
}

// FeedClient fetches and parses news RSS feeds.
type FeedClient struct {
	httpClient *http.Client
	baseURL    string
	breaker    *apperrors.CircuitBreaker
	log        *slog.Logger
}

// NewFeedClient builds a feed client for the given base URL, e.g.
// "https://news.google.com".
func NewFeedClient(baseURL string, timeout time.Duration, log *slog.Logger) *FeedClient {
	return &FeedClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		breaker:    apperrors.NewCircuitBreaker(),
		log:        log,
	}
}

// FetchRecent queries the feed for the topic in three location/language
// passes and merges the results, deduplicating by link. Earlier passes win.
// An individual pass may fail without failing the whole fetch; an error is
// returned only when every pass fails.
func (c *FeedClient) FetchRecent(ctx context.Context, topic, location, language string) ([]Article, error) {
	passes := searchPasses(location, language)

	results := make([][]Article, len(passes))
	errs := make([]error, len(passes))

	g, gctx := errgroup.WithContext(ctx)
	for i, pass := range passes {
		i, pass := i, pass
		g.Go(func() error {
			articles, err := c.fetch(gctx, topic, pass.location, pass.language)
			if err != nil {
				errs[i] = err
				c.log.Warn("feed pass failed",
					slog.String("topic", topic),
					slog.String("location", pass.location),
					slog.String("language", pass.language),
					slog.Any("error", err),
				)
				return nil
			}

			results[i] = articles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		merged []Article
		failed int
	)
	seen := make(map[string]struct{})

	for i, articles := range results {
		if errs[i] != nil {
			failed++
			continue
		}

		for _, article := range articles {
			if article.Link == "" {
				continue
			}
			if _, ok := seen[article.Link]; ok {
				continue
			}

			seen[article.Link] = struct{}{}
			merged = append(merged, article)
		}
	}

	if failed == len(passes) {
		return nil, apperrors.NewFeedError("all feed passes failed", errs[0])
	}

	return merged, nil
}

func (c *FeedClient) fetch(ctx context.Context, topic, location, language string) ([]Article, error) {
	feedURL := c.searchURL(topic, location, language)

	var articles []Article
	err := c.breaker.Call(func() error {
		return apperrors.WithRetry(ctx, func() error {
			fetched, fetchErr := c.fetchOnce(ctx, feedURL)
			if fetchErr != nil {
				return fetchErr
			}

			articles = fetched
			return nil
		})
	})
	if err != nil {
		metrics.RecordFeedRequest("error", 0)
		return nil, err
	}

	metrics.RecordFeedRequest("ok", len(articles))

	return articles, nil
}

func (c *FeedClient) fetchOnce(ctx context.Context, feedURL string) ([]Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, apperrors.NewFeedError("build feed request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewFeedError("request feed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewFeedError(fmt.Sprintf("feed returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBodyBytes))
	if err != nil {
		return nil, apperrors.NewFeedError("read feed body", err)
	}

	articles, err := parseRSS(body)
	if err != nil {
		return nil, apperrors.NewFeedError("parse feed", err)
	}

	return articles, nil
}

func (c *FeedClient) searchURL(topic, location, language string) string {
	query := url.Values{}
	query.Set("q", topic)
	query.Set("hl", language)
	query.Set("gl", location)
	query.Set("ceid", location+":"+language)

	return c.baseURL + "/rss/search?" + query.Encode()
}

type searchPass struct {
	location string
	language string
}

// searchPasses widens coverage for non-default locales: the user's exact
// locale, then the US edition in their language, then their location in
// English. Duplicate passes collapse.
func searchPasses(location, language string) []searchPass {
	candidates := []searchPass{
		{location: location, language: language},
		{location: "US", language: language},
		{location: location, language: "en"},
	}

	seen := make(map[searchPass]struct{}, len(candidates))
	passes := candidates[:0]
	for _, pass := range candidates {
		if _, ok := seen[pass]; ok {
			continue
		}
		seen[pass] = struct{}{}
		passes = append(passes, pass)
	}

	return passes
}

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
	Source  struct {
		Name string `xml:",chardata"`
	} `xml:"source"`
}

func parseRSS(data []byte) ([]Article, error) {
	var doc rssDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal rss: %w", err)
	}

	articles := make([]Article, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		article := Article{
			Title:       item.Title,
			Link:        item.Link,
			Source:      item.Source.Name,
			PublishedAt: parsePubDate(item.PubDate),
		}
		if article.Source == "" {
			article.Source = "Unknown"
		}

		articles = append(articles, article)
	}

	return articles, nil
}

func parsePubDate(raw string) time.Time {
	for _, layout := range pubDateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}

	return time.Time{}
}

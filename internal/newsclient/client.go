package newsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"finsent/internal/config"
)

// ErrRateLimited is returned when the API keeps answering 429 after the
// single delayed retry.
var ErrRateLimited = errors.New("rate limited by news API")

// HTTPError carries a non-success upstream status with a truncated response
// body for logging.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("news API returned status %d: %s", e.StatusCode, e.Body)
}

// maxBodyLog caps how much of an error response body is kept.
const maxBodyLog = 200

// Article is one flattened search result.
type Article struct {
	Day         string
	ID          string
	Title       string
	Description string
	Content     string
	URL         string
	Image       string
	PublishedAt time.Time
	SourceName  string
	SourceURL   string
	Query       string
	Page        int
}

// Client fetches day-windowed, paginated news search results.
type Client struct {
	cfg        config.NewsConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient builds a client from the news configuration. Successive requests
// are paced by cfg.RequestInterval.
func NewClient(cfg config.NewsConfig, logger *slog.Logger) *Client {
	interval := cfg.RequestInterval
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		logger:     logger,
	}
}

type apiResponse struct {
	TotalArticles int          `json:"totalArticles"`
	Articles      []apiArticle `json:"articles"`
}

type apiArticle struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

// FetchPage requests one page of results for a query, windowed to a single
// calendar day. A 429 answer triggers exactly one retry after the configured
// delay; any other non-200 status becomes an *HTTPError.
func (c *Client) FetchPage(ctx context.Context, query string, day time.Time, page int) ([]Article, error) {
	resp, err := c.doRequest(ctx, query, day, page)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		drain(resp)
		c.logger.WarnContext(ctx, "rate limited, retrying once",
			slog.String("day", day.Format("2006-01-02")),
			slog.Int("page", page))

		select {
		case <-time.After(c.cfg.RetryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		resp, err = c.doRequest(ctx, query, day, page)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			drain(resp)
			return nil, ErrRateLimited
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyLog))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode news response: %w", err)
	}

	articles := make([]Article, 0, len(decoded.Articles))
	for _, a := range decoded.Articles {
		publishedAt, err := time.Parse(time.RFC3339, a.PublishedAt)
		if err != nil {
			publishedAt = time.Time{} // unparseable timestamps sort last
		}
		articles = append(articles, Article{
			Day:         day.Format("2006-01-02"),
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         a.URL,
			Image:       a.Image,
			PublishedAt: publishedAt.UTC(),
			SourceName:  a.Source.Name,
			SourceURL:   a.Source.URL,
			Query:       query,
			Page:        page,
		})
	}
	return articles, nil
}

func (c *Client) doRequest(ctx context.Context, query string, day time.Time, page int) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("lang", c.cfg.Lang)
	params.Set("max", strconv.Itoa(c.cfg.MaxPerRequest))
	params.Set("from", day.Format("2006-01-02")+"T00:00:00Z")
	params.Set("to", day.Format("2006-01-02")+"T23:59:59Z")
	params.Set("sortby", c.cfg.SortBy)
	params.Set("in", c.cfg.InFields)
	params.Set("apikey", c.cfg.APIKey)
	params.Set("page", strconv.Itoa(page))
	if c.cfg.Country != "" {
		params.Set("country", c.cfg.Country)
	}
	if c.cfg.ExpandContent {
		params.Set("expand", "content")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build news request: %w", err)
	}
	return c.httpClient.Do(req)
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyLog))
	resp.Body.Close()
}

// FetchRange walks the inclusive day range, allocating the per-day page
// budget round-robin across the sub-queries. An error on any request
// abandons the rest of that day's work and moves to the next day; there is
// no resume and no partial-day retry.
func (c *Client) FetchRange(ctx context.Context, from, to time.Time, queries []string) ([]Article, error) {
	pagesPerDay := (c.cfg.TargetPerDay + c.cfg.MaxPerRequest - 1) / c.cfg.MaxPerRequest

	var all []Article
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		pageCounters := make(map[string]int, len(queries))
		pulls := 0
	dayLoop:
		for pulls < pagesPerDay {
			for _, q := range queries {
				if pulls >= pagesPerDay {
					break
				}
				pageCounters[q]++
				articles, err := c.FetchPage(ctx, q, day, pageCounters[q])
				if err != nil {
					if ctx.Err() != nil {
						return all, ctx.Err()
					}
					c.logger.ErrorContext(ctx, "fetch failed, abandoning day",
						slog.String("day", day.Format("2006-01-02")),
						slog.String("query", q),
						slog.Int("page", pageCounters[q]),
						slog.String("error", err.Error()))
					break dayLoop
				}
				c.logger.InfoContext(ctx, "fetched page",
					slog.String("day", day.Format("2006-01-02")),
					slog.Int("page", pageCounters[q]),
					slog.Int("articles", len(articles)))
				all = append(all, articles...)
				pulls++
			}
		}
	}
	return all, nil
}

// Deduplicate removes duplicate articles. Rows are keyed by id; a row
// without an id falls back to its URL.
func Deduplicate(articles []Article) []Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		key := "id:" + a.ID
		if a.ID == "" {
			key = "url:" + a.URL
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

// SortArticles orders articles by day ascending, then publish time
// descending within the day.
func SortArticles(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].Day != articles[j].Day {
			return articles[i].Day < articles[j].Day
		}
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}

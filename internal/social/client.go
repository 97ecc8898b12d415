// Package social pulls recent social posts from a bearer-token search API
// with cursor pagination.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"finsent/internal/config"
)

// recencyGuard is how close to now a window may end; the upstream recent
// search index rejects end times nearer than this.
const recencyGuard = 10 * time.Minute

// previewRunes caps the stored post text.
const previewRunes = 100

// Post is one flattened social post.
type Post struct {
	Date     string
	ID       string
	AuthorID string
	Text     string
	Likes    int
	Retweets int
	Replies  int
	Quotes   int
}

// Client fetches day-windowed recent-search results.
type Client struct {
	cfg        config.SocialConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient builds a client from the social configuration.
func NewClient(cfg config.SocialConfig, logger *slog.Logger) *Client {
	interval := cfg.RequestInterval
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		logger:     logger,
		now:        time.Now,
	}
}

type apiResponse struct {
	Data []struct {
		ID            string `json:"id"`
		AuthorID      string `json:"author_id"`
		Text          string `json:"text"`
		CreatedAt     string `json:"created_at"`
		PublicMetrics struct {
			LikeCount    int `json:"like_count"`
			RetweetCount int `json:"retweet_count"`
			ReplyCount   int `json:"reply_count"`
			QuoteCount   int `json:"quote_count"`
		} `json:"public_metrics"`
	} `json:"data"`
	Meta struct {
		NextToken string `json:"next_token"`
	} `json:"meta"`
}

// FetchWindow pages through one time window, following next_token until the
// page budget runs out or the API stops returning a token. Posts below the
// minimum like count are filtered out; text is truncated for preview.
func (c *Client) FetchWindow(ctx context.Context, start, end time.Time) ([]Post, error) {
	var posts []Post
	nextToken := ""
	totalRaw := 0

	for page := 0; page < c.cfg.MaxPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return posts, err
		}

		params := url.Values{}
		params.Set("query", c.cfg.Query)
		params.Set("max_results", strconv.Itoa(c.cfg.MaxResults))
		params.Set("start_time", start.UTC().Format("2006-01-02T15:04:05Z"))
		params.Set("end_time", end.UTC().Format("2006-01-02T15:04:05Z"))
		params.Set("tweet.fields", "created_at,public_metrics,lang,author_id")
		if nextToken != "" {
			params.Set("next_token", nextToken)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
		if err != nil {
			return posts, fmt.Errorf("build social request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
		req.Header.Set("User-Agent", "finsent-socialfetch")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return posts, fmt.Errorf("fetch social posts: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
			resp.Body.Close()
			c.logger.ErrorContext(ctx, "social API error, abandoning window",
				slog.Int("status", resp.StatusCode),
				slog.String("body", string(body)))
			return posts, nil
		}

		var decoded apiResponse
		err = json.NewDecoder(resp.Body).Decode(&decoded)
		resp.Body.Close()
		if err != nil {
			return posts, fmt.Errorf("decode social response: %w", err)
		}

		totalRaw += len(decoded.Data)
		for _, tw := range decoded.Data {
			if tw.PublicMetrics.LikeCount < c.cfg.MinLikes {
				continue
			}
			date := tw.CreatedAt
			if len(date) >= 10 {
				date = date[:10]
			}
			posts = append(posts, Post{
				Date:     date,
				ID:       tw.ID,
				AuthorID: tw.AuthorID,
				Text:     truncate(tw.Text, previewRunes),
				Likes:    tw.PublicMetrics.LikeCount,
				Retweets: tw.PublicMetrics.RetweetCount,
				Replies:  tw.PublicMetrics.ReplyCount,
				Quotes:   tw.PublicMetrics.QuoteCount,
			})
		}

		c.logger.InfoContext(ctx, "fetched social page",
			slog.Int("page", page+1),
			slog.Int("raw", len(decoded.Data)),
			slog.Int("kept", len(posts)))

		nextToken = decoded.Meta.NextToken
		if nextToken == "" {
			break
		}
	}

	c.logger.InfoContext(ctx, "window complete",
		slog.String("start", start.Format(time.RFC3339)),
		slog.Int("total_raw", totalRaw),
		slog.Int("kept", len(posts)))
	return posts, nil
}

// CollectDays walks day-long windows backward from now, skipping any window
// that ends too close to the present for the upstream index.
func (c *Client) CollectDays(ctx context.Context, days int) ([]Post, error) {
	var all []Post
	for i := 0; i < days; i++ {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		end := c.now().UTC().Add(-time.Duration(i) * 24 * time.Hour)
		start := end.Add(-24 * time.Hour)

		if c.now().UTC().Sub(end) < recencyGuard {
			c.logger.InfoContext(ctx, "skipping window too close to now",
				slog.String("end", end.Format(time.RFC3339)))
			continue
		}

		posts, err := c.FetchWindow(ctx, start, end)
		if err != nil {
			return all, err
		}
		all = append(all, posts...)
	}
	return all, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

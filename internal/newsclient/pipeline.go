package newsclient

import (
	"context"
	"fmt"
	"log/slog"

	"finsent/internal/config"
	"finsent/internal/exporter"
	"finsent/internal/infrastructure"
)

// csvHeaders are the output columns, one row per deduplicated article.
var csvHeaders = []string{
	"day", "id", "title", "description", "content", "url", "image",
	"published_at", "source_name", "source_url", "query", "page",
}

// Run executes the news-ingestion pipeline: build sub-queries, page through
// the configured day range, deduplicate, sort and write the article CSV.
func Run(ctx context.Context, cfg config.NewsConfig) error {
	logger := infrastructure.LoggerWithContext(ctx)

	from, to, err := cfg.Window()
	if err != nil {
		return err
	}

	queries := BuildQueries(cfg.BaseTerms, cfg.BaseLeft, cfg.TermGroups, cfg.MaxQueryChars)
	for i, q := range queries {
		logger.InfoContext(ctx, "sub-query",
			slog.Int("index", i+1),
			slog.Int("length", len(q)),
			slog.String("q", q))
	}

	totalDays := int(to.Sub(from).Hours()/24) + 1
	pagesPerDay := (cfg.TargetPerDay + cfg.MaxPerRequest - 1) / cfg.MaxPerRequest
	logger.InfoContext(ctx, "fetch plan",
		slog.Int("days", totalDays),
		slog.Int("target_per_day", cfg.TargetPerDay),
		slog.Int("max_per_request", cfg.MaxPerRequest),
		slog.Int("estimated_requests", totalDays*pagesPerDay))

	client := NewClient(cfg, logger)
	articles, err := client.FetchRange(ctx, from, to, queries)
	if err != nil && len(articles) == 0 {
		return fmt.Errorf("fetch articles: %w", err)
	}

	articles = Deduplicate(articles)
	SortArticles(articles)

	records := make([][]string, len(articles))
	for i, a := range articles {
		publishedAt := ""
		if !a.PublishedAt.IsZero() {
			publishedAt = a.PublishedAt.Format("2006-01-02T15:04:05Z")
		}
		records[i] = []string{
			a.Day, a.ID, a.Title, a.Description, a.Content, a.URL, a.Image,
			publishedAt, a.SourceName, a.SourceURL, a.Query, exporter.FormatInt(int64(a.Page)),
		}
	}

	// article text is full of non-ASCII; the BOM keeps Excel from mangling it
	writer := exporter.NewCSVWriter()
	if err := writer.WriteSimpleCSV(cfg.OutputCSV, csvHeaders, records); err != nil {
		return fmt.Errorf("write articles: %w", err)
	}

	logger.InfoContext(ctx, "wrote articles",
		slog.String("file", cfg.OutputCSV),
		slog.Int("rows", len(records)))
	return nil
}

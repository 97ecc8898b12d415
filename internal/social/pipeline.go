package social

import (
	"context"
	"fmt"
	"log/slog"

	"finsent/internal/config"
	"finsent/internal/exporter"
	"finsent/internal/infrastructure"
)

// Run executes the social-post pipeline: walk the configured number of day
// windows backward from now and write the posts to a one-sheet workbook.
func Run(ctx context.Context, cfg config.SocialConfig) error {
	logger := infrastructure.LoggerWithContext(ctx)

	client := NewClient(cfg, logger)
	posts, err := client.CollectDays(ctx, cfg.Days)
	if err != nil && len(posts) == 0 {
		return fmt.Errorf("collect posts: %w", err)
	}

	rows := make([][]any, len(posts))
	for i, p := range posts {
		rows[i] = []any{
			p.Date, p.ID, p.AuthorID, p.Text,
			int64(p.Likes), int64(p.Retweets), int64(p.Replies), int64(p.Quotes),
		}
	}

	w := exporter.NewWorkbookWriter()
	if err := w.AddSheet("posts",
		[]string{"date", "tweet_id", "author_id", "text", "likes", "retweets", "replies", "quotes"},
		rows); err != nil {
		return fmt.Errorf("build posts sheet: %w", err)
	}
	if err := w.Save(cfg.OutputXLSX); err != nil {
		return fmt.Errorf("write posts workbook: %w", err)
	}

	logger.InfoContext(ctx, "wrote social posts",
		slog.String("file", cfg.OutputXLSX),
		slog.Int("rows", len(posts)))
	return nil
}

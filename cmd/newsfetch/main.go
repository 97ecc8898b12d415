package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"finsent/internal/config"
	"finsent/internal/infrastructure"
	"finsent/internal/newsclient"
)

func main() {
	from := flag.String("from", "", "first day to fetch, YYYY-MM-DD (overrides config)")
	to := flag.String("to", "", "last day to fetch, YYYY-MM-DD (overrides config)")
	output := flag.String("output", "", "article CSV to write (overrides config)")
	flag.Parse()

	// credentials come from the environment; a .env file is a convenience,
	// not a requirement
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *from != "" {
		cfg.News.From = *from
	}
	if *to != "" {
		cfg.News.To = *to
	}
	if *output != "" {
		cfg.News.OutputCSV = *output
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.News.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println("Set FINSENT_NEWS_API_KEY to your news API key.")
		os.Exit(1)
	}

	ctx := infrastructure.ContextWithRunID(context.Background())
	logger.InfoContext(ctx, "starting news ingestion",
		slog.String("from", cfg.News.From),
		slog.String("to", cfg.News.To),
		slog.String("output", cfg.News.OutputCSV))

	if err := newsclient.Run(ctx, cfg.News); err != nil {
		logger.ErrorContext(ctx, "news ingestion failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.InfoContext(ctx, "news ingestion complete")
}

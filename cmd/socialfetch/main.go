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
	"finsent/internal/social"
)

func main() {
	query := flag.String("query", "", "search query (overrides config)")
	days := flag.Int("days", 0, "number of past days to collect (overrides config)")
	output := flag.String("output", "", "workbook to write (overrides config)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *query != "" {
		cfg.Social.Query = *query
	}
	if *days > 0 {
		cfg.Social.Days = *days
	}
	if *output != "" {
		cfg.Social.OutputXLSX = *output
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Social.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println("Set FINSENT_SOCIAL_BEARER_TOKEN to your API bearer token.")
		os.Exit(1)
	}

	ctx := infrastructure.ContextWithRunID(context.Background())
	logger.InfoContext(ctx, "starting social post collection",
		slog.String("query", cfg.Social.Query),
		slog.Int("days", cfg.Social.Days),
		slog.String("output", cfg.Social.OutputXLSX))

	if err := social.Run(ctx, cfg.Social); err != nil {
		logger.ErrorContext(ctx, "social post collection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.InfoContext(ctx, "social post collection complete")
}

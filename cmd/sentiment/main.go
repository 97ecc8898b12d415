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
	"finsent/internal/sentiment"
)

func main() {
	input := flag.String("input", "", "scored message CSV to read (overrides config)")
	output := flag.String("output", "", "daily sentiment CSV to write (overrides config)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.Sentiment.InputCSV = *input
	}
	if *output != "" {
		cfg.Sentiment.OutputCSV = *output
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := infrastructure.ContextWithRunID(context.Background())
	logger.InfoContext(ctx, "starting sentiment aggregation",
		slog.String("input", cfg.Sentiment.InputCSV),
		slog.String("output", cfg.Sentiment.OutputCSV))

	if err := sentiment.Run(ctx, cfg.Sentiment); err != nil {
		logger.ErrorContext(ctx, "sentiment aggregation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.InfoContext(ctx, "sentiment aggregation complete")
}

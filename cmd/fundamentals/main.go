package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/joho/godotenv"

	"finsent/internal/config"
	"finsent/internal/fundamentals"
	"finsent/internal/infrastructure"
)

func main() {
	var logger *slog.Logger
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("PANIC RECOVERED: %v\n%s\n", r, debug.Stack())
			if logger != nil {
				logger.Error("fundamentals pipeline panicked",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())))
			}
			os.Exit(1)
		}
	}()

	ticker := flag.String("ticker", "", "ticker symbol (overrides config)")
	start := flag.String("start", "", "history start date, YYYY-MM-DD (overrides config)")
	end := flag.String("end", "", "history end date, YYYY-MM-DD (overrides config; defaults to today)")
	output := flag.String("output", "", "workbook to write (overrides config)")
	sentimentCSV := flag.String("sentiment", "", "daily sentiment CSV to merge into the modeling table (overrides config)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *ticker != "" {
		cfg.Fundamentals.Ticker = *ticker
	}
	if *start != "" {
		cfg.Fundamentals.Start = *start
	}
	if *end != "" {
		cfg.Fundamentals.End = *end
	}
	if *output != "" {
		cfg.Fundamentals.OutputXLSX = *output
	}
	if *sentimentCSV != "" {
		cfg.Fundamentals.SentimentCSV = *sentimentCSV
	}

	logger, err = infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Fundamentals.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	ctx := infrastructure.ContextWithRunID(context.Background())
	logger.InfoContext(ctx, "starting fundamentals pipeline",
		slog.String("ticker", cfg.Fundamentals.Ticker),
		slog.String("start", cfg.Fundamentals.Start),
		slog.String("output", cfg.Fundamentals.OutputXLSX))

	if err := fundamentals.Run(ctx, cfg.Fundamentals); err != nil {
		logger.ErrorContext(ctx, "fundamentals pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.InfoContext(ctx, "fundamentals pipeline complete")
}

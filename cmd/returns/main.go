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
	"finsent/internal/returns"
)

func main() {
	input := flag.String("input", "", "price CSV to read (overrides config)")
	output := flag.String("output", "", "return CSV to write (overrides config)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.Returns.InputCSV = *input
	}
	if *output != "" {
		cfg.Returns.OutputCSV = *output
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := infrastructure.ContextWithRunID(context.Background())
	logger.InfoContext(ctx, "starting daily-return pipeline",
		slog.String("input", cfg.Returns.InputCSV),
		slog.String("output", cfg.Returns.OutputCSV))

	if err := returns.Run(ctx, cfg.Returns); err != nil {
		logger.ErrorContext(ctx, "daily-return pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.InfoContext(ctx, "daily-return pipeline complete")
}

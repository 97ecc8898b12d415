package fundamentals

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"finsent/internal/timeseries"
	"finsent/internal/yahoo"
)

// SharesStrategy is one way of obtaining a shares-outstanding series. The
// resolver tries strategies in order and takes the first that yields a
// non-empty series.
type SharesStrategy struct {
	Name  string
	Fetch func(ctx context.Context) (*timeseries.Series, error)
}

// SharesStrategies builds the default resolution order:
//
//  1. the reported share-count time series endpoint,
//  2. the share line of the quarterly balance sheet,
//  3. the single share count from key statistics, held constant over the
//     price index.
func SharesStrategies(client *yahoo.Client, symbol string, start time.Time, summary *yahoo.Summary, balanceQ *timeseries.Frame, priceIndex []time.Time) []SharesStrategy {
	return []SharesStrategy{
		{
			Name: "share-count history",
			Fetch: func(ctx context.Context) (*timeseries.Series, error) {
				return client.ShareCountHistory(ctx, symbol, start)
			},
		},
		{
			Name: "quarterly balance sheet",
			Fetch: func(ctx context.Context) (*timeseries.Series, error) {
				s := balanceQ.FirstPresent(shareCandidates...)
				if s == nil {
					return nil, nil
				}
				return s.DropNaN(), nil
			},
		},
		{
			Name: "key statistics",
			Fetch: func(ctx context.Context) (*timeseries.Series, error) {
				if math.IsNaN(summary.SharesOutstanding) {
					return nil, nil
				}
				return timeseries.Constant("Shares Outstanding", priceIndex, summary.SharesOutstanding), nil
			},
		},
	}
}

// ResolveShares walks the strategies in order and returns the first
// non-empty series together with the name of the strategy that produced it.
// A strategy error is logged and the next strategy tried; only full
// exhaustion is an error.
func ResolveShares(ctx context.Context, strategies []SharesStrategy, logger *slog.Logger) (*timeseries.Series, string, error) {
	for _, strategy := range strategies {
		series, err := strategy.Fetch(ctx)
		if err != nil {
			logger.Warn("shares strategy failed, trying next",
				slog.String("strategy", strategy.Name),
				slog.String("error", err.Error()))
			continue
		}
		if series.Empty() {
			logger.Debug("shares strategy yielded nothing",
				slog.String("strategy", strategy.Name))
			continue
		}
		logger.Info("resolved shares outstanding",
			slog.String("strategy", strategy.Name),
			slog.Int("observations", series.Len()))
		return series.WithName("Shares Outstanding"), strategy.Name, nil
	}
	return nil, "", fmt.Errorf("no shares-outstanding source available")
}

// Package returns computes daily fractional returns from a close-price CSV.
package returns

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"finsent/internal/config"
	"finsent/internal/exporter"
	"finsent/internal/infrastructure"
	"finsent/internal/timeseries"
)

// PriceRow is one dated closing price.
type PriceRow struct {
	Date  time.Time
	Close float64
}

// ReturnRow is a closing price with its fractional change from the prior
// close.
type ReturnRow struct {
	Date   time.Time
	Close  float64
	Return float64
}

// LoadPrices reads a price CSV with `date` and `close_price` columns.
// A date that fails to parse is an error, not a skipped row: a broken price
// history should not silently produce a shorter return series.
func LoadPrices(path, dateLayout string) ([]PriceRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read price file: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("price file %s has no data rows", path)
	}

	dateCol, closeCol := -1, -1
	for i, h := range records[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "date":
			dateCol = i
		case "close_price":
			closeCol = i
		}
	}
	if dateCol < 0 || closeCol < 0 {
		return nil, fmt.Errorf("price file %s missing date/close_price columns", path)
	}

	rows := make([]PriceRow, 0, len(records)-1)
	for i, record := range records[1:] {
		date, err := time.Parse(dateLayout, strings.TrimSpace(record[dateCol]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parse date %q: %w", i+2, record[dateCol], err)
		}
		closePrice, err := strconv.ParseFloat(strings.TrimSpace(record[closeCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse close price %q: %w", i+2, record[closeCol], err)
		}
		rows = append(rows, PriceRow{Date: date.UTC(), Close: closePrice})
	}
	return rows, nil
}

// Compute sorts the prices ascending by date, computes the percent change
// against the prior close, and drops the first observation (its return is
// undefined). The result always has len(input)-1 rows.
func Compute(prices []PriceRow) []ReturnRow {
	if len(prices) < 2 {
		return nil
	}

	sorted := append([]PriceRow(nil), prices...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	pts := make([]timeseries.Point, len(sorted))
	for i, p := range sorted {
		pts[i] = timeseries.Point{Date: p.Date, Value: p.Close}
	}
	change := timeseries.New("return", pts).PctChange()

	out := make([]ReturnRow, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		out = append(out, ReturnRow{
			Date:   sorted[i].Date,
			Close:  sorted[i].Close,
			Return: change.Value(i),
		})
	}
	return out
}

// Run executes the full pipeline: load, compute, write.
func Run(ctx context.Context, cfg config.ReturnsConfig) error {
	logger := infrastructure.LoggerWithContext(ctx)

	prices, err := LoadPrices(cfg.InputCSV, cfg.DateLayout)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "loaded price history",
		slog.String("file", cfg.InputCSV),
		slog.Int("rows", len(prices)))

	rows := Compute(prices)
	if len(rows) == 0 {
		return fmt.Errorf("not enough price rows to compute returns (got %d)", len(prices))
	}

	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{
			r.Date.Format(cfg.DateLayout),
			exporter.FormatFloat(r.Close),
			exporter.FormatFloat(r.Return),
		}
	}

	writer := exporter.NewCSVWriter()
	if err := writer.WriteCSV(cfg.OutputCSV, exporter.WriteOptions{
		Headers: []string{"date", "close_price", "return"},
		Records: records,
	}); err != nil {
		return fmt.Errorf("write returns: %w", err)
	}

	logger.InfoContext(ctx, "wrote daily returns",
		slog.String("file", cfg.OutputCSV),
		slog.Int("rows", len(rows)))
	return nil
}

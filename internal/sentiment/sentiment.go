// Package sentiment aggregates per-message emotion scores into one row per
// calendar day.
package sentiment

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
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

// EmotionColumns are the score columns expected in the input, in output
// order.
var EmotionColumns = []string{
	"anger", "anticipation", "disgust", "fear",
	"joy", "sadness", "surprise", "trust",
	"positive", "negative",
}

// dateLayouts are tried in order when parsing message dates. Rows that match
// none of them are dropped, not fatal.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
	"1/2/2006 15:04",
}

// Message is one scored input row.
type Message struct {
	Date   time.Time
	Scores []float64 // aligned with EmotionColumns; NaN when the cell is blank
}

// DailyScore is the aggregated output row for one calendar day.
type DailyScore struct {
	Date   time.Time
	Scores []float64 // aligned with EmotionColumns
}

// ParseDate parses a message date, trying each known layout.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

// LoadMessages reads the scored-message CSV. It returns the parsed rows and
// the number of rows discarded for an unparseable date.
func LoadMessages(path string) ([]Message, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open sentiment file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("read sentiment file: %w", err)
	}
	if len(records) < 2 {
		return nil, 0, fmt.Errorf("sentiment file %s has no data rows", path)
	}

	columns := make(map[string]int)
	for i, h := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	dateCol, ok := columns["date"]
	if !ok {
		return nil, 0, fmt.Errorf("sentiment file %s missing date column", path)
	}

	scoreCols := make([]int, len(EmotionColumns))
	for i, name := range EmotionColumns {
		idx, ok := columns[name]
		if !ok {
			return nil, 0, fmt.Errorf("sentiment file %s missing %s column", path, name)
		}
		scoreCols[i] = idx
	}

	var messages []Message
	dropped := 0
	for _, record := range records[1:] {
		if dateCol >= len(record) {
			dropped++
			continue
		}
		date, err := ParseDate(record[dateCol])
		if err != nil {
			dropped++
			continue
		}

		scores := make([]float64, len(EmotionColumns))
		for i, col := range scoreCols {
			scores[i] = math.NaN()
			if col < len(record) {
				if v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64); err == nil {
					scores[i] = v
				}
			}
		}
		messages = append(messages, Message{Date: timeseries.Day(date), Scores: scores})
	}

	return messages, dropped, nil
}

// AggregateDaily groups messages by calendar day and averages each emotion
// category, producing exactly one row per distinct day, sorted ascending.
// NaN scores are excluded from the mean; a category with no scores on a day
// stays NaN.
func AggregateDaily(messages []Message) []DailyScore {
	type acc struct {
		sum   []float64
		count []int
	}

	byDay := make(map[time.Time]*acc)
	for _, msg := range messages {
		a, ok := byDay[msg.Date]
		if !ok {
			a = &acc{
				sum:   make([]float64, len(EmotionColumns)),
				count: make([]int, len(EmotionColumns)),
			}
			byDay[msg.Date] = a
		}
		for i, v := range msg.Scores {
			if !math.IsNaN(v) {
				a.sum[i] += v
				a.count[i]++
			}
		}
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]DailyScore, 0, len(days))
	for _, d := range days {
		a := byDay[d]
		scores := make([]float64, len(EmotionColumns))
		for i := range scores {
			if a.count[i] == 0 {
				scores[i] = math.NaN()
				continue
			}
			scores[i] = a.sum[i] / float64(a.count[i])
		}
		out = append(out, DailyScore{Date: d, Scores: scores})
	}
	return out
}

// LoadDailySeries reads a generic (date, value) CSV into a Series under the
// given column names. Used for merging an external sentiment series into the
// fundamentals workbook; a missing column is an error the caller degrades on.
func LoadDailySeries(path, dateColumn, valueColumn string) (*timeseries.Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open series file: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read series file: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("series file %s has no data rows", path)
	}

	dateCol, valueCol := -1, -1
	for i, h := range records[0] {
		switch strings.TrimSpace(h) {
		case dateColumn:
			dateCol = i
		case valueColumn:
			valueCol = i
		}
	}
	if dateCol < 0 || valueCol < 0 {
		return nil, fmt.Errorf("series file %s missing %s/%s columns", path, dateColumn, valueColumn)
	}

	var pts []timeseries.Point
	for _, record := range records[1:] {
		date, err := ParseDate(record[dateCol])
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[valueCol]), 64)
		if err != nil {
			continue
		}
		pts = append(pts, timeseries.Point{Date: timeseries.Day(date), Value: v})
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("series file %s has no parseable rows", path)
	}
	return timeseries.New("Sentiment", pts), nil
}

// Run executes the full pipeline: load, aggregate, write.
func Run(ctx context.Context, cfg config.SentimentConfig) error {
	logger := infrastructure.LoggerWithContext(ctx)

	messages, dropped, err := LoadMessages(cfg.InputCSV)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "loaded scored messages",
		slog.String("file", cfg.InputCSV),
		slog.Int("rows", len(messages)),
		slog.Int("dropped_unparseable", dropped))

	daily := AggregateDaily(messages)
	if len(daily) == 0 {
		return fmt.Errorf("no messages with valid dates in %s", cfg.InputCSV)
	}

	records := make([][]string, len(daily))
	for i, row := range daily {
		record := make([]string, 0, len(EmotionColumns)+1)
		record = append(record, exporter.FormatDate(row.Date))
		for _, v := range row.Scores {
			record = append(record, exporter.FormatFloat(v))
		}
		records[i] = record
	}

	writer := exporter.NewCSVWriter()
	headers := append([]string{"date"}, EmotionColumns...)
	if err := writer.WriteCSV(cfg.OutputCSV, exporter.WriteOptions{
		Headers: headers,
		Records: records,
	}); err != nil {
		return fmt.Errorf("write daily sentiment: %w", err)
	}

	logger.InfoContext(ctx, "wrote daily sentiment",
		slog.String("file", cfg.OutputCSV),
		slog.Int("days", len(daily)))
	return nil
}

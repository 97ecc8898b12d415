// Package fundamentals builds the financial-statement tables, trailing
// twelve month aggregates, valuation ratios and the daily modeling table
// for a single ticker.
package fundamentals

import (
	"sort"
	"time"

	"finsent/internal/timeseries"
	"finsent/internal/yahoo"
)

// TTMSuffix marks columns holding trailing-twelve-month rolling sums.
const TTMSuffix = "_TTM"

// ttmWindow and ttmMinPeriods control the rolling sum over quarterly
// statements: four quarters, with a partial sum allowed from two.
const (
	ttmWindow     = 4
	ttmMinPeriods = 2
)

// ttmIncomeColumns are the income-statement lines that get a TTM aggregate
// when present.
var ttmIncomeColumns = []string{
	"Total Revenue",
	"Gross Profit",
	"Operating Income",
	"Net Income",
	"EBITDA",
}

// ttmCashflowColumns are the cash-flow lines that get a TTM aggregate when
// present.
var ttmCashflowColumns = []string{
	"Free Cash Flow",
	"Operating Cash Flow",
	"Total Cash From Operating Activities",
}

// Line-item candidates, in preference order. Statement vintages name the
// same concept differently, so lookups walk these lists and take the first
// column the table actually has.
var (
	debtCandidates = []string{
		"Total Debt",
		"Total Debt Net",
		"Short Long Term Debt Total",
		"Short Long Term Debt",
	}
	cashCandidates = []string{
		"Cash And Cash Equivalents",
		"Cash",
		"Cash Cash Equivalents And Short Term Investments",
	}
	equityCandidates = []string{
		"Total Stockholder Equity",
		"Total Equity Gross Minority Interest",
		"Stockholders Equity",
	}
	shareCandidates = []string{
		"Ordinary Shares Number",
		"Share Issued",
	}
)

// Normalize turns statement periods into a date-indexed frame. The index is
// the period end dates (deduplicated, last report wins); the columns are the
// union of all line items, in first-seen order, with NaN where a period
// lacks an item.
func Normalize(periods []yahoo.StatementPeriod) *timeseries.Frame {
	if len(periods) == 0 {
		return timeseries.NewFrame(nil)
	}

	byDate := make(map[time.Time]yahoo.StatementPeriod, len(periods))
	index := make([]time.Time, 0, len(periods))
	for _, p := range periods {
		d := timeseries.Day(p.EndDate)
		if _, seen := byDate[d]; !seen {
			index = append(index, d)
		}
		byDate[d] = p
	}
	sort.Slice(index, func(i, j int) bool { return index[i].Before(index[j]) })

	var columns []string
	seen := make(map[string]bool)
	for _, d := range index {
		names := make([]string, 0, len(byDate[d].Items))
		for name := range byDate[d].Items {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				columns = append(columns, name)
			}
		}
	}

	frame := timeseries.NewFrame(index)
	for _, name := range columns {
		points := make([]timeseries.Point, 0, len(index))
		for _, d := range index {
			if v, ok := byDate[d].Items[name]; ok {
				points = append(points, timeseries.Point{Date: d, Value: v})
			}
		}
		frame.Set(name, timeseries.New(name, points))
	}
	// a period that reported no usable line items contributes nothing
	return frame.DropAllNaNRows()
}

// AddTTM appends a "<col>_TTM" rolling four-period sum for every candidate
// column the frame has. At least two observed periods are required before a
// TTM value appears; earlier rows stay NaN.
func AddTTM(frame *timeseries.Frame, candidates []string) {
	for _, name := range candidates {
		if !frame.Has(name) {
			continue
		}
		ttm := frame.Col(name).RollingSum(ttmWindow, ttmMinPeriods)
		frame.Set(name+TTMSuffix, ttm.WithName(name+TTMSuffix))
	}
}

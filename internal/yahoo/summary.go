package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// StatementPeriod is one reporting period of a financial statement: the
// period end date and the numeric line items, keyed by human-readable name
// ("totalRevenue" becomes "Total Revenue").
type StatementPeriod struct {
	EndDate time.Time
	Items   map[string]float64
}

// EarningsDate is one row of the earnings history.
type EarningsDate struct {
	Date        time.Time
	EPSEstimate float64
	EPSActual   float64
	SurprisePct float64
}

// Summary bundles everything the quoteSummary endpoint returns in one call.
type Summary struct {
	IncomeAnnual      []StatementPeriod
	IncomeQuarterly   []StatementPeriod
	BalanceAnnual     []StatementPeriod
	BalanceQuarterly  []StatementPeriod
	CashflowAnnual    []StatementPeriod
	CashflowQuarterly []StatementPeriod
	SharesOutstanding float64 // NaN when key statistics carry no share count
	Earnings          []EarningsDate
}

// rawValue decodes Yahoo's {"raw": n, "fmt": "..."} wrapper. Scalar or
// otherwise-shaped fields (maxAge and friends) decode to a missing value.
type rawValue struct {
	Raw float64
	OK  bool
}

func (v *rawValue) UnmarshalJSON(b []byte) error {
	var obj struct {
		Raw *float64 `json:"raw"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil
	}
	if obj.Raw != nil {
		v.Raw = *obj.Raw
		v.OK = true
	}
	return nil
}

type rawStatement map[string]rawValue

type statementList struct {
	IncomeStatementHistory []rawStatement `json:"incomeStatementHistory"`
	BalanceSheetStatements []rawStatement `json:"balanceSheetStatements"`
	CashflowStatements     []rawStatement `json:"cashflowStatements"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			IncomeStatementHistory            statementList `json:"incomeStatementHistory"`
			IncomeStatementHistoryQuarterly   statementList `json:"incomeStatementHistoryQuarterly"`
			BalanceSheetHistory               statementList `json:"balanceSheetHistory"`
			BalanceSheetHistoryQuarterly      statementList `json:"balanceSheetHistoryQuarterly"`
			CashflowStatementHistory          statementList `json:"cashflowStatementHistory"`
			CashflowStatementHistoryQuarterly statementList `json:"cashflowStatementHistoryQuarterly"`
			DefaultKeyStatistics              rawStatement  `json:"defaultKeyStatistics"`
			EarningsHistory                   struct {
				History []rawStatement `json:"history"`
			} `json:"earningsHistory"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteSummary"`
}

// summaryModules is the module list requested from quoteSummary.
const summaryModules = "incomeStatementHistory,incomeStatementHistoryQuarterly," +
	"balanceSheetHistory,balanceSheetHistoryQuarterly," +
	"cashflowStatementHistory,cashflowStatementHistoryQuarterly," +
	"defaultKeyStatistics,earningsHistory"

// QuoteSummary fetches all statement history, key statistics and earnings
// history for a symbol in a single request.
func (c *Client) QuoteSummary(ctx context.Context, symbol string) (*Summary, error) {
	url := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s", c.baseURL, symbol, summaryModules)

	var decoded quoteSummaryResponse
	if err := c.get(ctx, url, &decoded); err != nil {
		return nil, err
	}
	if decoded.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("quoteSummary error for %s: %s", symbol, decoded.QuoteSummary.Error.Description)
	}
	if len(decoded.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no quoteSummary data for %s", symbol)
	}
	result := decoded.QuoteSummary.Result[0]

	summary := &Summary{
		IncomeAnnual:      toPeriods(result.IncomeStatementHistory.IncomeStatementHistory),
		IncomeQuarterly:   toPeriods(result.IncomeStatementHistoryQuarterly.IncomeStatementHistory),
		BalanceAnnual:     toPeriods(result.BalanceSheetHistory.BalanceSheetStatements),
		BalanceQuarterly:  toPeriods(result.BalanceSheetHistoryQuarterly.BalanceSheetStatements),
		CashflowAnnual:    toPeriods(result.CashflowStatementHistory.CashflowStatements),
		CashflowQuarterly: toPeriods(result.CashflowStatementHistoryQuarterly.CashflowStatements),
		SharesOutstanding: math.NaN(),
	}

	if v, ok := result.DefaultKeyStatistics["sharesOutstanding"]; ok && v.OK {
		summary.SharesOutstanding = v.Raw
	}

	for _, row := range result.EarningsHistory.History {
		quarter, ok := row["quarter"]
		if !ok || !quarter.OK {
			continue
		}
		summary.Earnings = append(summary.Earnings, EarningsDate{
			Date:        time.Unix(int64(quarter.Raw), 0).UTC(),
			EPSEstimate: itemOrNaN(row, "epsEstimate"),
			EPSActual:   itemOrNaN(row, "epsActual"),
			SurprisePct: itemOrNaN(row, "surprisePercent"),
		})
	}
	sort.Slice(summary.Earnings, func(i, j int) bool {
		return summary.Earnings[i].Date.Before(summary.Earnings[j].Date)
	})

	return summary, nil
}

func itemOrNaN(row rawStatement, key string) float64 {
	if v, ok := row[key]; ok && v.OK {
		return v.Raw
	}
	return math.NaN()
}

// toPeriods converts raw statement rows into StatementPeriods with
// human-readable line-item names. Rows without an end date are dropped.
func toPeriods(rows []rawStatement) []StatementPeriod {
	periods := make([]StatementPeriod, 0, len(rows))
	for _, row := range rows {
		endDate, ok := row["endDate"]
		if !ok || !endDate.OK {
			continue
		}
		period := StatementPeriod{
			EndDate: time.Unix(int64(endDate.Raw), 0).UTC(),
			Items:   make(map[string]float64, len(row)),
		}
		for key, v := range row {
			if key == "endDate" || key == "maxAge" || !v.OK {
				continue
			}
			period.Items[HumanizeLineItem(key)] = v.Raw
		}
		periods = append(periods, period)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].EndDate.Before(periods[j].EndDate) })
	return periods
}

// lineItemOverrides maps keys whose camelCase split would mangle an acronym.
var lineItemOverrides = map[string]string{
	"ebitda": "EBITDA",
	"ebit":   "EBIT",
}

// HumanizeLineItem turns a camelCase field key into the spaced title-case
// name the statement tables are keyed by: "totalRevenue" -> "Total Revenue".
func HumanizeLineItem(key string) string {
	if name, ok := lineItemOverrides[key]; ok {
		return name
	}

	var words []string
	start := 0
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			words = append(words, key[start:i])
			start = i
		}
	}
	words = append(words, key[start:])

	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

package fundamentals

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"finsent/internal/config"
)

const pipelineChartBody = `{
  "chart": {
    "result": [{
      "timestamp": [1704153600, 1704240000, 1704326400],
      "indicators": {
        "quote": [{
          "open":   [10.0, 11.0, 12.0],
          "high":   [10.5, 11.5, 12.5],
          "low":    [9.5, 10.5, 11.5],
          "close":  [10.2, 11.2, 12.2],
          "volume": [1000, 2000, 3000]
        }],
        "adjclose": [{"adjclose": [10.0, 11.0, 12.0]}]
      }
    }],
    "error": null
  }
}`

const pipelineSummaryBody = `{
  "quoteSummary": {
    "result": [{
      "incomeStatementHistoryQuarterly": {
        "incomeStatementHistory": [
          {
            "endDate": {"raw": 1703980800},
            "totalRevenue": {"raw": 100},
            "netIncome": {"raw": 10},
            "operatingIncome": {"raw": 20},
            "researchDevelopment": {"raw": 5}
          },
          {
            "endDate": {"raw": 1711843200},
            "totalRevenue": {"raw": 120},
            "netIncome": {"raw": 12},
            "operatingIncome": {"raw": 24},
            "researchDevelopment": {"raw": 6}
          }
        ]
      },
      "balanceSheetHistoryQuarterly": {
        "balanceSheetStatements": [
          {
            "endDate": {"raw": 1703980800},
            "shortLongTermDebt": {"raw": 50},
            "cash": {"raw": 10},
            "totalStockholderEquity": {"raw": 100},
            "inventory": {"raw": 7}
          }
        ]
      },
      "cashflowStatementHistoryQuarterly": {
        "cashflowStatements": [
          {
            "endDate": {"raw": 1703980800},
            "totalCashFromOperatingActivities": {"raw": 30}
          },
          {
            "endDate": {"raw": 1711843200},
            "totalCashFromOperatingActivities": {"raw": 35}
          }
        ]
      },
      "defaultKeyStatistics": {
        "sharesOutstanding": {"raw": 4}
      },
      "earningsHistory": {
        "history": [
          {
            "quarter": {"raw": 1703980800},
            "epsActual": {"raw": 0.71},
            "epsEstimate": {"raw": 0.74},
            "surprisePercent": {"raw": -0.04}
          }
        ]
      }
    }],
    "error": null
  }
}`

const pipelineSharesBody = `{
  "timeseries": {
    "result": [{
      "timestamp": [1703980800],
      "shares_out": [4]
    }],
    "error": null
  }
}`

func pipelineServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/"):
			w.Write([]byte(pipelineChartBody))
		case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/"):
			w.Write([]byte(pipelineSummaryBody))
		case strings.HasPrefix(r.URL.Path, "/ws/fundamentals-timeseries/"):
			w.Write([]byte(pipelineSharesBody))
		default:
			t.Errorf("unexpected request path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
}

func TestRunWorkbookSchema(t *testing.T) {
	srv := pipelineServer(t)
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "fundamentals.xlsx")
	cfg := config.FundamentalsConfig{
		BaseURL:    srv.URL,
		Ticker:     "TSLA",
		Start:      "2024-01-01",
		End:        "2024-01-10",
		OutputXLSX: out,
	}

	require.NoError(t, Run(context.Background(), cfg))

	book, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer book.Close()

	sheets := book.GetSheetList()
	for _, want := range []string{
		"prices", "income_quarterly", "balance_quarterly", "cashflow_quarterly",
		"ratios_quarterly", "modeling_daily", "earnings_dates",
	} {
		assert.Contains(t, sheets, want)
	}
	// no annual statements in the payload, so no annual sheets
	assert.NotContains(t, sheets, "income_annual")

	priceRows, err := book.GetRows("prices")
	require.NoError(t, err)
	require.NotEmpty(t, priceRows)
	assert.Contains(t, priceRows[0], "Adj Return")

	earningsRows, err := book.GetRows("earnings_dates")
	require.NoError(t, err)
	require.NotEmpty(t, earningsRows)
	assert.Equal(t, []string{"earnings_date", "eps_estimate", "eps_actual", "surprise_pct"}, earningsRows[0])

	modelingRows, err := book.GetRows("modeling_daily")
	require.NoError(t, err)
	require.NotEmpty(t, modelingRows)
	header := modelingRows[0]
	for _, want := range []string{
		"Adj Close", "Adj Return", "Volume", "MarketCap", "EV",
		"P_S_TTM", "Total Revenue_TTM",
		"Short Long Term Debt", "Cash", "Total Stockholder Equity",
	} {
		assert.Contains(t, header, want)
	}
	// raw quarterly line items belong to the statement sheets only
	for _, reject := range []string{
		"Research Development", "Inventory", "Total Cash From Operating Activities",
	} {
		assert.NotContains(t, header, reject)
	}

	incomeRows, err := book.GetRows("income_quarterly")
	require.NoError(t, err)
	require.NotEmpty(t, incomeRows)
	assert.Contains(t, incomeRows[0], "Research Development")
	assert.Contains(t, incomeRows[0], "Total Revenue_TTM")
}

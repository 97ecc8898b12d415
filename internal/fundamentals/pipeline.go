package fundamentals

import (
	"context"
	"fmt"
	"log/slog"

	"finsent/internal/config"
	"finsent/internal/exporter"
	"finsent/internal/infrastructure"
	"finsent/internal/sentiment"
	"finsent/internal/timeseries"
	"finsent/internal/yahoo"
)

// Run executes the fundamentals pipeline: fetch prices and statements,
// derive TTM aggregates, market cap, enterprise value and quarterly ratios,
// assemble the daily modeling table and write everything to one workbook.
func Run(ctx context.Context, cfg config.FundamentalsConfig) error {
	logger := infrastructure.LoggerWithContext(ctx)

	start, end, err := cfg.Range()
	if err != nil {
		return err
	}

	client := yahoo.NewClient(cfg.BaseURL)

	prices, err := client.DailyPrices(ctx, cfg.Ticker, start, end)
	if err != nil {
		return fmt.Errorf("fetch prices: %w", err)
	}
	prices.Set("Adj Return", prices.Col("Adj Close").PctChange().WithName("Adj Return"))
	logger.InfoContext(ctx, "fetched prices",
		slog.String("ticker", cfg.Ticker),
		slog.Int("days", prices.Len()))

	summary, err := client.QuoteSummary(ctx, cfg.Ticker)
	if err != nil {
		return fmt.Errorf("fetch statements: %w", err)
	}

	incomeA := Normalize(summary.IncomeAnnual)
	incomeQ := Normalize(summary.IncomeQuarterly)
	balanceA := Normalize(summary.BalanceAnnual)
	balanceQ := Normalize(summary.BalanceQuarterly)
	cashflowA := Normalize(summary.CashflowAnnual)
	cashflowQ := Normalize(summary.CashflowQuarterly)

	AddTTM(incomeQ, ttmIncomeColumns)
	AddTTM(cashflowQ, ttmCashflowColumns)

	logger.InfoContext(ctx, "normalized statements",
		slog.Int("income_quarters", incomeQ.Len()),
		slog.Int("balance_quarters", balanceQ.Len()),
		slog.Int("cashflow_quarters", cashflowQ.Len()))

	strategies := SharesStrategies(client, cfg.Ticker, start, summary, balanceQ, prices.Index())
	shares, _, err := ResolveShares(ctx, strategies, logger)
	if err != nil {
		return fmt.Errorf("resolve shares outstanding: %w", err)
	}

	marketCap := MarketCapDaily(prices, shares)
	ev := EnterpriseValueDaily(marketCap, balanceQ, prices.Index())
	if ev == nil {
		logger.WarnContext(ctx, "balance sheet lacks debt or cash lines, skipping enterprise value")
	}

	ratios := QuarterlyRatios(incomeQ, balanceQ, prices, shares)

	modeling := buildModelingDaily(prices, marketCap, ev, ratios, incomeQ, balanceQ)

	var modelingMerged *timeseries.Frame
	if cfg.SentimentCSV != "" {
		score, err := sentiment.LoadDailySeries(cfg.SentimentCSV, cfg.SentimentDateColumn, cfg.SentimentValueColumn)
		if err != nil {
			logger.WarnContext(ctx, "sentiment merge skipped",
				slog.String("file", cfg.SentimentCSV),
				slog.String("error", err.Error()))
		} else {
			modelingMerged = mergeSentiment(modeling, score, cfg.SentimentValueColumn)
			logger.InfoContext(ctx, "merged sentiment scores",
				slog.Int("scored_days", score.Len()))
		}
	}

	workbook := exporter.NewWorkbookWriter()
	sheets := []struct {
		name  string
		frame *timeseries.Frame
	}{
		{"prices", prices},
		{"income_annual", incomeA},
		{"income_quarterly", incomeQ},
		{"balance_annual", balanceA},
		{"balance_quarterly", balanceQ},
		{"cashflow_annual", cashflowA},
		{"cashflow_quarterly", cashflowQ},
		{"ratios_quarterly", ratios},
		{"modeling_daily", modeling},
	}
	if modelingMerged != nil {
		sheets = append(sheets, struct {
			name  string
			frame *timeseries.Frame
		}{"modeling_daily_with_sentiment", modelingMerged})
	}
	for _, sheet := range sheets {
		if sheet.frame.Empty() {
			logger.WarnContext(ctx, "no data for sheet", slog.String("sheet", sheet.name))
			continue
		}
		if err := workbook.AddFrameSheet(sheet.name, "date", sheet.frame); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet.name, err)
		}
	}

	rows := make([][]any, len(summary.Earnings))
	for i, e := range summary.Earnings {
		rows[i] = []any{
			exporter.FormatDate(e.Date), e.EPSEstimate, e.EPSActual, e.SurprisePct,
		}
	}
	headers := []string{"earnings_date", "eps_estimate", "eps_actual", "surprise_pct"}
	if err := workbook.AddSheet("earnings_dates", headers, rows); err != nil {
		return fmt.Errorf("sheet earnings_dates: %w", err)
	}

	if err := workbook.Save(cfg.OutputXLSX); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	logger.InfoContext(ctx, "wrote workbook",
		slog.String("file", cfg.OutputXLSX),
		slog.Int("modeling_rows", modeling.Len()))
	return nil
}

// buildModelingDaily assembles the daily modeling table on the price
// calendar: adjusted close, its daily return, volume, market cap, enterprise
// value, the quarterly ratios, the income TTM aggregates and the debt, cash
// and equity balance lines carried forward day by day. Raw statement line
// items stay on their own sheets.
func buildModelingDaily(prices *timeseries.Frame, marketCap, ev *timeseries.Series, ratios, incomeQ, balanceQ *timeseries.Frame) *timeseries.Frame {
	index := prices.Index()

	core := timeseries.NewFrame(index)
	core.Set("Adj Close", prices.Col("Adj Close"))
	core.Set("Adj Return", prices.Col("Adj Return"))
	core.Set("Volume", prices.Col("Volume"))
	core.Set("MarketCap", marketCap)
	if ev != nil {
		core.Set("EV", ev)
	}

	fundsQ := incomeQ.Select(incomeQ.ColumnsWithSuffix(TTMSuffix)...)

	balance := timeseries.NewFrame(balanceQ.Index())
	for _, candidates := range [][]string{debtCandidates, cashCandidates, equityCandidates} {
		if s := balanceQ.FirstPresent(candidates...); s != nil {
			balance.Set(s.Name(), s)
		}
	}

	return timeseries.Concat(index, core,
		ratios.ReindexAsOf(index),
		fundsQ.ReindexAsOf(index),
		balance.ReindexAsOf(index))
}

// mergeSentiment joins the daily sentiment score onto the modeling table by
// exact date. Unscored days stay NaN.
func mergeSentiment(modeling *timeseries.Frame, score *timeseries.Series, column string) *timeseries.Frame {
	scored := timeseries.NewFrame(modeling.Index())
	scored.Set(column, score)
	return modeling.Join(scored)
}

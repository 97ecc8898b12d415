package fundamentals

import (
	"time"

	"finsent/internal/timeseries"
)

// MarketCapDaily computes daily market capitalization: the adjusted close
// multiplied by the shares outstanding carried forward onto the price
// calendar. Days before the first share observation stay NaN.
func MarketCapDaily(prices *timeseries.Frame, shares *timeseries.Series) *timeseries.Series {
	adjClose := prices.Col("Adj Close")
	aligned := shares.ReindexAsOf(prices.Index())
	return adjClose.Mul(aligned).WithName("MarketCap")
}

// EnterpriseValueDaily computes daily enterprise value: market cap plus
// total debt minus cash, with the quarterly balance figures carried forward
// onto the daily calendar. Returns nil when the balance sheet has no
// recognizable debt or cash line.
func EnterpriseValueDaily(marketCap *timeseries.Series, balanceQ *timeseries.Frame, index []time.Time) *timeseries.Series {
	debt := balanceQ.FirstPresent(debtCandidates...)
	cash := balanceQ.FirstPresent(cashCandidates...)
	if debt == nil || cash == nil {
		return nil
	}
	debtDaily := debt.DropNaN().ReindexAsOf(index)
	cashDaily := cash.DropNaN().ReindexAsOf(index)
	return marketCap.Add(debtDaily).Sub(cashDaily).WithName("EV")
}

// QuarterlyRatios derives valuation ratios on the quarterly statement
// calendar. Prices and shares are taken as of each quarter end. Ratios with
// a zero or missing denominator come out NaN, never infinite.
//
// Columns produced (when their inputs exist):
//
//	Price, MarketCap, P_S_TTM, EPS_TTM, P_E_TTM, Debt_Equity, EV_EBITDA_TTM
func QuarterlyRatios(incomeQ, balanceQ *timeseries.Frame, prices *timeseries.Frame, shares *timeseries.Series) *timeseries.Frame {
	index := incomeQ.Index()
	ratios := timeseries.NewFrame(index)

	price := prices.Col("Adj Close").ReindexAsOf(index).WithName("Price")
	sharesQ := shares.ReindexAsOf(index)
	marketCap := price.Mul(sharesQ).WithName("MarketCap")
	ratios.Set("Price", price)
	ratios.Set("MarketCap", marketCap)

	if revenueTTM := incomeQ.Col("Total Revenue" + TTMSuffix); revenueTTM != nil {
		ratios.Set("P_S_TTM", marketCap.Div(revenueTTM))
	}
	if netIncomeTTM := incomeQ.Col("Net Income" + TTMSuffix); netIncomeTTM != nil {
		epsTTM := netIncomeTTM.Div(sharesQ).WithName("EPS_TTM")
		ratios.Set("EPS_TTM", epsTTM)
		ratios.Set("P_E_TTM", price.Div(epsTTM))
	}

	debt := balanceQ.FirstPresent(debtCandidates...)
	equity := balanceQ.FirstPresent(equityCandidates...)
	if debt != nil && equity != nil {
		debtQ := debt.DropNaN().ReindexAsOf(index)
		equityQ := equity.DropNaN().ReindexAsOf(index)
		ratios.Set("Debt_Equity", debtQ.Div(equityQ))
	}

	if ebitdaTTM := ebitdaProxy(incomeQ); ebitdaTTM != nil {
		if debt != nil {
			cash := balanceQ.FirstPresent(cashCandidates...)
			if cash != nil {
				debtQ := debt.DropNaN().ReindexAsOf(index)
				cashQ := cash.DropNaN().ReindexAsOf(index)
				ev := marketCap.Add(debtQ).Sub(cashQ)
				ratios.Set("EV_EBITDA_TTM", ev.Div(ebitdaTTM))
			}
		}
	}

	return ratios
}

// ebitdaProxy returns the TTM EBITDA series, substituting TTM operating
// income when the statements carry no EBITDA line.
func ebitdaProxy(incomeQ *timeseries.Frame) *timeseries.Series {
	return incomeQ.FirstPresent("EBITDA"+TTMSuffix, "Operating Income"+TTMSuffix)
}

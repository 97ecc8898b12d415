// Package yahoo is a thin client for the Yahoo-Finance-shaped HTTP
// endpoints: daily chart prices, quoteSummary statement history, the
// share-count time series and earnings history.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"finsent/internal/timeseries"
)

// Client talks to the finance API. The zero value is not usable; construct
// with NewClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client against the given base URL
// (e.g. https://query1.finance.yahoo.com).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("finance API returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// DailyPrices fetches the daily OHLCV history as a date-indexed frame with
// columns Open, High, Low, Close, Adj Close and Volume. Null quotes become
// NaN cells.
func (c *Client) DailyPrices(ctx context.Context, symbol string, start, end time.Time) (*timeseries.Frame, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d&events=div%%2Csplit",
		c.baseURL, symbol, start.Unix(), end.Unix())

	var decoded chartResponse
	if err := c.get(ctx, url, &decoded); err != nil {
		return nil, err
	}
	if decoded.Chart.Error != nil {
		return nil, fmt.Errorf("chart error for %s: %s", symbol, decoded.Chart.Error.Description)
	}
	if len(decoded.Chart.Result) == 0 || len(decoded.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no price data for %s", symbol)
	}

	result := decoded.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	index := make([]time.Time, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		index[i] = timeseries.Day(time.Unix(ts, 0))
	}

	frame := timeseries.NewFrame(index)
	frame.Set("Open", pointerSeries("Open", index, quote.Open))
	frame.Set("High", pointerSeries("High", index, quote.High))
	frame.Set("Low", pointerSeries("Low", index, quote.Low))
	frame.Set("Close", pointerSeries("Close", index, quote.Close))
	if len(result.Indicators.AdjClose) > 0 {
		frame.Set("Adj Close", pointerSeries("Adj Close", index, result.Indicators.AdjClose[0].AdjClose))
	} else {
		// adjusted series absent: fall back to raw close
		frame.Set("Adj Close", frame.Col("Close").WithName("Adj Close"))
	}
	frame.Set("Volume", pointerSeries("Volume", index, quote.Volume))
	return frame, nil
}

func pointerSeries(name string, index []time.Time, values []*float64) *timeseries.Series {
	pts := make([]timeseries.Point, len(index))
	for i, d := range index {
		v := math.NaN()
		if i < len(values) && values[i] != nil {
			v = *values[i]
		}
		pts[i] = timeseries.Point{Date: d, Value: v}
	}
	return timeseries.New(name, pts)
}

type timeseriesResponse struct {
	Timeseries struct {
		Result []struct {
			Timestamp []int64    `json:"timestamp"`
			SharesOut []*float64 `json:"shares_out"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"timeseries"`
}

// ShareCountHistory fetches the reported shares-outstanding time series.
// An empty series (no error) means the endpoint had nothing for the symbol.
func (c *Client) ShareCountHistory(ctx context.Context, symbol string, start time.Time) (*timeseries.Series, error) {
	url := fmt.Sprintf("%s/ws/fundamentals-timeseries/v1/finance/timeseries/%s?symbol=%s&type=shares_out&period1=%d&period2=%d",
		c.baseURL, symbol, symbol, start.Unix(), time.Now().Unix())

	var decoded timeseriesResponse
	if err := c.get(ctx, url, &decoded); err != nil {
		return nil, err
	}
	if decoded.Timeseries.Error != nil {
		return nil, fmt.Errorf("timeseries error for %s: %s", symbol, decoded.Timeseries.Error.Description)
	}

	var pts []timeseries.Point
	for _, result := range decoded.Timeseries.Result {
		for i, ts := range result.Timestamp {
			if i < len(result.SharesOut) && result.SharesOut[i] != nil {
				pts = append(pts, timeseries.Point{
					Date:  timeseries.Day(time.Unix(ts, 0)),
					Value: *result.SharesOut[i],
				})
			}
		}
	}
	return timeseries.New("Shares Outstanding", pts), nil
}

package returns

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsent/internal/config"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestCompute_Example(t *testing.T) {
	// price series [100, 110, 99] -> returns [0.10, -0.10]
	prices := []PriceRow{
		{Date: day(1), Close: 100},
		{Date: day(2), Close: 110},
		{Date: day(3), Close: 99},
	}

	rows := Compute(prices)

	require.Len(t, rows, 2, "first observation is dropped")
	assert.Equal(t, day(2), rows[0].Date)
	assert.InDelta(t, 0.10, rows[0].Return, 1e-12)
	assert.Equal(t, day(3), rows[1].Date)
	assert.InDelta(t, -0.10, rows[1].Return, 1e-12)
}

func TestCompute_SortsByDate(t *testing.T) {
	prices := []PriceRow{
		{Date: day(3), Close: 99},
		{Date: day(1), Close: 100},
		{Date: day(2), Close: 110},
	}

	rows := Compute(prices)

	require.Len(t, rows, 2)
	assert.InDelta(t, 0.10, rows[0].Return, 1e-12)
	assert.InDelta(t, -0.10, rows[1].Return, 1e-12)
}

func TestCompute_LengthProperty(t *testing.T) {
	var prices []PriceRow
	for i := 1; i <= 20; i++ {
		prices = append(prices, PriceRow{Date: day(i), Close: float64(100 + i)})
	}

	rows := Compute(prices)

	assert.Len(t, rows, len(prices)-1)
	for i, r := range rows {
		expected := prices[i+1].Close/prices[i].Close - 1
		assert.Equal(t, expected, r.Return, "return must be exact at index %d", i)
	}
}

func TestCompute_TooFewRows(t *testing.T) {
	assert.Nil(t, Compute(nil))
	assert.Nil(t, Compute([]PriceRow{{Date: day(1), Close: 100}}))
}

func TestLoadPrices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	data := "date,close_price,volume\n1/2/2024,110.5,900\n1/3/2024,99,800\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	rows, err := LoadPrices(path, "1/2/2006")
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, day(2), rows[0].Date)
	assert.Equal(t, 110.5, rows[0].Close)
}

func TestLoadPrices_MalformedDatePropagates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	data := "date,close_price\nnot-a-date,110.5\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	_, err := LoadPrices(path, "1/2/2006")
	assert.Error(t, err)
}

func TestLoadPrices_MissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte("day,px\n1,2\n"), 0644))

	_, err := LoadPrices(path, "1/2/2006")
	assert.Error(t, err)
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "prices.csv")
	out := filepath.Join(dir, "returns.csv")
	data := "date,close_price\n1/1/2024,100\n1/2/2024,110\n1/3/2024,99\n"
	require.NoError(t, os.WriteFile(in, []byte(data), 0644))

	cfg := config.ReturnsConfig{InputCSV: in, OutputCSV: out, DateLayout: "1/2/2006"}
	require.NoError(t, Run(context.Background(), cfg))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(raw))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"date", "close_price", "return"}, records[0])
	assert.Equal(t, []string{"1/2/2024", "110", "0.10000000000000009"}, records[1])
}

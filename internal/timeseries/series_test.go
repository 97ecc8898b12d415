package timeseries

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(day int) time.Time {
	return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
}

func TestNew_SortsAndDeduplicates(t *testing.T) {
	s := New("close", []Point{
		{Date: d(3), Value: 3},
		{Date: d(1), Value: 1},
		{Date: d(2), Value: 2},
		{Date: d(2), Value: 20}, // duplicate keeps last
	})

	require.Equal(t, 3, s.Len())
	assert.Equal(t, []time.Time{d(1), d(2), d(3)}, s.Dates())
	assert.Equal(t, []float64{1, 20, 3}, s.Values())
}

func TestNew_NormalizesTimezone(t *testing.T) {
	loc := time.FixedZone("AST", 3*60*60)
	s := New("x", []Point{
		{Date: time.Date(2024, 1, 1, 3, 0, 0, 0, loc), Value: 1},
	})

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), s.Date(0))
}

func TestPctChange(t *testing.T) {
	s := New("close", []Point{
		{Date: d(1), Value: 100},
		{Date: d(2), Value: 110},
		{Date: d(3), Value: 99},
	})

	ret := s.PctChange()

	require.Equal(t, 3, ret.Len())
	assert.True(t, math.IsNaN(ret.Value(0)))
	assert.InDelta(t, 0.10, ret.Value(1), 1e-12)
	assert.InDelta(t, -0.10, ret.Value(2), 1e-12)
}

func TestPctChange_ZeroAndMissingPrior(t *testing.T) {
	s := New("x", []Point{
		{Date: d(1), Value: 0},
		{Date: d(2), Value: 5},
		{Date: d(3), Value: math.NaN()},
		{Date: d(4), Value: 10},
	})

	ret := s.PctChange()

	assert.True(t, math.IsNaN(ret.Value(1)), "zero prior must not produce Inf")
	assert.True(t, math.IsNaN(ret.Value(3)), "missing prior must produce NaN")
}

func TestAsOf(t *testing.T) {
	s := New("q", []Point{
		{Date: d(5), Value: 50},
		{Date: d(10), Value: 100},
	})

	tests := []struct {
		name   string
		date   time.Time
		want   float64
		wantOK bool
	}{
		{"before first", d(4), math.NaN(), false},
		{"exact match", d(5), 50, true},
		{"between", d(7), 50, true},
		{"after last", d(20), 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.AsOf(tt.date)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestReindexAsOf_NeverLooksAhead(t *testing.T) {
	q := New("debt", []Point{
		{Date: d(10), Value: 7},
	})

	daily := q.ReindexAsOf([]time.Time{d(8), d(9), d(10), d(11)})

	assert.True(t, math.IsNaN(daily.Value(0)))
	assert.True(t, math.IsNaN(daily.Value(1)))
	assert.Equal(t, 7.0, daily.Value(2))
	assert.Equal(t, 7.0, daily.Value(3))
}

func TestReindexAsOf_KeepsValueDatedOffIndex(t *testing.T) {
	// A quarter ending on a non-trading day must still reach the daily
	// calendar on the next trading day.
	q := New("rev", []Point{{Date: d(6), Value: 42}})

	daily := q.ReindexAsOf([]time.Time{d(5), d(8)})

	assert.True(t, math.IsNaN(daily.Value(0)))
	assert.Equal(t, 42.0, daily.Value(1))
}

func TestRollingSum_MinPeriods(t *testing.T) {
	s := New("rev", []Point{
		{Date: d(1), Value: 10},
		{Date: d(2), Value: 20},
		{Date: d(3), Value: 30},
		{Date: d(4), Value: 40},
		{Date: d(5), Value: 50},
	})

	ttm := s.RollingSum(4, 2)

	assert.True(t, math.IsNaN(ttm.Value(0)), "one observation is not enough")
	assert.Equal(t, 30.0, ttm.Value(1), "two observations give a partial sum")
	assert.Equal(t, 60.0, ttm.Value(2))
	assert.Equal(t, 100.0, ttm.Value(3))
	assert.Equal(t, 140.0, ttm.Value(4), "window slides off the first value")
}

func TestDiv_ZeroDenominatorIsNaN(t *testing.T) {
	num := New("mcap", []Point{{Date: d(1), Value: 100}, {Date: d(2), Value: 200}})
	den := New("rev", []Point{{Date: d(1), Value: 0}, {Date: d(2), Value: 50}})

	got := num.Div(den)

	assert.True(t, math.IsNaN(got.Value(0)))
	assert.Equal(t, 4.0, got.Value(1))
}

func TestBinaryOp_UnionAlignment(t *testing.T) {
	a := New("a", []Point{{Date: d(1), Value: 1}, {Date: d(2), Value: 2}})
	b := New("b", []Point{{Date: d(2), Value: 10}, {Date: d(3), Value: 20}})

	got := a.Add(b)

	require.Equal(t, 3, got.Len())
	assert.True(t, math.IsNaN(got.Value(0)))
	assert.Equal(t, 12.0, got.Value(1))
	assert.True(t, math.IsNaN(got.Value(2)))
}

func TestDropNaN(t *testing.T) {
	s := New("x", []Point{
		{Date: d(1), Value: math.NaN()},
		{Date: d(2), Value: 2},
	})

	got := s.DropNaN()

	require.Equal(t, 1, got.Len())
	assert.Equal(t, d(2), got.Date(0))
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	ts := time.Date(2024, 3, 15, 22, 30, 0, 0, loc) // 2024-03-16 03:30 UTC

	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), Day(ts))
}

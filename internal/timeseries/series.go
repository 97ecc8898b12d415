package timeseries

import (
	"math"
	"sort"
	"time"
)

// Point is a single dated observation.
type Point struct {
	Date  time.Time
	Value float64
}

// Series is a date-indexed series of float64 values. The index is always
// timezone-naive (UTC), sorted ascending, and unique — duplicate dates keep
// the last value seen. Missing values are represented as NaN.
type Series struct {
	name   string
	dates  []time.Time
	values []float64
}

// New builds a Series from points. Input order does not matter; duplicate
// dates keep the last value in input order.
func New(name string, points []Point) *Series {
	pts := make([]Point, len(points))
	for i, p := range points {
		pts[i] = Point{Date: normalize(p.Date), Value: p.Value}
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Date.Before(pts[j].Date) })

	s := &Series{name: name}
	for _, p := range pts {
		n := len(s.dates)
		if n > 0 && s.dates[n-1].Equal(p.Date) {
			s.values[n-1] = p.Value
			continue
		}
		s.dates = append(s.dates, p.Date)
		s.values = append(s.values, p.Value)
	}
	return s
}

// Constant returns a Series holding the same value at every date of index.
func Constant(name string, index []time.Time, value float64) *Series {
	pts := make([]Point, len(index))
	for i, d := range index {
		pts[i] = Point{Date: d, Value: value}
	}
	return New(name, pts)
}

// normalize strips the timezone, keeping the wall-clock instant in UTC.
func normalize(t time.Time) time.Time {
	return t.UTC()
}

// Day truncates a timestamp to UTC midnight. Callers that key tables by
// calendar date normalize through this before building a Series.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Name returns the series name.
func (s *Series) Name() string { return s.name }

// WithName returns a copy of the series under a new name.
func (s *Series) WithName(name string) *Series {
	out := s.copy()
	out.name = name
	return out
}

// Len returns the number of observations.
func (s *Series) Len() int { return len(s.dates) }

// Empty reports whether the series has no observations.
func (s *Series) Empty() bool { return s == nil || len(s.dates) == 0 }

// Date returns the i-th index date.
func (s *Series) Date(i int) time.Time { return s.dates[i] }

// Value returns the i-th value.
func (s *Series) Value(i int) float64 { return s.values[i] }

// Dates returns the index. The returned slice must not be modified.
func (s *Series) Dates() []time.Time { return s.dates }

// Values returns the values. The returned slice must not be modified.
func (s *Series) Values() []float64 { return s.values }

// At returns the value stored exactly at date.
func (s *Series) At(date time.Time) (float64, bool) {
	i := s.search(normalize(date))
	if i < len(s.dates) && s.dates[i].Equal(normalize(date)) {
		return s.values[i], true
	}
	return math.NaN(), false
}

// AsOf returns the value at the most recent index date at or before date.
// The second return is false when every index date is after date.
func (s *Series) AsOf(date time.Time) (float64, bool) {
	d := normalize(date)
	i := s.search(d)
	if i < len(s.dates) && s.dates[i].Equal(d) {
		return s.values[i], true
	}
	if i == 0 {
		return math.NaN(), false
	}
	return s.values[i-1], true
}

// search returns the first index position whose date is >= d.
func (s *Series) search(d time.Time) int {
	return sort.Search(len(s.dates), func(i int) bool { return !s.dates[i].Before(d) })
}

func (s *Series) copy() *Series {
	out := &Series{name: s.name}
	out.dates = append([]time.Time(nil), s.dates...)
	out.values = append([]float64(nil), s.values...)
	return out
}

// PctChange returns the fractional change from the prior observation:
// v[t]/v[t-1] - 1. The first observation is NaN, as is any change whose
// prior value is missing or zero.
func (s *Series) PctChange() *Series {
	out := s.copy()
	for i := range out.values {
		if i == 0 {
			out.values[i] = math.NaN()
			continue
		}
		prev, cur := s.values[i-1], s.values[i]
		if math.IsNaN(prev) || math.IsNaN(cur) || prev == 0 {
			out.values[i] = math.NaN()
			continue
		}
		out.values[i] = cur/prev - 1
	}
	return out
}

// Reindex aligns the series onto a new index by exact date match. Dates
// absent from the series become NaN; values at dates absent from the new
// index are dropped.
func (s *Series) Reindex(index []time.Time) *Series {
	pts := make([]Point, len(index))
	for i, d := range index {
		v, ok := s.At(d)
		if !ok {
			v = math.NaN()
		}
		pts[i] = Point{Date: d, Value: v}
	}
	out := New(s.name, pts)
	return out
}

// ReindexAsOf aligns the series onto a new index taking, for each target
// date, the most recent observation at or before it. This is the alignment
// used for forward-filling quarterly figures onto a daily calendar: a value
// never appears before its own statement date.
func (s *Series) ReindexAsOf(index []time.Time) *Series {
	pts := make([]Point, len(index))
	for i, d := range index {
		v, ok := s.AsOf(d)
		if !ok {
			v = math.NaN()
		}
		pts[i] = Point{Date: d, Value: v}
	}
	return New(s.name, pts)
}

// DropNaN returns the series with all NaN observations removed.
func (s *Series) DropNaN() *Series {
	var pts []Point
	for i, v := range s.values {
		if !math.IsNaN(v) {
			pts = append(pts, Point{Date: s.dates[i], Value: v})
		}
	}
	return New(s.name, pts)
}

// RollingSum returns the sum of the trailing window observations, skipping
// NaN. The result at a position is NaN until at least minPeriods non-NaN
// observations are present in its window.
func (s *Series) RollingSum(window, minPeriods int) *Series {
	out := s.copy()
	for i := range s.values {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		sum, count := 0.0, 0
		for j := lo; j <= i; j++ {
			if !math.IsNaN(s.values[j]) {
				sum += s.values[j]
				count++
			}
		}
		if count < minPeriods {
			out.values[i] = math.NaN()
		} else {
			out.values[i] = sum
		}
	}
	return out
}

// binaryOp aligns both series on the union of their indexes and applies fn
// pointwise. A date missing from either side yields NaN.
func (s *Series) binaryOp(other *Series, fn func(a, b float64) float64) *Series {
	index := UnionIndex(s.dates, other.dates)
	pts := make([]Point, len(index))
	for i, d := range index {
		a, okA := s.At(d)
		b, okB := other.At(d)
		v := math.NaN()
		if okA && okB && !math.IsNaN(a) && !math.IsNaN(b) {
			v = fn(a, b)
		}
		pts[i] = Point{Date: d, Value: v}
	}
	return New("", pts)
}

// Add returns the pointwise sum of two series.
func (s *Series) Add(other *Series) *Series {
	return s.binaryOp(other, func(a, b float64) float64 { return a + b })
}

// Sub returns the pointwise difference of two series.
func (s *Series) Sub(other *Series) *Series {
	return s.binaryOp(other, func(a, b float64) float64 { return a - b })
}

// Mul returns the pointwise product of two series.
func (s *Series) Mul(other *Series) *Series {
	return s.binaryOp(other, func(a, b float64) float64 { return a * b })
}

// Div returns the pointwise quotient of two series. A zero or missing
// denominator yields NaN, never Inf.
func (s *Series) Div(other *Series) *Series {
	return s.binaryOp(other, func(a, b float64) float64 {
		if b == 0 {
			return math.NaN()
		}
		return a / b
	})
}

// UnionIndex merges two sorted date indexes into their sorted union.
func UnionIndex(a, b []time.Time) []time.Time {
	out := make([]time.Time, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Before(b[j]):
			out = append(out, a[i])
			i++
		case b[j].Before(a[i]):
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

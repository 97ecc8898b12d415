package timeseries

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Frame is a date-indexed table: an ordered set of named float64 columns
// sharing one index. Like Series, the index is sorted, unique and
// timezone-naive, and missing cells are NaN.
type Frame struct {
	index []time.Time
	order []string
	cols  map[string][]float64
}

// NewFrame builds an empty frame over the given index. The index is
// normalized, sorted and deduplicated.
func NewFrame(index []time.Time) *Frame {
	uniq := make([]time.Time, 0, len(index))
	seen := make(map[time.Time]struct{}, len(index))
	for _, d := range index {
		d = normalize(d)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		uniq = append(uniq, d)
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i].Before(uniq[j]) })
	return &Frame{index: uniq, cols: make(map[string][]float64)}
}

// Index returns the frame index. The returned slice must not be modified.
func (f *Frame) Index() []time.Time { return f.index }

// Len returns the number of index dates.
func (f *Frame) Len() int { return len(f.index) }

// Empty reports whether the frame has no rows or no columns.
func (f *Frame) Empty() bool { return f == nil || len(f.index) == 0 || len(f.order) == 0 }

// Columns returns column names in insertion order.
func (f *Frame) Columns() []string { return f.order }

// Has reports whether the named column exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Set adds or replaces a column. The series is aligned to the frame index by
// exact date match.
func (f *Frame) Set(name string, s *Series) {
	aligned := s.Reindex(f.index)
	if !f.Has(name) {
		f.order = append(f.order, name)
	}
	f.cols[name] = append([]float64(nil), aligned.Values()...)
}

// SetAsOf adds or replaces a column, aligning the series to the frame index
// by most-recent-prior observation.
func (f *Frame) SetAsOf(name string, s *Series) {
	aligned := s.ReindexAsOf(f.index)
	if !f.Has(name) {
		f.order = append(f.order, name)
	}
	f.cols[name] = append([]float64(nil), aligned.Values()...)
}

// Col returns the named column as a Series, or nil when absent.
func (f *Frame) Col(name string) *Series {
	vals, ok := f.cols[name]
	if !ok {
		return nil
	}
	pts := make([]Point, len(f.index))
	for i, d := range f.index {
		pts[i] = Point{Date: d, Value: vals[i]}
	}
	return New(name, pts)
}

// FirstPresent returns the first of the named columns that exists, or nil.
// Used to probe heterogeneous statement tables where a line item goes by
// several names.
func (f *Frame) FirstPresent(names ...string) *Series {
	for _, n := range names {
		if f.Has(n) {
			return f.Col(n)
		}
	}
	return nil
}

// Select returns a new frame with only the named columns, silently skipping
// names that are absent.
func (f *Frame) Select(names ...string) *Frame {
	out := NewFrame(f.index)
	for _, n := range names {
		if f.Has(n) {
			out.Set(n, f.Col(n))
		}
	}
	return out
}

// ColumnsWithSuffix returns the columns whose name ends with suffix, in
// insertion order.
func (f *Frame) ColumnsWithSuffix(suffix string) []string {
	var out []string
	for _, n := range f.order {
		if strings.HasSuffix(n, suffix) {
			out = append(out, n)
		}
	}
	return out
}

// Reindex aligns every column onto a new index by exact date match.
func (f *Frame) Reindex(index []time.Time) *Frame {
	out := NewFrame(index)
	for _, n := range f.order {
		out.Set(n, f.Col(n))
	}
	return out
}

// ReindexAsOf aligns every column onto a new index by most-recent-prior
// observation. Forward-filled figures never appear before their own date.
func (f *Frame) ReindexAsOf(index []time.Time) *Frame {
	out := NewFrame(index)
	for _, n := range f.order {
		out.SetAsOf(n, f.Col(n))
	}
	return out
}

// Join left-joins another frame's columns onto this frame's index by exact
// date match. Columns already present are left untouched.
func (f *Frame) Join(other *Frame) *Frame {
	out := NewFrame(f.index)
	for _, n := range f.order {
		out.Set(n, f.Col(n))
	}
	for _, n := range other.Columns() {
		if out.Has(n) {
			continue
		}
		out.Set(n, other.Col(n))
	}
	return out
}

// Concat assembles one frame over index from the columns of several frames,
// each aligned by exact date match. Later frames do not overwrite columns of
// earlier ones.
func Concat(index []time.Time, frames ...*Frame) *Frame {
	out := NewFrame(index)
	for _, fr := range frames {
		if fr == nil {
			continue
		}
		for _, n := range fr.Columns() {
			if out.Has(n) {
				continue
			}
			out.Set(n, fr.Col(n))
		}
	}
	return out
}

// DropAllNaNRows removes index dates where every column is NaN.
func (f *Frame) DropAllNaNRows() *Frame {
	var keep []time.Time
	for i, d := range f.index {
		all := true
		for _, n := range f.order {
			if !math.IsNaN(f.cols[n][i]) {
				all = false
				break
			}
		}
		if !all {
			keep = append(keep, d)
		}
	}
	return f.Reindex(keep)
}

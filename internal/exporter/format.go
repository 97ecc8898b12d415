package exporter

import (
	"math"
	"strconv"
	"time"
)

// formatFloat formats a float64 for CSV output at full precision. Missing
// values (NaN) become an empty cell.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatDate formats a date cell as an ISO calendar date.
func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatFloat is the exported form used by pipelines building their own rows.
func FormatFloat(f float64) string { return formatFloat(f) }

// FormatInt is the exported form used by pipelines building their own rows.
func FormatInt(i int64) string { return formatInt(i) }

// FormatDate is the exported form used by pipelines building their own rows.
func FormatDate(t time.Time) string { return formatDate(t) }

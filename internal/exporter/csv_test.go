package exporter

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name    string
		options WriteOptions
		wantBOM bool
		want    [][]string
	}{
		{
			name: "headers and records",
			options: WriteOptions{
				Headers: []string{"date", "close_price", "return"},
				Records: [][]string{
					{"2024-01-02", "110", "0.1"},
					{"2024-01-03", "99", "-0.1"},
				},
			},
			want: [][]string{
				{"date", "close_price", "return"},
				{"2024-01-02", "110", "0.1"},
				{"2024-01-03", "99", "-0.1"},
			},
		},
		{
			name: "with BOM",
			options: WriteOptions{
				Headers:   []string{"a"},
				Records:   [][]string{{"1"}},
				BOMPrefix: true,
			},
			wantBOM: true,
			want:    [][]string{{"a"}, {"1"}},
		},
		{
			name: "records only",
			options: WriteOptions{
				Records: [][]string{{"x", "y"}},
			},
			want: [][]string{{"x", "y"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", "test.csv")
			writer := NewCSVWriter()

			require.NoError(t, writer.WriteCSV(path, tt.options))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)

			hasBOM := bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
			assert.Equal(t, tt.wantBOM, hasBOM)

			raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
			records, err := csv.NewReader(strings.NewReader(string(raw))).ReadAll()
			require.NoError(t, err)
			assert.Equal(t, tt.want, records)
		})
	}
}

func TestCSVWriter_SimpleWritesBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.csv")
	writer := NewCSVWriter()

	require.NoError(t, writer.WriteSimpleCSV(path, []string{"a"}, [][]string{{"1"}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}))
}

func TestCSVWriter_TruncatesOnRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.csv")
	writer := NewCSVWriter()

	require.NoError(t, writer.WriteSimpleCSV(path, []string{"a"}, [][]string{{"1"}, {"2"}}))
	require.NoError(t, writer.WriteSimpleCSV(path, []string{"a"}, [][]string{{"3"}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})

	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {"3"}}, records)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "0.1", FormatFloat(0.1))
	assert.Equal(t, "-0.25", FormatFloat(-0.25))
	assert.Equal(t, "", FormatFloat(math.NaN()))
}

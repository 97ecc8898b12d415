package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"finsent/internal/timeseries"
)

// WorkbookWriter assembles a multi-sheet Excel workbook. Sheets are written
// in the order they are added; the first added sheet becomes the active one.
type WorkbookWriter struct {
	file   *excelize.File
	sheets int
}

// NewWorkbookWriter creates an empty workbook.
func NewWorkbookWriter() *WorkbookWriter {
	return &WorkbookWriter{file: excelize.NewFile()}
}

// AddSheet writes a sheet from explicit headers and rows. Cell values may be
// string, int64, float64 or time.Time; NaN floats are left empty.
func (w *WorkbookWriter) AddSheet(name string, headers []string, rows [][]any) error {
	if err := w.newSheet(name); err != nil {
		return err
	}

	for c, h := range headers {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
		if err := w.file.SetCellValue(name, cell, h); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}

	for r, row := range rows {
		for c, v := range row {
			if f, ok := v.(float64); ok && math.IsNaN(f) {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("sheet %s: %w", name, err)
			}
			if err := w.file.SetCellValue(name, cell, v); err != nil {
				return fmt.Errorf("sheet %s: %w", name, err)
			}
		}
	}

	return nil
}

// AddFrameSheet writes a date-indexed frame as a sheet: the first column is
// the index under dateHeader, followed by the frame columns. Missing values
// are left as empty cells.
func (w *WorkbookWriter) AddFrameSheet(name, dateHeader string, frame *timeseries.Frame) error {
	headers := append([]string{dateHeader}, frame.Columns()...)

	columns := make([][]float64, len(frame.Columns()))
	for j, col := range frame.Columns() {
		columns[j] = frame.Col(col).Values()
	}

	rows := make([][]any, frame.Len())
	for i, d := range frame.Index() {
		row := make([]any, 0, len(headers))
		row = append(row, formatDate(d))
		for _, vals := range columns {
			row = append(row, vals[i])
		}
		rows[i] = row
	}

	return w.AddSheet(name, headers, rows)
}

// Save writes the workbook to disk, creating parent directories as needed.
func (w *WorkbookWriter) Save(path string) error {
	if w.sheets == 0 {
		return fmt.Errorf("workbook has no sheets")
	}

	slog.Info("Writing Excel workbook",
		slog.String("file_path", path),
		slog.Int("sheet_count", w.sheets))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return w.file.Close()
}

func (w *WorkbookWriter) newSheet(name string) error {
	if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	w.sheets++
	if w.sheets == 1 {
		// replace the default sheet
		if err := w.file.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to drop default sheet: %w", err)
		}
		idx, err := w.file.GetSheetIndex(name)
		if err != nil {
			return fmt.Errorf("failed to locate sheet %s: %w", name, err)
		}
		w.file.SetActiveSheet(idx)
	}
	return nil
}

// Package exporter writes the flat files the pipelines produce.
//
// CSVWriter handles CSV output with optional UTF-8 BOM for Excel
// compatibility and append mode. WorkbookWriter assembles multi-sheet
// Excel workbooks via excelize, including direct serialization of
// timeseries.Frame tables with their date index as the first column.
// Missing values (NaN) are rendered as empty cells in both formats.
package exporter

// Package report renders normalized API records as spreadsheets.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/brizzai/backoffice/internal/logger"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	// DefaultSheet is used when WriteExcel is given no sheet name
	DefaultSheet = "Sheet1"
	// ValueColumn holds records that are not JSON objects
	ValueColumn = "value"

	maxSheetName = 31
)

// Columns returns the union of the records' keys with "id" first and the
// rest sorted. Records that are not objects contribute the value column.
func Columns(records []any) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		obj, ok := rec.(map[string]any)
		if !ok {
			seen[ValueColumn] = struct{}{}
			continue
		}
		for k := range obj {
			seen[k] = struct{}{}
		}
	}

	_, hasID := seen["id"]
	delete(seen, "id")

	columns := make([]string, 0, len(seen)+1)
	for k := range seen {
		columns = append(columns, k)
	}
	sort.Strings(columns)
	if hasID {
		columns = append([]string{"id"}, columns...)
	}
	return columns
}

// WriteExcel writes records to w as an xlsx workbook with a bold header row.
// When columns is empty it is computed with Columns.
func WriteExcel(w io.Writer, sheet string, columns []string, records []any) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	if runes := []rune(sheet); len(runes) > maxSheetName {
		sheet = string(runes[:maxSheetName])
	}
	if len(columns) == 0 {
		columns = Columns(records)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return fmt.Errorf("invalid sheet name %q: %w", sheet, err)
		}
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if len(columns) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("failed to create header style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, rec := range records {
		row, err := rowValues(columns, rec)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	logger.Debug("Wrote report", zap.String("sheet", sheet), zap.Int("rows", len(records)))
	return nil
}

// Rows renders records as text cells in column order, for terminal tables
func Rows(columns []string, records []any) [][]string {
	rows := make([][]string, len(records))
	for i, rec := range records {
		values, err := rowValues(columns, rec)
		row := make([]string, len(columns))
		for j := range row {
			if err != nil {
				break
			}
			row[j] = text(values[j])
		}
		rows[i] = row
	}
	return rows
}

func text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(val)
	}
}

func rowValues(columns []string, rec any) ([]any, error) {
	row := make([]any, len(columns))
	obj, isObject := rec.(map[string]any)
	for i, c := range columns {
		var v any
		switch {
		case isObject:
			v = obj[c]
		case c == ValueColumn:
			v = rec
		default:
			continue
		}
		cell, err := cellValue(v)
		if err != nil {
			return nil, err
		}
		row[i] = cell
	}
	return row, nil
}

// cellValue maps a decoded JSON value to something excelize can store
func cellValue(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string, bool, float64, int, int64:
		return val, nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n, nil
		}
		// integers past int64 keep every digit as text
		if !strings.ContainsAny(val.String(), ".eE") {
			return val.String(), nil
		}
		if f, err := val.Float64(); err == nil {
			return f, nil
		}
		return val.String(), nil
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("failed to encode nested value: %w", err)
		}
		return string(data), nil
	}
}

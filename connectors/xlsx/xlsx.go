// Package xlsx exports output frames as a single workbook, one sheet per frame.
package xlsx

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"metro-costs/domain/transit"
)

// maxSheetName is the Excel limit on sheet name length.
const maxSheetName = 31

// WriteWorkbook writes frames to path. Numeric cells are stored as numbers so the workbook can be
// charted directly; empty and "undefined" cells stay text.
func WriteWorkbook(path string, frames []transit.Frame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	used := map[string]bool{}
	for i, frame := range frames {
		name := sheetName(frame.Name, used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}
		if err := writeSheet(f, name, frame); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
		if err := f.SetRowStyle(name, 1, 1, bold); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func writeSheet(f *excelize.File, sheet string, frame transit.Frame) error {
	header := make([]any, len(frame.Header))
	for i, h := range frame.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for r, row := range frame.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = cellValue(v)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func cellValue(v string) any {
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	return v
}

// sheetName truncates to the Excel limit and disambiguates collisions with a numeric suffix.
func sheetName(name string, used map[string]bool) string {
	if name == "" {
		name = "Sheet"
	}
	base := truncate(name, maxSheetName)
	out := base
	for n := 2; used[out]; n++ {
		suffix := "_" + strconv.Itoa(n)
		out = truncate(name, maxSheetName-len(suffix)) + suffix
	}
	used[out] = true
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

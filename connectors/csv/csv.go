package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"metro-costs/domain/normalize"
	"metro-costs/domain/transit"
)

// ReadFrame loads a whole CSV table. A missing file is reported as transit.ErrMissingTable.
func ReadFrame(path string) (transit.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return transit.Frame{}, fmt.Errorf("%s: %w", path, transit.ErrMissingTable)
		}
		return transit.Frame{}, err
	}
	defer f.Close()
	frame, err := decode(f)
	if err != nil {
		return transit.Frame{}, fmt.Errorf("%s: %w", path, err)
	}
	frame.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return frame, nil
}

func decode(r io.Reader) (transit.Frame, error) {
	cr := csv.NewReader(r)
	// published tables have ragged trailing columns
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return transit.Frame{}, err
	}
	if len(records) == 0 {
		return transit.Frame{}, nil
	}
	frame := transit.Frame{Header: records[0]}
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		frame.Rows = append(frame.Rows, rec)
	}
	return frame, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// WriteFrame writes f to path, creating parent directories.
func WriteFrame(path string, frame transit.Frame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write(frame.Header); err != nil {
		return err
	}
	for _, row := range frame.Rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteAllCSVs writes every frame into dir as <name>.csv.
func WriteAllCSVs(dir string, frames []transit.Frame) error {
	for _, f := range frames {
		if err := WriteFrame(filepath.Join(dir, f.Name+".csv"), f); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	return nil
}

// indexMap maps normalized header names to column positions.
func indexMap(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, h := range header {
		key := normalize.NormalizeHeader(h)
		if _, dup := m[key]; !dup {
			m[key] = i
		}
	}
	return m
}

func requireColumns(name string, idx map[string]int, cols ...string) error {
	for _, col := range cols {
		if _, ok := idx[col]; !ok {
			return fmt.Errorf("%s: %w %s", name, transit.ErrMissingColumn, col)
		}
	}
	return nil
}

func field(rec []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

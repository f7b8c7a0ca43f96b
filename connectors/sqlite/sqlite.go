// Package sqlite mirrors output frames into a SQLite database, one table per frame.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"metro-costs/domain/transit"
)

const driver = "sqlite"

// WriteDatabase recreates the database at path with a table per frame. Columns whose values all
// parse as numbers are declared REAL; empty cells are stored as NULL.
func WriteDatabase(ctx context.Context, path string, frames []transit.Frame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	db, err := sql.Open(driver, path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, f := range frames {
		if err := writeTable(ctx, tx, f); err != nil {
			return fmt.Errorf("table %s: %w", f.Name, err)
		}
	}
	return tx.Commit()
}

func writeTable(ctx context.Context, tx *sql.Tx, f transit.Frame) error {
	if len(f.Header) == 0 {
		return nil
	}
	numeric := numericColumns(f)
	defs := make([]string, len(f.Header))
	cols := make([]string, len(f.Header))
	for i, h := range f.Header {
		typ := "TEXT"
		if numeric[i] {
			typ = "REAL"
		}
		cols[i] = quote(h)
		defs[i] = cols[i] + " " + typ
	}
	if _, err := tx.ExecContext(ctx, `CREATE TABLE `+quote(f.Name)+` (`+strings.Join(defs, ",")+`)`); err != nil {
		return err
	}
	ph := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+quote(f.Name)+` (`+strings.Join(cols, ",")+`) VALUES (`+ph+`)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, row := range f.Rows {
		args := make([]any, len(cols))
		for i := range cols {
			args[i] = value(row, i, numeric[i])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// numericColumns flags columns with at least one number and nothing else but blanks and the
// undefined marker.
func numericColumns(f transit.Frame) []bool {
	out := make([]bool, len(f.Header))
	for i := range f.Header {
		seen := false
		ok := true
		for _, row := range f.Rows {
			if i >= len(row) || row[i] == "" || row[i] == transit.UndefinedLabel {
				continue
			}
			if _, err := strconv.ParseFloat(row[i], 64); err != nil {
				ok = false
				break
			}
			seen = true
		}
		out[i] = ok && seen
	}
	return out
}

func value(row []string, i int, numeric bool) any {
	if i >= len(row) || row[i] == "" {
		return nil
	}
	if numeric {
		if n, err := strconv.ParseFloat(row[i], 64); err == nil {
			return n
		}
	}
	return row[i]
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

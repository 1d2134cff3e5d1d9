// Package csvsrc implements Ripple's load_csv and csv_header builtins:
// reading a CSV file on disk into a value.Table, with column cells
// coerced to int, float, bool, or null where the text allows it and left
// as string otherwise.
//
// No CSV parser appears anywhere in the retrieval pack, so this is the
// one place the implementation falls back to the standard library's
// encoding/csv rather than a third-party dependency (see DESIGN.md). The
// loading shape — read whole file, validate, parse, wrap I/O failures —
// is grounded on internal/tqw/tqw.go's LoadResourceBundle.
package csvsrc

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dekarrin/ripple/value"
)

// Load reads the CSV file at path into a value.Table. When hasHeader is
// true, the first row is taken as the column names and excluded from the
// row data; otherwise the table has no header and columns are unnamed.
func Load(path string, hasHeader bool) (value.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return value.NullValue, fmt.Errorf("load_csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return value.NullValue, fmt.Errorf("load_csv: %s: %w", path, err)
	}

	var header []string
	if hasHeader {
		if len(records) == 0 {
			return value.NullValue, fmt.Errorf("load_csv: %s: has_header requested but file is empty", path)
		}
		header = records[0]
		records = records[1:]
	}

	rows := make([]value.Row, len(records))
	for i, rec := range records {
		row := make(value.Row, len(rec))
		for j, cell := range rec {
			row[j] = coerce(cell)
		}
		rows[i] = row
	}

	return value.OfTable(value.Tab{Header: header, Rows: rows}), nil
}

// Header returns the first row of the CSV file at path, without parsing
// the rest of the file.
func Header(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv_header: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rec, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("csv_header: %s: %w", path, err)
	}
	return rec, nil
}

// coerce applies Ripple's cell-coercion rules: an empty cell becomes
// null, "true"/"false" (case-insensitive) become bool, a value parseable
// as an integer becomes int, a value parseable as a float becomes float,
// and everything else stays a string.
func coerce(cell string) value.Value {
	if cell == "" {
		return value.NullValue
	}
	if i, err := strconv.Atoi(cell); err == nil {
		return value.OfInt(i)
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return value.OfFloat(f)
	}
	switch strings.ToLower(cell) {
	case "true":
		return value.OfBool(true)
	case "false":
		return value.OfBool(false)
	}
	return value.OfString(cell)
}

// Package csv moves the dashboard's tabular data in and out of CSV files:
// generic header+rows tables, the action tracker export, and the bundled
// sample dataset.
package csv

import (
	"encoding/csv"
	"io"
	"os"
)

// Table is a raw tabular payload before column-role resolution: a header row
// plus data rows, all strings. Keeping values as strings avoids lossy or
// incorrect type coercion before the normalizer has decided what each column
// means.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Empty reports whether the table carries no data rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// ReadTable parses CSV content from r into a Table. Short rows are kept as-is
// (the normalizer treats missing cells as absent); fully empty records are
// dropped.
func ReadTable(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, err
	}
	if len(records) == 0 {
		return Table{}, nil
	}
	t := Table{Headers: records[0]}
	for _, row := range records[1:] {
		if len(row) == 0 {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadTableFile loads a CSV file into a Table.
func ReadTableFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()
	return ReadTable(f)
}

// WriteTable writes a Table as CSV to w, header row first.
func WriteTable(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTableFile writes a Table to a CSV file, creating parent-less paths as
// given (callers create directories).
func WriteTableFile(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteTable(f, t)
}

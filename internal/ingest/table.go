package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Column type tags, named after the descriptors analysts already know
// from dataframe tooling.
const (
	KindInt      = "int64"
	KindFloat    = "float64"
	KindBool     = "bool"
	KindObject   = "object"
	KindDatetime = "datetime64[ns]"
)

// Table is a materialized rectangular table: a header and string cells.
type Table struct {
	Columns []string
	Rows    [][]string

	// DeclaredTypes marks columns the loader was told hold timestamps.
	DeclaredTypes map[string]string
}

// NumRows returns the number of data rows
func (t Table) NumRows() int {
	return len(t.Rows)
}

// WithTimestampColumns returns a copy of t with cols declared as timestamps.
func (t Table) WithTimestampColumns(cols ...string) Table {
	if len(cols) == 0 {
		return t
	}

	declared := make(map[string]string, len(t.DeclaredTypes)+len(cols))
	for k, v := range t.DeclaredTypes {
		declared[k] = v
	}
	for _, col := range cols {
		declared[strings.TrimSpace(col)] = KindDatetime
	}
	t.DeclaredTypes = declared
	return t
}

// Validate checks the table is non-empty and rectangular with unique column names.
func (t Table) Validate() error {
	if len(t.Columns) == 0 || len(t.Rows) == 0 {
		return ErrEmptyDataset
	}

	seen := make(map[string]struct{}, len(t.Columns))
	for _, col := range t.Columns {
		if _, dup := seen[col]; dup {
			return fmt.Errorf("%w: duplicate column %q", ErrCorruptSource, col)
		}
		seen[col] = struct{}{}
	}

	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("%w: row %d has %d fields, header has %d",
				ErrCorruptSource, i+1, len(row), len(t.Columns))
		}
	}

	for col := range t.DeclaredTypes {
		if _, ok := seen[col]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, col)
		}
	}

	return nil
}

// Digest returns a SHA-256 over the full table content. It identifies a
// table for caching; it is not the audit hash.
func (t Table) Digest() string {
	h := sha256.New()
	writeField := func(s string) {
		fmt.Fprintf(h, "%d:%s", len(s), s)
	}

	for _, col := range t.Columns {
		writeField(col)
		writeField(t.DeclaredTypes[col])
	}
	h.Write([]byte{'\n'})
	for _, row := range t.Rows {
		for _, cell := range row {
			writeField(cell)
		}
		h.Write([]byte{'\n'})
	}

	return hex.EncodeToString(h.Sum(nil))
}

// column returns the i-th column's cells
func (t Table) column(i int) []string {
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

var nullTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "<NA>": {}, "#N/A": {}, "#NA": {}, "NA/N": {},
}

// isNull reports whether a cell is a missing-value marker
func isNull(cell string) bool {
	_, ok := nullTokens[strings.TrimSpace(cell)]
	return ok
}

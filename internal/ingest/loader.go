package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LoadOptions tunes CSV loading.
type LoadOptions struct {
	// ParseDates lists columns to read as timestamps regardless of name.
	ParseDates []string

	// Delimiter defaults to ','.
	Delimiter rune

	// MaxRows caps the number of data rows read; 0 means no limit.
	MaxRows int
}

// LoadFile reads a CSV file into a Table.
func LoadFile(path string, opts LoadOptions) (Table, error) {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return Table{}, newError("load", path, ErrUnsupportedFormat, "")
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Table{}, newError("load", path, ErrSourceMissing, "")
		}
		return Table{}, &IngestError{Op: "load", Source: path, Err: err}
	}
	defer f.Close()

	return load(f, path, opts)
}

// LoadReader reads CSV content from r. source labels errors only.
func LoadReader(r io.Reader, source string, opts LoadOptions) (Table, error) {
	return load(r, source, opts)
}

func load(r io.Reader, source string, opts LoadOptions) (Table, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	// FieldsPerRecord 0: every record must match the header width
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if err == io.EOF {
		return Table{}, newError("load", source, ErrEmptyDataset, "no header row")
	}
	if err != nil {
		return Table{}, newError("load", source, ErrCorruptSource, describeCSVError(err))
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := Table{Columns: header}
	for {
		if opts.MaxRows > 0 && len(t.Rows) >= opts.MaxRows {
			break
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, newError("load", source, ErrCorruptSource, describeCSVError(err))
		}
		t.Rows = append(t.Rows, record)
	}

	t = t.WithTimestampColumns(opts.ParseDates...)

	if err := t.Validate(); err != nil {
		return Table{}, &IngestError{Op: "load", Source: source, Err: err}
	}

	return t, nil
}

// describeCSVError keeps position information and drops any field content.
func describeCSVError(err error) string {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return fmt.Sprintf("line %d, column %d: %v", perr.Line, perr.Column, perr.Err)
	}
	return "unreadable CSV"
}

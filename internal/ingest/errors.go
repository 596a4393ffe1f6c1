package ingest

import (
	"errors"
	"fmt"
)

// Failure reasons. Match with errors.Is on an *IngestError.
var (
	ErrEmptyDataset      = errors.New("dataset is empty")
	ErrUnsupportedFormat = errors.New("only CSV sources are supported")
	ErrCorruptSource     = errors.New("source is not a well-formed table")
	ErrSourceMissing     = errors.New("source not found")
	ErrUnknownColumn     = errors.New("column not present in table")
)

// IngestError reports a table that could not be loaded or described.
// Messages carry the source label and structural detail only, never cell values.
type IngestError struct {
	Op     string // load, extract
	Source string
	Err    error
}

func (e *IngestError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("ingest %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ingest %s %s: %v", e.Op, e.Source, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

func newError(op, source string, reason error, detail string) *IngestError {
	err := reason
	if detail != "" {
		err = fmt.Errorf("%w: %s", reason, detail)
	}
	return &IngestError{Op: op, Source: source, Err: err}
}

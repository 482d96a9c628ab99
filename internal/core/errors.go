package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when the dataset file does not exist.
	ErrNotFound = errors.New("dataset not found")

	// ErrUnsupportedFormat is returned for dataset extensions other than .csv and .xlsx.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")

	// ErrRecordNotFound is returned when no record has the requested identifier.
	ErrRecordNotFound = errors.New("record not found")

	errEmptyFile = errors.New("empty file: no header row")
)

// SchemaError reports required columns absent from the dataset header.
// It aborts the whole load.
type SchemaError struct {
	Missing  []string
	Expected []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s (expected: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Expected, ", "))
}

// ReadError wraps an I/O or parse failure while reading the dataset.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read dataset %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// RowRejection describes one data row excluded from a load. Rejections are
// reported next to a successful result and never fail the load.
type RowRejection struct {
	Row    int    `json:"row"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

func (r RowRejection) Error() string {
	return fmt.Sprintf("row %d: %s", r.Row, r.Reason)
}

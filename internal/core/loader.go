package core

// loader.go reads a dataset file from disk into raw rows.
//
// The format is chosen by file extension:
//   - .csv:  comma-delimited text, parsed with encoding/csv
//   - .xlsx: spreadsheet, first sheet, read with excelize using raw cell values
//
// Headers are mapped to canonical column names (see CanonicalColumn) so the
// validator never deals with spelling differences. Loading has no side
// effects beyond reading the file, and nothing is cached here.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Format is a supported dataset file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat returns the dataset format implied by the file extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w %q: file must be .xlsx or .csv", ErrUnsupportedFormat, ext)
	}
}

// RawRow maps canonical column names to raw cell text. A missing key means
// the cell was absent from the row, which is different from an empty cell.
type RawRow map[string]string

// Table is the raw content of a dataset file.
type Table struct {
	Header      []string // canonical column names, in file order
	Rows        []RawRow // data rows in file order; Rows[0] is sheet line 2
	Fingerprint string   // xxhash64 of the file bytes
	Bytes       int64
}

// Source supplies dataset content and freshness information to the Cache.
type Source interface {
	// Path identifies the dataset; it is also the coalescing key for reloads.
	Path() string
	// Load reads and parses the whole dataset.
	Load(ctx context.Context) (*Table, error)
	// ModTime returns the current modification time of the dataset.
	ModTime() (time.Time, error)
}

// FileLoader loads a dataset file from the local filesystem.
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader for the dataset at path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// Path returns the dataset path.
func (l *FileLoader) Path() string { return l.path }

// ModTime stats the dataset file.
func (l *FileLoader) ModTime() (time.Time, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Exists reports whether the dataset file is present.
func (l *FileLoader) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// Load reads the dataset file. It fails with ErrNotFound when the file is
// absent, ErrUnsupportedFormat for an unknown extension and *ReadError for
// anything that goes wrong while reading or parsing.
func (l *FileLoader) Load(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load cancelled: %w", err)
	}

	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, l.path)
		}
		return nil, &ReadError{Path: l.path, Err: err}
	}
	defer f.Close()

	format, err := DetectFormat(l.path)
	if err != nil {
		return nil, err
	}

	fp := NewFingerprintReader(f)

	var records [][]string
	switch format {
	case FormatCSV:
		records, err = readCSV(fp)
	case FormatXLSX:
		records, err = readXLSX(fp)
	}
	if err != nil {
		return nil, &ReadError{Path: l.path, Err: err}
	}

	table, err := buildTable(records)
	if err != nil {
		return nil, &ReadError{Path: l.path, Err: err}
	}
	table.Fingerprint = fp.Sum()
	table.Bytes = fp.BytesRead
	return table, nil
}

// readCSV parses comma-delimited text. Rows may have fewer or more cells
// than the header.
func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(NewTextReader(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	return records, nil
}

// readXLSX reads the first sheet of a workbook with unformatted cell values,
// so numbers come back as "250000" rather than "R$ 250.000,00".
func readXLSX(r io.Reader) ([][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid spreadsheet: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("invalid spreadsheet: workbook has no sheets")
	}

	rows, err := wb.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("invalid spreadsheet: sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// buildTable turns parsed records into a header plus raw rows keyed by
// canonical column. When two header cells map to the same column the first
// one wins.
func buildTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, errEmptyFile
	}

	header := make([]string, len(records[0]))
	seen := make(map[string]bool, len(header))
	for i, cell := range records[0] {
		col := CanonicalColumn(cell)
		if col == "" || seen[col] {
			continue
		}
		seen[col] = true
		header[i] = col
	}

	table := &Table{Rows: make([]RawRow, 0, len(records)-1)}
	for _, col := range header {
		if col != "" {
			table.Header = append(table.Header, col)
		}
	}

	for _, rec := range records[1:] {
		row := make(RawRow, len(header))
		for i, col := range header {
			if col == "" || i >= len(rec) {
				continue
			}
			row[col] = rec[i]
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

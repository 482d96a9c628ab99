package core

// writer.go produces dataset files for operators: the example dataset and
// CSV to spreadsheet conversion. The service itself never writes the
// dataset it serves.

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// sampleSheet is the sheet name used for generated workbooks.
const sampleSheet = "Sheet1"

// SampleHeader is the header of the example dataset, in the spelling
// operators use in their own sheets.
var SampleHeader = []string{"id", "tipo", "credito", "parcela", "entrada", "status", "administradora", "grupo"}

// SampleRows returns the example dataset rows.
func SampleRows() [][]any {
	return [][]any{
		{"COT001", "Imóvel", 250000.00, 120, 25000.00, "disponivel", "ABC Imóveis", "Grupo A"},
		{"COT002", "Imóvel", 300000.00, 180, 30000.00, "disponivel", "XYZ Crédito", "Grupo B"},
		{"COT003", "Imóvel", 180000.00, 84, 18000.00, "vendida", "ABC Imóveis", "Grupo A"},
		{"COT004", "Imóvel", 420000.00, 240, 42000.00, "disponivel", "Premium Consórcios", "Grupo C"},
		{"COT005", "Imóvel", 150000.00, 60, 15000.00, "disponivel", "ABC Imóveis", "Grupo A"},
		{"COT006", "Imóvel", 280000.00, 120, 28000.00, "vendida", "XYZ Crédito", "Grupo B"},
		{"COT007", "Veículo", 45000.00, 48, 4500.00, "disponivel", "AutoFlex", "Grupo D"},
		{"COT008", "Veículo", 65000.00, 60, 6500.00, "disponivel", "AutoFlex", "Grupo D"},
	}
}

// WriteSample writes the example dataset to path. The format follows the
// extension.
func WriteSample(path string) error {
	return WriteDataset(path, SampleHeader, SampleRows())
}

// WriteDataset writes header and rows to path as .xlsx or .csv. The file is
// written to a temporary name in the same directory and renamed into place,
// so a running server never observes a half-written dataset.
func WriteDataset(path string, header []string, rows [][]any) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".carta-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	switch format {
	case FormatCSV:
		err = writeCSV(tmp, header, rows)
	case FormatXLSX:
		err = writeXLSX(tmp, header, rows)
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func writeCSV(f *os.File, header []string, rows [][]any) error {
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		if err := w.Write(cells); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(f *os.File, header []string, rows [][]any) error {
	wb := excelize.NewFile()
	defer wb.Close()

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := wb.SetSheetRow(sampleSheet, "A1", &headerRow); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(sampleSheet, cell, &row); err != nil {
			return err
		}
	}
	_, err := wb.WriteTo(f)
	return err
}

func formatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// ConvertResult summarizes a conversion.
type ConvertResult struct {
	Rows    int
	Columns []string
}

// ConvertCSV rewrites the CSV file at src as the dataset file dst (usually
// .xlsx). Header cells are copied as written; cells holding plain numbers
// are stored as numbers so spreadsheet tools treat them as such.
func ConvertCSV(ctx context.Context, src, dst string) (ConvertResult, error) {
	if err := ctx.Err(); err != nil {
		return ConvertResult{}, err
	}
	if format, err := DetectFormat(src); err != nil || format != FormatCSV {
		return ConvertResult{}, fmt.Errorf("%w %q: source must be .csv", ErrUnsupportedFormat, filepath.Ext(src))
	}

	f, err := os.Open(src)
	if err != nil {
		return ConvertResult{}, &ReadError{Path: src, Err: err}
	}
	defer f.Close()

	records, err := readCSV(f)
	if err != nil {
		return ConvertResult{}, &ReadError{Path: src, Err: err}
	}
	if len(records) == 0 {
		return ConvertResult{}, &ReadError{Path: src, Err: errEmptyFile}
	}

	header := records[0]
	rows := make([][]any, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]any, len(rec))
		for i, cell := range rec {
			if n, err := strconv.ParseFloat(cell, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
				row[i] = n
			} else {
				row[i] = cell
			}
		}
		rows = append(rows, row)
	}

	if err := WriteDataset(dst, header, rows); err != nil {
		return ConvertResult{}, err
	}
	return ConvertResult{Rows: len(rows), Columns: header}, nil
}

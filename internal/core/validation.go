package core

// validation.go turns raw rows into Records.
//
// Validation happens at two levels:
//  1. Schema: the header must contain every required column. A missing
//     column fails the whole load with *SchemaError.
//  2. Rows: each row is checked on its own. A bad row becomes a
//     RowRejection and the remaining rows are still processed.
//
// Row numbers in rejections follow the sheet: the header is row 1, so the
// first data row is row 2.

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// LoadResult is the outcome of validating a whole table.
type LoadResult struct {
	Records    []Record
	Rejections []RowRejection
	TotalRows  int // data rows read, including skipped ones
	Skipped    int // blank-identifier rows dropped without a rejection
}

var (
	structOnce     sync.Once
	structValidate *validator.Validate
)

// recordValidator returns the shared struct validator, reporting fields by
// their json names.
func recordValidator() *validator.Validate {
	structOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		structValidate = v
	})
	return structValidate
}

// CheckSchema verifies that every required column is present in header.
// Both lists hold canonical names.
func CheckSchema(header, required []string) error {
	var missing []string
	for _, col := range required {
		if !slices.Contains(header, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return &SchemaError{Missing: missing, Expected: slices.Clone(required)}
	}
	return nil
}

// ValidateRows checks the schema of table once and then validates every row
// in order. An empty Records slice with a nil error is a valid outcome.
func ValidateRows(table *Table, required []string) (*LoadResult, error) {
	if len(required) == 0 {
		required = DefaultRequiredColumns
	}
	if err := CheckSchema(table.Header, required); err != nil {
		return nil, err
	}

	v := NewRowValidator()
	result := &LoadResult{
		Records:   make([]Record, 0, len(table.Rows)),
		TotalRows: len(table.Rows),
	}

	for i, row := range table.Rows {
		rec, skipped, rej := v.ValidateRow(i+2, row)
		switch {
		case skipped:
			result.Skipped++
		case rej != nil:
			result.Rejections = append(result.Rejections, *rej)
		default:
			result.Records = append(result.Records, rec)
		}
	}

	return result, nil
}

// RowValidator validates the rows of one load. It remembers identifiers it
// has accepted, so a validator must not be reused across loads.
type RowValidator struct {
	seen map[string]int // identifier -> row that introduced it
}

// NewRowValidator creates a validator for a single load.
func NewRowValidator() *RowValidator {
	return &RowValidator{seen: make(map[string]int)}
}

// ValidateRow validates one raw row. line is the sheet row number used in
// diagnostics. Exactly one of the outcomes applies: skipped is true for a
// blank spacer row, rej is non-nil for a rejected row, otherwise rec holds
// the constructed Record.
func (v *RowValidator) ValidateRow(line int, row RawRow) (rec Record, skipped bool, rej *RowRejection) {
	rawID, ok := row[ColIdentifier]
	if !ok || rawID == "" {
		return Record{}, true, nil
	}

	reject := func(id, format string, args ...any) (Record, bool, *RowRejection) {
		return Record{}, false, &RowRejection{Row: line, ID: id, Reason: fmt.Sprintf(format, args...)}
	}

	id := strings.TrimSpace(rawID)
	if id == "" {
		return reject("", "empty identifier")
	}

	rawStatus := row[ColStatus]
	if rawStatus == "" {
		return reject(id, "missing status")
	}
	status, ok := ParseStatus(rawStatus)
	if !ok {
		shown := strings.TrimSpace(rawStatus)
		if shown == "" {
			shown = rawStatus
		}
		return reject(id, "invalid status '%s'", shown)
	}

	credit, ok := ParseNumber(row[ColCredit])
	if !ok || credit < 0 {
		return reject(id, "invalid numeric field '%s'", ColCredit)
	}
	installments, ok := ParseCount(row[ColInstallments])
	if !ok {
		if n, isNum := ParseNumber(row[ColInstallments]); isNum && n > MaxCount {
			return reject(id, "numeric field '%s' out of range (max %d)", ColInstallments, MaxCount)
		}
		return reject(id, "invalid numeric field '%s'", ColInstallments)
	}
	if installments < 0 {
		return reject(id, "invalid numeric field '%s'", ColInstallments)
	}
	downPayment, ok := ParseNumber(row[ColDownPayment])
	if !ok || downPayment < 0 {
		return reject(id, "invalid numeric field '%s'", ColDownPayment)
	}

	if first, dup := v.seen[id]; dup {
		return reject(id, "duplicate identifier '%s' (first seen at row %d)", id, first)
	}

	rec = Record{
		ID:           id,
		Category:     strings.TrimSpace(row[ColCategory]),
		Credit:       credit,
		Installments: installments,
		DownPayment:  downPayment,
		Status:       status,
		Organization: strings.TrimSpace(row[ColOrganization]),
		Group:        strings.TrimSpace(row[ColGroup]),
	}

	if err := recordValidator().Struct(rec); err != nil {
		return reject(id, "invalid record: %s", describeValidation(err))
	}

	v.seen[id] = line
	return rec, false, nil
}

// describeValidation renders validator errors as "field (tag)" pairs.
func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}

package core

// convert.go turns raw spreadsheet cells into typed values.
//
// Cells arrive from two very different sources: CSV text typed by hand and
// raw xlsx values. The helpers here accept both:
//   - Currency symbols (R$, $, €, £) and thousands separators in numbers
//   - Decimal comma ("1.234,56") as well as decimal point ("1,234.56")
//   - Accounting negatives "(123.45)"
//   - Excel formula prefixes (="value") and stray quotes

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// numericRegex validates that a string is a plain number after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// thousandsComma matches "1,234" or "12,345,678" where the comma can only be
// a grouping separator.
var thousandsComma = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+$`)

// foldPool holds transformer chains; a chain is stateful and must not be
// shared between goroutines while in use.
var foldPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFD,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		)
	},
}

// foldKey trims s, case folds it and strips diacritics, so "Disponível",
// " DISPONIVEL " and "disponivel" compare equal.
func foldKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	tr := foldPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	foldPool.Put(tr)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, the Excel formula prefix (="...") and quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// ParseNumber parses a numeric cell. It returns false for empty input,
// malformed numbers, NaN and infinities.
func ParseNumber(s string) (float64, bool) {
	s = CleanCell(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, sym := range []string{"R$", "$", "\u20ac", "\u00a3", "\u00a0", " "} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = normalizeSeparators(s)

	if negative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// normalizeSeparators rewrites grouping and decimal separators so the result
// uses '.' as the only decimal mark and no grouping.
func normalizeSeparators(s string) string {
	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")

	switch {
	case comma < 0:
		return s
	case dot > comma:
		// 1,234.56
		return strings.ReplaceAll(s, ",", "")
	case dot >= 0:
		// 1.234,56
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case thousandsComma.MatchString(s):
		return strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1:
		// 12,5
		return strings.Replace(s, ",", ".", 1)
	default:
		return s
	}
}

// MaxCount is the largest value ParseCount accepts.
const MaxCount = math.MaxInt32

// ParseCount parses an integer count cell, truncating any fractional part
// ("60.0" and "60.9" both give 60). Values beyond ±MaxCount fail.
func ParseCount(s string) (int, bool) {
	f, ok := ParseNumber(s)
	if !ok {
		return 0, false
	}
	t := math.Trunc(f)
	if t > MaxCount || t < -MaxCount {
		return 0, false
	}
	return int(t), true
}

package core

import (
	"slices"
	"testing"
)

// ----------------------------------------------------------------------------
// ParseNumber Tests
// ----------------------------------------------------------------------------

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
		want   float64
	}{
		// Valid: Basic numbers
		{name: "positive integer", input: "123", wantOK: true, want: 123},
		{name: "zero", input: "0", wantOK: true, want: 0},
		{name: "negative integer", input: "-456", wantOK: true, want: -456},
		{name: "decimal number", input: "123.45", wantOK: true, want: 123.45},
		{name: "leading decimal point", input: ".99", wantOK: true, want: 0.99},
		{name: "scientific notation", input: "1e3", wantOK: true, want: 1000},
		{name: "raw xlsx value", input: "250000", wantOK: true, want: 250000},

		// Valid: Currency and separators
		{name: "real with decimal comma", input: "R$ 250.000,00", wantOK: true, want: 250000},
		{name: "dollar with thousands comma", input: "$1,234.56", wantOK: true, want: 1234.56},
		{name: "thousands comma only", input: "1,234", wantOK: true, want: 1234},
		{name: "many thousands groups", input: "12,345,678", wantOK: true, want: 12345678},
		{name: "single decimal comma", input: "12,5", wantOK: true, want: 12.5},
		{name: "euro symbol", input: "€ 99", wantOK: true, want: 99},
		{name: "space as grouping", input: "1 234,56", wantOK: true, want: 1234.56},
		{name: "non-breaking space as grouping", input: "1\u00a0234,56", wantOK: true, want: 1234.56},

		// Valid: Spreadsheet artifacts
		{name: "accounting negative", input: "(123.45)", wantOK: true, want: -123.45},
		{name: "accounting negative with currency", input: "(R$ 10)", wantOK: true, want: -10},
		{name: "excel formula prefix", input: `="250000"`, wantOK: true, want: 250000},
		{name: "surrounding whitespace", input: "  42  ", wantOK: true, want: 42},

		// Invalid
		{name: "empty", input: "", wantOK: false},
		{name: "whitespace only", input: "   ", wantOK: false},
		{name: "letters", input: "abc", wantOK: false},
		{name: "NaN", input: "NaN", wantOK: false},
		{name: "infinity", input: "Inf", wantOK: false},
		{name: "ambiguous commas", input: "1,2,3", wantOK: false},
		{name: "two decimal points", input: "1.2.3", wantOK: false},
		{name: "trailing text", input: "100 reais", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseNumber(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		input  string
		wantOK bool
		want   int
	}{
		{input: "120", wantOK: true, want: 120},
		{input: "60.0", wantOK: true, want: 60},
		{input: "60.9", wantOK: true, want: 60},
		{input: "-5", wantOK: true, want: -5},
		{input: "abc", wantOK: false},
		{input: "", wantOK: false},
		{input: "3e10", wantOK: false},
		{input: "2147483647", wantOK: true, want: MaxCount},
		{input: "2147483648", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseCount(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseCount(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseCount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// CleanCell Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple string unchanged", input: "hello", want: "hello"},
		{name: "empty string", input: "", want: ""},
		{name: "surrounded by whitespace", input: "  hello  ", want: "hello"},
		{name: "Excel formula with quotes", input: `="COT001"`, want: "COT001"},
		{name: "bare equals sign", input: "=SUM(A1)", want: "SUM(A1)"},
		{name: "double quotes removed", input: `"hello"`, want: "hello"},
		{name: "leading single quote (Excel text prefix)", input: "'12345", want: "12345"},
		{name: "excel formula with whitespace", input: `  ="test"  `, want: "test"},
		{name: "only quotes", input: `""`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanCell(tt.input)
			if got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Column and status normalization Tests
// ----------------------------------------------------------------------------

func TestFoldKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "Disponível", want: "disponivel"},
		{input: " DISPONIVEL ", want: "disponivel"},
		{input: "Imóvel", want: "imovel"},
		{input: "Situação", want: "situacao"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := foldKey(tt.input); got != tt.want {
				t.Errorf("foldKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalColumn(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "ID", want: ColIdentifier},
		{input: "identifier", want: ColIdentifier},
		{input: "Tipo", want: ColCategory},
		{input: "Crédito", want: ColCredit},
		{input: "Valor Credito", want: ColCredit},
		{input: "parcela", want: ColInstallments},
		{input: "Down-Payment", want: ColDownPayment},
		{input: "entrada", want: ColDownPayment},
		{input: "Situação", want: ColStatus},
		{input: "Administradora", want: ColOrganization},
		{input: "  Grupo ", want: ColGroup},
		{input: `="id"`, want: ColIdentifier},
		{input: "Extra Col", want: "extra_col"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CanonicalColumn(tt.input); got != tt.want {
				t.Errorf("CanonicalColumn(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalColumns(t *testing.T) {
	got := CanonicalColumns([]string{"ID", "id", "Tipo", ""})
	want := []string{ColIdentifier, ColCategory}
	if !slices.Equal(got, want) {
		t.Errorf("CanonicalColumns() = %v, want %v", got, want)
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input  string
		want   Status
		wantOK bool
	}{
		{input: "available", want: StatusAvailable, wantOK: true},
		{input: " Available ", want: StatusAvailable, wantOK: true},
		{input: "disponivel", want: StatusAvailable, wantOK: true},
		{input: "Disponível", want: StatusAvailable, wantOK: true},
		{input: "sold", want: StatusSold, wantOK: true},
		{input: "VENDIDA", want: StatusSold, wantOK: true},
		{input: "vendido", want: StatusSold, wantOK: true},
		{input: "weird", wantOK: false},
		{input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseStatus(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseStatus(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeStatusFilter(t *testing.T) {
	tests := []struct {
		input string
		want  Status
	}{
		{input: "", want: ""},
		{input: "   ", want: ""},
		{input: "Disponível", want: StatusAvailable},
		{input: "SOLD", want: StatusSold},
		{input: "Weird", want: "weird"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeStatusFilter(tt.input); got != tt.want {
				t.Errorf("NormalizeStatusFilter(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

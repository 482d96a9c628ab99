package core

import (
	"slices"
	"strings"
)

// Canonical column names. Dataset headers are mapped onto these through
// CanonicalColumn before validation.
const (
	ColIdentifier   = "identifier"
	ColCategory     = "category"
	ColCredit       = "credit"
	ColInstallments = "installments"
	ColDownPayment  = "down_payment"
	ColStatus       = "status"
	ColOrganization = "organization"
	ColGroup        = "group"
)

// DefaultRequiredColumns is the column set every dataset must carry.
var DefaultRequiredColumns = []string{
	ColIdentifier,
	ColCategory,
	ColCredit,
	ColInstallments,
	ColDownPayment,
	ColStatus,
	ColOrganization,
	ColGroup,
}

// columnAliases maps folded header spellings to canonical names. The
// Portuguese headers are the ones operators have always used in the sheet.
var columnAliases = map[string]string{
	"id":             ColIdentifier,
	"identificador":  ColIdentifier,
	"codigo":         ColIdentifier,
	"tipo":           ColCategory,
	"categoria":      ColCategory,
	"credito":        ColCredit,
	"valor_credito":  ColCredit,
	"parcela":        ColInstallments,
	"parcelas":       ColInstallments,
	"entrada":        ColDownPayment,
	"downpayment":    ColDownPayment,
	"situacao":       ColStatus,
	"administradora": ColOrganization,
	"grupo":          ColGroup,
}

// statusAliases maps folded status spellings to the canonical enum.
var statusAliases = map[string]Status{
	"available":  StatusAvailable,
	"disponivel": StatusAvailable,
	"sold":       StatusSold,
	"vendida":    StatusSold,
	"vendido":    StatusSold,
}

// CanonicalColumn maps a raw header cell to its canonical column name.
// Unknown headers are returned folded (lower case, no accents, spaces and
// hyphens as underscores) so they can still be matched by configuration.
func CanonicalColumn(header string) string {
	key := foldKey(CleanCell(header))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if canon, ok := columnAliases[key]; ok {
		return canon
	}
	return key
}

// CanonicalColumns applies CanonicalColumn to every entry, dropping empties
// and duplicates while keeping order.
func CanonicalColumns(cols []string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		canon := CanonicalColumn(c)
		if canon == "" || slices.Contains(out, canon) {
			continue
		}
		out = append(out, canon)
	}
	return out
}

// ParseStatus resolves a raw status cell to the enum. The second result is
// false when the value is not a known status.
func ParseStatus(raw string) (Status, bool) {
	st, ok := statusAliases[foldKey(raw)]
	return st, ok
}

// NormalizeStatusFilter turns a user-supplied status filter into the value
// compared against Record.Status. Unknown values are folded but kept, so
// they simply match nothing.
func NormalizeStatusFilter(raw string) Status {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	if st, ok := ParseStatus(raw); ok {
		return st
	}
	return Status(foldKey(raw))
}

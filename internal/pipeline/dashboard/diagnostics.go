package dashboard

import (
	"github.com/andresuchdata/bizdash-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// Source names used in diagnostics and run metadata.
const (
	SourceSales     = "ventas"
	SourceExpenses  = "gastos"
	SourcePurchases = "compras"
	SourceInventory = "inventario"
)

// Diagnostic reasons.
const (
	ReasonBlankRow          = "blank_row"
	ReasonMissingSKU        = "missing_sku"
	ReasonInvalidDate       = "invalid_date"
	ReasonMissingDate       = "missing_date"
	ReasonInvalidCurrency   = "unparsable_currency"
	ReasonSourceUnavailable = "source_unavailable"
)

// Diagnostics collects per-row problems for one pipeline run. Problems are
// reported here instead of being returned as errors.
type Diagnostics struct {
	entries     []domain.Diagnostic
	skipped     map[string]int
	unavailable []string
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{skipped: make(map[string]int)}
}

func (d *Diagnostics) Add(source string, row int, field, reason, value string) {
	d.entries = append(d.entries, domain.Diagnostic{
		Source: source,
		Row:    row,
		Field:  field,
		Reason: reason,
		Value:  value,
	})
	log.Debug().
		Str("source", source).
		Int("row", row).
		Str("field", field).
		Str("reason", reason).
		Msg("dashboard: row diagnostic")
}

// Skip records a row that was dropped entirely.
func (d *Diagnostics) Skip(source string, row int, reason string) {
	d.skipped[source]++
	d.Add(source, row, "", reason, "")
}

// Unavailable records a source whose fetch failed and was treated as empty.
func (d *Diagnostics) Unavailable(source string, cause error) {
	d.unavailable = append(d.unavailable, source)
	value := ""
	if cause != nil {
		value = cause.Error()
	}
	d.entries = append(d.entries, domain.Diagnostic{
		Source: source,
		Reason: ReasonSourceUnavailable,
		Value:  value,
	})
}

func (d *Diagnostics) Entries() []domain.Diagnostic {
	out := make([]domain.Diagnostic, len(d.entries))
	copy(out, d.entries)
	return out
}

func (d *Diagnostics) Skipped() map[string]int {
	out := make(map[string]int, len(d.skipped))
	for k, v := range d.skipped {
		out[k] = v
	}
	return out
}

func (d *Diagnostics) UnavailableSources() []string {
	return append([]string(nil), d.unavailable...)
}

// Count returns the number of entries with the given reason.
func (d *Diagnostics) Count(reason string) int {
	n := 0
	for _, e := range d.entries {
		if e.Reason == reason {
			n++
		}
	}
	return n
}

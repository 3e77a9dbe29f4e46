package domain

import (
	"fmt"
	"time"
)

// NoDateKey groups records whose date could not be parsed.
const NoDateKey = "SIN_FECHA"

var shortMonthNames = [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"}

// MonthKey identifies a calendar month. The zero value means "no date".
type MonthKey struct {
	Year  int
	Month int
}

func (k MonthKey) IsZero() bool {
	return k.Year == 0 && k.Month == 0
}

// String renders the key as YYYY-MM.
func (k MonthKey) String() string {
	if k.IsZero() {
		return NoDateKey
	}
	return fmt.Sprintf("%04d-%02d", k.Year, k.Month)
}

// Label is the short Spanish label shown on charts, e.g. "ene 2024".
func (k MonthKey) Label() string {
	if k.IsZero() || k.Month < 1 || k.Month > 12 {
		return "Sin fecha"
	}
	return fmt.Sprintf("%s %d", shortMonthNames[k.Month-1], k.Year)
}

// Anchor is the first day of the month in UTC, used for ordering.
func (k MonthKey) Anchor() time.Time {
	if k.IsZero() {
		return time.Time{}
	}
	return time.Date(k.Year, time.Month(k.Month), 1, 0, 0, 0, 0, time.UTC)
}

func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

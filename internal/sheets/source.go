package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/bizdash-go/internal/config"
	"github.com/xuri/excelize/v2"
)

// RowSource returns the raw cells of an A1 range such as "VENTAS!A:R". The
// first returned row is the header.
type RowSource interface {
	FetchRange(ctx context.Context, a1 string) ([][]any, error)
}

// Verifier reports the title and sheet names of the backing spreadsheet.
type Verifier interface {
	Verify(ctx context.Context) (*SpreadsheetInfo, error)
}

type SpreadsheetInfo struct {
	ID     string   `json:"id,omitempty"`
	Title  string   `json:"title"`
	Sheets []string `json:"sheets"`
}

// A1Range is a parsed "SHEET!A:R" reference. FirstCol and LastCol are
// zero-based; LastCol is -1 when the range is unbounded.
type A1Range struct {
	Sheet    string
	FirstCol int
	LastCol  int
}

// ParseA1 accepts "SHEET", "SHEET!A:R" and "SHEET!A1:R500". Row bounds are
// ignored; only the column span limits the cells returned.
func ParseA1(a1 string) (A1Range, error) {
	a1 = strings.TrimSpace(a1)
	if a1 == "" {
		return A1Range{}, fmt.Errorf("empty range")
	}

	sheet, cols, found := strings.Cut(a1, "!")
	sheet = strings.Trim(strings.TrimSpace(sheet), "'")
	r := A1Range{Sheet: sheet, LastCol: -1}
	if !found || strings.TrimSpace(cols) == "" {
		return r, nil
	}

	from, to, ok := strings.Cut(cols, ":")
	if !ok {
		to = from
	}
	first, err := columnIndex(from)
	if err != nil {
		return A1Range{}, fmt.Errorf("range %q: %w", a1, err)
	}
	last, err := columnIndex(to)
	if err != nil {
		return A1Range{}, fmt.Errorf("range %q: %w", a1, err)
	}
	if last < first {
		return A1Range{}, fmt.Errorf("range %q: last column before first", a1)
	}
	r.FirstCol, r.LastCol = first, last
	return r, nil
}

// columnIndex converts "A", "R" or "R500" to a zero-based column index.
func columnIndex(ref string) (int, error) {
	letters := strings.TrimRightFunc(strings.TrimSpace(ref), func(r rune) bool {
		return r >= '0' && r <= '9'
	})
	n, err := excelize.ColumnNameToNumber(letters)
	if err != nil {
		return 0, err
	}
	return n - 1, nil
}

// Limit trims every row to the range's column span.
func (r A1Range) Limit(rows [][]any) [][]any {
	out := make([][]any, 0, len(rows))
	for _, row := range rows {
		if r.FirstCol >= len(row) {
			out = append(out, []any{})
			continue
		}
		end := len(row)
		if r.LastCol >= 0 && r.LastCol+1 < end {
			end = r.LastCol + 1
		}
		out = append(out, row[r.FirstCol:end])
	}
	return out
}

// Backend is a row source that can also describe itself.
type Backend interface {
	RowSource
	Verifier
}

// Open returns the workbook at cfg.WorkbookPath when set, otherwise the
// Google Sheets client for cfg.SpreadsheetID.
func Open(ctx context.Context, cfg config.SheetsConfig) (Backend, error) {
	if path := strings.TrimSpace(cfg.WorkbookPath); path != "" {
		return OpenWorkbook(path)
	}
	return NewService(ctx, cfg)
}

// Name identifies the backing spreadsheet in cache keys and run metadata.
func Name(cfg config.SheetsConfig) string {
	if path := strings.TrimSpace(cfg.WorkbookPath); path != "" {
		return "file:" + path
	}
	return cfg.SpreadsheetID
}

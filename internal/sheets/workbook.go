package sheets

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

// Workbook serves ranges from a local Excel file laid out like the
// spreadsheet: one sheet per source, header on the first row.
type Workbook struct {
	mu   sync.Mutex
	file *excelize.File
	name string
}

func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &Workbook{file: f, name: path}, nil
}

// ReadWorkbook opens a workbook from a stream, e.g. a Drive export.
func ReadWorkbook(r io.Reader, name string) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook %s: %w", name, err)
	}
	return &Workbook{file: f, name: name}, nil
}

// NewWorkbookFromFile wraps an already open excelize file.
func NewWorkbookFromFile(f *excelize.File, name string) *Workbook {
	return &Workbook{file: f, name: name}
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) FetchRange(ctx context.Context, a1 string) ([][]any, error) {
	r, err := ParseA1(a1)
	if err != nil {
		return nil, err
	}
	sheet, err := w.resolveSheet(r.Sheet)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	rows, err := w.file.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", sheet, err)
		}
		row := make([]any, len(record))
		for i, cell := range record {
			row[i] = cell
		}
		out = append(out, row)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in %s: %w", sheet, err)
	}

	return r.Limit(trimTrailingEmpty(out)), nil
}

func (w *Workbook) Verify(ctx context.Context) (*SpreadsheetInfo, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return &SpreadsheetInfo{Title: w.name, Sheets: w.file.GetSheetList()}, nil
}

// resolveSheet matches sheet titles case-insensitively.
func (w *Workbook) resolveSheet(name string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.file.GetSheetList() {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found in %s", name, w.name)
}

// trimTrailingEmpty drops the empty rows excelize reports after the last
// populated row, matching what the Sheets API returns.
func trimTrailingEmpty(rows [][]any) [][]any {
	end := len(rows)
	for end > 0 && len(rows[end-1]) == 0 {
		end--
	}
	return rows[:end]
}

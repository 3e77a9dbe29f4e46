package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseA1(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    A1Range
		wantErr bool
	}{
		{"column span", "VENTAS!A:R", A1Range{Sheet: "VENTAS", FirstCol: 0, LastCol: 17}, false},
		{"sheet with spaces", "GASTOS OPERATIVOS!A:O", A1Range{Sheet: "GASTOS OPERATIVOS", FirstCol: 0, LastCol: 14}, false},
		{"quoted with rows", "'COMPRAS'!B2:T500", A1Range{Sheet: "COMPRAS", FirstCol: 1, LastCol: 19}, false},
		{"whole sheet", "INVENTARIO", A1Range{Sheet: "INVENTARIO", LastCol: -1}, false},
		{"single column", "VENTAS!C", A1Range{Sheet: "VENTAS", FirstCol: 2, LastCol: 2}, false},
		{"reversed", "VENTAS!R:A", A1Range{}, true},
		{"empty", "  ", A1Range{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseA1(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestA1Range_Limit(t *testing.T) {
	r := A1Range{Sheet: "X", FirstCol: 1, LastCol: 2}
	got := r.Limit([][]any{
		{"a", "b", "c", "d"},
		{"a", "b"},
		{"a"},
	})
	assert.Equal(t, [][]any{{"b", "c"}, {"b"}, {}}, got)
}

func newTestWorkbook(t *testing.T) *Workbook {
	t.Helper()
	f := excelize.NewFile()
	_, err := f.NewSheet("VENTAS")
	require.NoError(t, err)

	require.NoError(t, f.SetSheetRow("VENTAS", "A1", &[]any{"ID", "FECHA", "SKU", "PRODUCTO"}))
	require.NoError(t, f.SetSheetRow("VENTAS", "A2", &[]any{"1", "01/10/2024", "POL-01", "Polo"}))
	require.NoError(t, f.SetSheetRow("VENTAS", "A3", &[]any{"2", "01/12/2024", "POL-02", "Gorra"}))

	wb := NewWorkbookFromFile(f, "test.xlsx")
	t.Cleanup(func() { _ = wb.Close() })
	return wb
}

func TestWorkbook_FetchRange(t *testing.T) {
	wb := newTestWorkbook(t)

	rows, err := wb.FetchRange(context.Background(), "ventas!B:C")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []any{"FECHA", "SKU"}, rows[0])
	assert.Equal(t, []any{"01/12/2024", "POL-02"}, rows[2])

	_, err = wb.FetchRange(context.Background(), "COMPRAS!A:T")
	assert.Error(t, err)

	info, err := wb.Verify(context.Background())
	require.NoError(t, err)
	assert.Contains(t, info.Sheets, "VENTAS")
}

type fakeSource struct {
	rows [][]any
	err  error
	got  string
}

func (f *fakeSource) FetchRange(_ context.Context, a1 string) ([][]any, error) {
	f.got = a1
	return f.rows, f.err
}

type fakeVerifier struct{}

func (fakeVerifier) Verify(context.Context) (*SpreadsheetInfo, error) {
	return &SpreadsheetInfo{Title: "Negocio", Sheets: []string{"VENTAS"}}, nil
}

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandler_Range(t *testing.T) {
	src := &fakeSource{rows: [][]any{{"FECHA"}, {"01/10/2024"}}}
	h := NewHandler(src, fakeVerifier{})

	rec := serve(h, "/api/sheets/range?sheet=VENTAS&range=A:R")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "VENTAS!A:R", src.got)

	var body struct {
		Range string  `json:"range"`
		Count int     `json:"count"`
		Rows  [][]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)

	assert.Equal(t, http.StatusBadRequest, serve(h, "/api/sheets/range").Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, "/api/sheets/range?range=VENTAS!R:A").Code)

	src.err = errors.New("quota exceeded")
	assert.Equal(t, http.StatusBadGateway, serve(h, "/api/sheets/range?range=VENTAS").Code)
}

func TestHandler_Verify(t *testing.T) {
	rec := serve(NewHandler(&fakeSource{}, fakeVerifier{}), "/api/sheets/verify")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Negocio")

	rec = serve(NewHandler(&fakeSource{}, nil), "/api/sheets/verify")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

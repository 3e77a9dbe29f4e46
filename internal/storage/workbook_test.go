package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresuchdata/bizdash-go/internal/sheets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type memStore struct {
	objects map[string][]byte
}

func (m *memStore) ListObjects(_ context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for k, v := range m.objects {
		out = append(out, ObjectInfo{Key: k, Size: int64(len(v))})
	}
	return out, nil
}

func (m *memStore) DownloadObject(_ context.Context, key, destPath string) error {
	data, ok := m.objects[key]
	if !ok {
		return fmt.Errorf("object %s not found", key)
	}
	return os.WriteFile(destPath, data, 0o644)
}

func (m *memStore) UploadObject(_ context.Context, key string, data []byte) error {
	m.objects[key] = data
	return nil
}

func snapshotBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("VENTAS")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("VENTAS", "A1", &[]any{"ID", "FECHA"}))
	require.NoError(t, f.SetSheetRow("VENTAS", "A2", &[]any{"1", "03/05/2024"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestFetchWorkbook(t *testing.T) {
	store := &memStore{objects: map[string][]byte{}}
	require.NoError(t, store.UploadObject(context.Background(), "snapshots/negocio.xlsx", snapshotBytes(t)))

	dir := t.TempDir()
	path, err := FetchWorkbook(context.Background(), store, "snapshots/negocio.xlsx", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "negocio.xlsx"), path)

	wb, err := sheets.OpenWorkbook(path)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.FetchRange(context.Background(), "VENTAS!A:B")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{"1", "03/05/2024"}, rows[1])
}

func TestFetchWorkbook_Errors(t *testing.T) {
	store := &memStore{objects: map[string][]byte{"reports/a.json": []byte("{}")}}

	tests := []struct {
		name string
		key  string
	}{
		{"empty key", " "},
		{"not a workbook", "reports/a.json"},
		{"missing object", "snapshots/missing.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FetchWorkbook(context.Background(), store, tt.key, t.TempDir())
			assert.Error(t, err)
		})
	}
}

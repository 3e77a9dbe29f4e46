package sheets

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/andresuchdata/bizdash-go/internal/config"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// XLSXMimeType is the export format requested from Drive.
const XLSXMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Exporter downloads a spreadsheet as an Excel workbook through the Drive
// API, so a snapshot can be computed offline or archived.
type Exporter struct {
	srv *drive.Service
}

func NewExporter(ctx context.Context, cfg config.SheetsConfig) (*Exporter, error) {
	credentials, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	jwt, err := google.JWTConfigFromJSON(credentials, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account credentials: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive client: %w", err)
	}
	return &Exporter{srv: srv}, nil
}

// ExportXLSX writes the spreadsheet as .xlsx to w.
func (e *Exporter) ExportXLSX(ctx context.Context, fileID string, w io.Writer) error {
	resp, err := e.srv.Files.Export(fileID, XLSXMimeType).Context(ctx).Download()
	if err != nil {
		return fmt.Errorf("unable to export spreadsheet %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("unable to read export of %s: %w", fileID, err)
	}
	return nil
}

// Snapshot exports the spreadsheet and opens it as a Workbook.
func (e *Exporter) Snapshot(ctx context.Context, fileID string) (*Workbook, []byte, error) {
	var buf bytes.Buffer
	if err := e.ExportXLSX(ctx, fileID, &buf); err != nil {
		return nil, nil, err
	}
	raw := buf.Bytes()
	wb, err := ReadWorkbook(bytes.NewReader(raw), fileID)
	if err != nil {
		return nil, nil, err
	}
	return wb, raw, nil
}

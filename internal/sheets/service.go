package sheets

import (
	"context"
	"fmt"
	"os"

	"github.com/andresuchdata/bizdash-go/internal/config"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Service reads ranges from one Google spreadsheet with a service account.
type Service struct {
	srv           *sheetsapi.Service
	spreadsheetID string
}

// NewService builds a read-only client from the inline credentials JSON or,
// when that is empty, from the credentials file.
func NewService(ctx context.Context, cfg config.SheetsConfig) (*Service, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	credentials, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	jwt, err := google.JWTConfigFromJSON(credentials, sheetsapi.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account credentials: %w", err)
	}

	srv, err := sheetsapi.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets client: %w", err)
	}

	return &Service{srv: srv, spreadsheetID: cfg.SpreadsheetID}, nil
}

func loadCredentials(cfg config.SheetsConfig) ([]byte, error) {
	if cfg.CredentialsJSON != "" {
		return []byte(cfg.CredentialsJSON), nil
	}
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("google credentials are not configured")
	}
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file %s: %w", cfg.CredentialsFile, err)
	}
	return data, nil
}

func (s *Service) FetchRange(ctx context.Context, a1 string) ([][]any, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, a1).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch range %s: %w", a1, err)
	}

	rows := make([][]any, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = row
	}
	log.Debug().Str("range", a1).Int("rows", len(rows)).Msg("sheets: range fetched")
	return rows, nil
}

func (s *Service) Verify(ctx context.Context) (*SpreadsheetInfo, error) {
	resp, err := s.srv.Spreadsheets.Get(s.spreadsheetID).
		Fields("properties.title", "sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("verify spreadsheet %s: %w", s.spreadsheetID, err)
	}

	info := &SpreadsheetInfo{ID: s.spreadsheetID, Sheets: []string{}}
	if resp.Properties != nil {
		info.Title = resp.Properties.Title
	}
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			info.Sheets = append(info.Sheets, sh.Properties.Title)
		}
	}
	return info, nil
}

// Package google reads the transaction collection from a Google Sheets tab.
//
// The sheet is the source of truth and is never written. Its first row holds
// the headers ID, Type, Name, Amount, Category and Date (case-insensitive, any
// order); every following non-blank row is one transaction. Get serializes the
// rows to the same JSON array the other backends store, so the dashboard reads
// every backend the same way.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gofinances/internal/dashboard"
	applog "gofinances/internal/log"
	"gofinances/internal/storage"
)

var _ storage.Reader = (*Store)(nil)

// Credentials selects the service account; JSON wins over File.
type Credentials struct {
	JSON string
	File string
}

type Store struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	key           string
	logger        *applog.Logger
}

// New creates a Store serving key from sheetName using service account
// credentials.
func New(ctx context.Context, spreadsheetID, sheetName, key string, creds Credentials, logger *applog.Logger) (*Store, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentSheets)

	svc, err := newSheetsService(ctx, creds, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Store{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		key:           key,
		logger:        logger,
	}, nil
}

func newSheetsService(ctx context.Context, creds Credentials, logger *applog.Logger) (*gsheet.Service, error) {
	credentialsJSON := []byte(strings.TrimSpace(creds.JSON))
	if len(credentialsJSON) == 0 {
		file := strings.TrimSpace(creds.File)
		if file == "" {
			file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
		}
		if file == "" {
			return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
		}
		var err error
		if credentialsJSON, err = os.ReadFile(file); err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		logger.InfoContext(ctx, "Read credentials file", "path", file, "size", len(credentialsJSON))
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Get returns the sheet rows as a JSON array. A missing or empty sheet is
// reported as not found.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if key != s.key {
		return "", false, nil
	}
	if s.svc == nil {
		return "", false, errors.New("sheets service not initialized")
	}

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName+"!A:F").
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return "", false, fmt.Errorf("read sheet %q: %w", s.sheetName, err)
	}

	records, err := parseTransactions(resp.Values)
	if err != nil {
		return "", false, err
	}
	if len(records) == 0 {
		return "", false, nil
	}
	raw, err := dashboard.Encode(records)
	if err != nil {
		return "", false, err
	}
	s.logger.DebugContext(ctx, "Read transactions sheet",
		applog.FieldOperation, applog.OpRead,
		applog.FieldTxCount, len(records),
		"sheet", s.sheetName)
	return raw, true, nil
}

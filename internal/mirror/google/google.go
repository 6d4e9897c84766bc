// Package google writes ledger entries to a Google Sheets
// spreadsheet, one appended row per record mutation.
package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"contas/internal/mirror"
)

// Config selects the target spreadsheet and the service account
// credentials. When both credential fields are empty, application
// default credentials apply.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ledgerSheet   string
}

var _ mirror.LedgerWriter = (*Client)(nil)

func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheet := cfg.SheetName
	if sheet == "" {
		sheet = "Ledger"
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		ledgerSheet:   fmt.Sprintf("%d %s", time.Now().Year(), sheet),
	}, nil
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	switch {
	case cfg.CredentialsJSON != "":
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON([]byte(cfg.CredentialsJSON)),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	case cfg.CredentialsFile != "":
		return gsheet.NewService(ctx,
			goption.WithCredentialsFile(cfg.CredentialsFile),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	default:
		// Application default credentials.
		return gsheet.NewService(ctx, goption.WithScopes(gsheet.SpreadsheetsScope))
	}
}

// Append writes one ledger row and returns the updated range reference.
func (c *Client) Append(ctx context.Context, e mirror.Entry) (string, error) {
	row := []any{
		e.Timestamp.Format(time.RFC3339),
		e.Entity,
		e.Action,
		e.ID,
		e.UserID,
		e.Description,
		e.Amount,
		e.Status,
		e.Month,
		e.Year,
	}

	vr := &gsheet.ValueRange{Values: [][]any{row}}
	resp, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.ledgerSheet+"!A:J", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append ledger row: %w", err)
	}
	if resp.Updates == nil {
		return "", nil
	}
	return resp.Updates.UpdatedRange, nil
}

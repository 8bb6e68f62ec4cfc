package sheetsclient

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// retryDelay is the pause before the single retry of a failed call
const retryDelay = 2 * time.Second

// Scopes required for roster reads and cell-level writes
var scopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive",
}

// Client wraps the Google Sheets API for the roster spreadsheet.
// Construction requires the service-account credentials file; code paths
// that never touch the spreadsheet should simply not construct a Client.
type Client struct {
	service       *sheets.Service
	spreadsheetID string
	timeout       time.Duration
}

// NewClient creates a Sheets client from a service-account credentials file.
// A missing credentials file is a constructor error, fatal only to callers
// that actually need the spreadsheet.
func NewClient(ctx context.Context, credentialsPath, spreadsheetID string, timeout time.Duration) (*Client, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", credentialsPath, err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	service, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &Client{
		service:       service,
		spreadsheetID: spreadsheetID,
		timeout:       timeout,
	}, nil
}

// Service returns the underlying sheets service for direct API access
func (c *Client) Service() *sheets.Service {
	return c.service
}

// withRetry runs op with a per-attempt timeout and a single retry for
// transient failures. The spreadsheet service occasionally drops a request;
// indefinite blocking here would stall the user's whole conversation.
func (c *Client) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return op(attemptCtx)
	}

	err := attempt()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return err
	case <-time.After(retryDelay):
	}
	return attempt()
}

// getValues reads all values from a range
func (c *Client) getValues(ctx context.Context, readRange string) ([][]interface{}, error) {
	var values [][]interface{}
	err := c.withRetry(ctx, func(ctx context.Context) error {
		resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, readRange).Context(ctx).Do()
		if err != nil {
			return err
		}
		values = resp.Values
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get values for %s: %w", readRange, err)
	}
	return values, nil
}

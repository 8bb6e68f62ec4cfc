package sheetsclient

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"
)

// Tab identifies one worksheet of the roster spreadsheet
type Tab struct {
	Title   string
	SheetID int64
}

// FindMonthTab locates the worksheet for a month label, tolerating the
// naming drift of hand-managed tabs: exact upper-case match, exact match,
// case-insensitive substring, then a few normalized alternates. Failure
// lists the available tabs so the operator can see what exists.
func (c *Client) FindMonthTab(ctx context.Context, label string) (*Tab, error) {
	var spreadsheet *sheets.Spreadsheet
	err := c.withRetry(ctx, func(ctx context.Context) error {
		var err error
		spreadsheet, err = c.service.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet metadata: %w", err)
	}

	byTitle := make(map[string]*Tab, len(spreadsheet.Sheets))
	var titles []string
	for _, sheet := range spreadsheet.Sheets {
		tab := &Tab{Title: sheet.Properties.Title, SheetID: sheet.Properties.SheetId}
		byTitle[sheet.Properties.Title] = tab
		titles = append(titles, sheet.Properties.Title)
	}

	if tab, ok := byTitle[strings.ToUpper(label)]; ok {
		return tab, nil
	}
	if tab, ok := byTitle[label]; ok {
		return tab, nil
	}

	lowerLabel := strings.ToLower(label)
	for _, title := range titles {
		if strings.Contains(strings.ToLower(title), lowerLabel) {
			return byTitle[title], nil
		}
	}

	for _, alt := range alternateLabels(label) {
		if tab, ok := byTitle[alt]; ok {
			return tab, nil
		}
	}

	return nil, fmt.Errorf("sheet %q not found, available sheets: %s", label, strings.Join(titles, ", "))
}

// alternateLabels produces the normalized spellings seen in older tabs
func alternateLabels(label string) []string {
	alts := []string{
		strings.ReplaceAll(label, " ", ""),
	}
	if fields := strings.Fields(label); len(fields) >= 2 {
		if len(fields[1]) == 2 {
			alts = append(alts, fields[0]+" 20"+fields[1])
		}
		alts = append(alts, fields[0])
	}
	return alts
}

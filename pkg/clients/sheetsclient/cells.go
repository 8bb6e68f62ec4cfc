package sheetsclient

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/sheets/v4"
)

// Background colours keyed by point, matching the hand-maintained roster
var pointColors = map[string]*sheets.Color{
	"ДЕ": {Red: 0.3, Green: 0.5, Blue: 0.91},
	"УЯ": {Red: 0.91, Green: 0.18, Blue: 0},
}

var dayOffColor = &sheets.Color{Red: 0.85, Green: 0.85, Blue: 0.85}

// WriteShift writes a shift's arrival and departure times into a staff
// member's cell pair for a date, coloured by point. The date is a
// "2006-01-02" string; the month tab is resolved from it.
func (c *Client) WriteShift(ctx context.Context, staffID, date, startTime, endTime, point string) error {
	tab, row, col, err := c.locateCell(ctx, staffID, date)
	if err != nil {
		return err
	}

	color, ok := pointColors[point]
	if !ok {
		color = pointColors["ДЕ"]
	}

	requests := []*sheets.Request{
		{
			UnmergeCells: &sheets.UnmergeCellsRequest{
				Range: cellPairRange(tab.SheetID, row, col),
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: cellPairRange(tab.SheetID, row, col),
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						BackgroundColor: color,
						NumberFormat: &sheets.NumberFormat{
							Type:    "TIME",
							Pattern: "hh:mm",
						},
						TextFormat: &sheets.TextFormat{
							FontFamily: "Verdana",
							FontSize:   10,
							Italic:     true,
						},
					},
				},
				Fields: "userEnteredFormat(backgroundColor,numberFormat,textFormat)",
			},
		},
	}

	if err := c.batchUpdate(ctx, requests); err != nil {
		return fmt.Errorf("failed to format shift cells for %s on %s: %w", staffID, date, err)
	}

	err = c.batchUpdateValues(ctx, []*sheets.ValueRange{
		{
			Range:  cellA1(tab.Title, row, col),
			Values: [][]interface{}{{startTime}},
		},
		{
			Range:  cellA1(tab.Title, row, col+1),
			Values: [][]interface{}{{endTime}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write shift cells for %s on %s: %w", staffID, date, err)
	}
	return nil
}

// ClearShift merges a staff member's cell pair for a date and writes the
// day-off sentinel with its distinct styling
func (c *Client) ClearShift(ctx context.Context, staffID, date string) error {
	tab, row, col, err := c.locateCell(ctx, staffID, date)
	if err != nil {
		return err
	}

	requests := []*sheets.Request{
		{
			MergeCells: &sheets.MergeCellsRequest{
				Range:     cellPairRange(tab.SheetID, row, col),
				MergeType: "MERGE_ALL",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: cellPairRange(tab.SheetID, row, col),
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						BackgroundColor: dayOffColor,
						TextFormat: &sheets.TextFormat{
							FontFamily: "Verdana",
							FontSize:   10,
							Italic:     true,
						},
						HorizontalAlignment: "CENTER",
					},
				},
				Fields: "userEnteredFormat(backgroundColor,textFormat,horizontalAlignment)",
			},
		},
	}

	if err := c.batchUpdate(ctx, requests); err != nil {
		return fmt.Errorf("failed to format day-off cell for %s on %s: %w", staffID, date, err)
	}

	err = c.batchUpdateValues(ctx, []*sheets.ValueRange{
		{
			Range:  cellA1(tab.Title, row, col),
			Values: [][]interface{}{{DayOffMark}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write day-off cell for %s on %s: %w", staffID, date, err)
	}
	return nil
}

// locateCell resolves the month tab for a date and finds the staff
// member's arrival-cell coordinates in it
func (c *Client) locateCell(ctx context.Context, staffID, date string) (*Tab, int, int, error) {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("invalid shift date %q: %w", date, err)
	}

	tab, err := c.FindMonthTab(ctx, MonthLabel(parsed))
	if err != nil {
		return nil, 0, 0, err
	}

	grid, err := c.ReadMonthGrid(ctx, tab.Title)
	if err != nil {
		return nil, 0, 0, err
	}

	row, col, err := FindCellPosition(grid, staffID, parsed.Day())
	if err != nil {
		return nil, 0, 0, err
	}
	return tab, row, col, nil
}

func (c *Client) batchUpdate(ctx context.Context, requests []*sheets.Request) error {
	return c.withRetry(ctx, func(ctx context.Context) error {
		_, err := c.service.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: requests,
		}).Context(ctx).Do()
		return err
	})
}

func (c *Client) batchUpdateValues(ctx context.Context, data []*sheets.ValueRange) error {
	return c.withRetry(ctx, func(ctx context.Context) error {
		_, err := c.service.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateValuesRequest{
			ValueInputOption: "USER_ENTERED",
			Data:             data,
		}).Context(ctx).Do()
		return err
	})
}

// cellPairRange covers the two columns of one day for one staff row
func cellPairRange(sheetID int64, row, col int) *sheets.GridRange {
	return &sheets.GridRange{
		SheetId:          sheetID,
		StartRowIndex:    int64(row),
		EndRowIndex:      int64(row + 1),
		StartColumnIndex: int64(col),
		EndColumnIndex:   int64(col + 2),
	}
}

// cellA1 converts zero-based coordinates to an A1 reference on a tab
func cellA1(tabTitle string, row, col int) string {
	return fmt.Sprintf("'%s'!%s%d", tabTitle, columnLetters(col), row+1)
}

func columnLetters(col int) string {
	letters := ""
	for col >= 0 {
		letters = string(rune('A'+col%26)) + letters
		col = col/26 - 1
	}
	return letters
}

package sheetsclient

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Fixed roster grid layout: row 1 carries day-of-month headers starting at
// column C, every date occupies two columns (arrival, departure), and staff
// rows start at row 4 with the external staff id in column A.
const (
	dayHeaderRow  = 0
	staffStartRow = 3
	dataStartCol  = 2
	colsPerDay    = 2
)

// Sentinel cell values marking a day off or vacation
const (
	DayOffMark   = "ВЫХ"
	VacationMark = "ОТПУСК"
)

// IsDayOff reports whether a cell value marks a day off or vacation
func IsDayOff(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed == "" || trimmed == DayOffMark || trimmed == VacationMark
}

// ReadMonthGrid reads a month tab as a string grid
func (c *Client) ReadMonthGrid(ctx context.Context, tabTitle string) ([][]string, error) {
	values, err := c.getValues(ctx, fmt.Sprintf("'%s'", tabTitle))
	if err != nil {
		return nil, err
	}

	grid := make([][]string, len(values))
	for i, row := range values {
		grid[i] = make([]string, len(row))
		for j, cell := range row {
			grid[i][j] = fmt.Sprintf("%v", cell)
		}
	}
	return grid, nil
}

// RosterCell is one (staff, day) pair parsed from the grid
type RosterCell struct {
	StaffID   string
	Day       int
	StartTime string
	EndTime   string
}

// ParseRosterGrid walks the fixed grid layout and yields every non-empty
// arrival/departure pair. Cells marking a day off or vacation are skipped,
// as are cells that do not look like clock values; time normalization is
// left to the caller.
func ParseRosterGrid(grid [][]string) []RosterCell {
	if len(grid) <= staffStartRow {
		return nil
	}
	header := grid[dayHeaderRow]

	var cells []RosterCell
	for rowIdx := staffStartRow; rowIdx < len(grid); rowIdx++ {
		row := grid[rowIdx]
		if len(row) == 0 {
			continue
		}
		staffID := strings.TrimSpace(row[0])
		if staffID == "" {
			continue
		}

		for col := dataStartCol; col < len(header); col += colsPerDay {
			day, ok := parseDayHeader(header[col])
			if !ok {
				continue
			}

			var start, end string
			if col < len(row) {
				start = strings.TrimSpace(row[col])
			}
			if col+1 < len(row) {
				end = strings.TrimSpace(row[col+1])
			}

			if IsDayOff(start) || IsDayOff(end) {
				continue
			}
			if !strings.Contains(start, ":") || !strings.Contains(end, ":") {
				continue
			}

			cells = append(cells, RosterCell{
				StaffID:   staffID,
				Day:       day,
				StartTime: start,
				EndTime:   end,
			})
		}
	}
	return cells
}

// FindCellPosition locates the (row, column) of a staff member's arrival
// cell for a date. The column is computed from the day of month the same
// way parsing does, rather than searched, so writes land exactly where
// reads expect them. Coordinates are zero-based.
func FindCellPosition(grid [][]string, staffID string, day int) (int, int, error) {
	target := strings.TrimSpace(staffID)
	rowIdx := -1
	for i := staffStartRow; i < len(grid); i++ {
		if len(grid[i]) > 0 && strings.TrimSpace(grid[i][0]) == target {
			rowIdx = i
			break
		}
	}
	if rowIdx == -1 {
		return 0, 0, fmt.Errorf("staff id %s not found in roster", staffID)
	}

	colIdx := dataStartCol + (day-1)*colsPerDay
	if len(grid) > dayHeaderRow && colIdx >= len(grid[dayHeaderRow]) {
		return 0, 0, fmt.Errorf("day %d is beyond the roster grid", day)
	}

	return rowIdx, colIdx, nil
}

func parseDayHeader(value string) (int, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	day, err := strconv.Atoi(trimmed)
	if err != nil || day < 1 || day > 31 {
		return 0, false
	}
	return day, true
}

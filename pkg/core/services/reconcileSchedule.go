package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/mkoshkina/baristabot/pkg/clients/sheetsclient"
	"github.com/mkoshkina/baristabot/pkg/core/schedule"
	"github.com/mkoshkina/baristabot/pkg/db"
)

// now is swapped out in tests
var now = time.Now

// RosterReader is the slice of the spreadsheet client reconciliation needs
type RosterReader interface {
	FindMonthTab(ctx context.Context, label string) (*sheetsclient.Tab, error)
	ReadMonthGrid(ctx context.Context, tabTitle string) ([][]string, error)
}

// ScheduleImportStore is the slice of the database reconciliation needs
type ScheduleImportStore interface {
	FindByTimes(ctx context.Context, startTime, endTime string) (*db.ShiftType, error)
	BulkUpsertShifts(ctx context.Context, candidates []db.ShiftCandidate) (int, error)
	RemoveStaleShifts(ctx context.Context, candidates []db.ShiftCandidate, fromDate, toDate string) (int, error)
}

// ClosureRule marks recurring days on which a point does not open. An
// empty Point applies the rule to every point.
type ClosureRule struct {
	Point string
	Rule  *rrule.RRule
}

// ClosureCalendar answers whether a point is closed on a given day
type ClosureCalendar struct {
	rules []ClosureRule
}

func NewClosureCalendar(rules []ClosureRule) *ClosureCalendar {
	return &ClosureCalendar{rules: rules}
}

// Closed reports whether any rule covers the day for the point. A nil
// calendar means nothing is ever closed.
func (c *ClosureCalendar) Closed(point string, day time.Time) bool {
	if c == nil {
		return false
	}
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Second)
	for _, r := range c.rules {
		if r.Point != "" && r.Point != point {
			continue
		}
		if len(r.Rule.Between(dayStart, dayEnd, true)) > 0 {
			return true
		}
	}
	return false
}

// ReconcileResult represents the outcome of a schedule import
type ReconcileResult struct {
	Tab      string
	Month    time.Month
	Year     int
	Parsed   int
	Imported int
	Created  int
	Removed  int
	Warnings []string
}

// ReconcileSchedule imports one month tab of the published roster into the
// database and removes rows the sheet no longer backs. Past-dated cells
// are ignored entirely, cells whose time span matches no catalog entry are
// reported as warnings, and rows created by swaps or manual edits are
// never removed. Running it twice against unchanged input is a no-op.
func ReconcileSchedule(ctx context.Context, roster RosterReader, store ScheduleImportStore, logger *zap.Logger, label string, closures *ClosureCalendar) (*ReconcileResult, error) {
	month, year, err := sheetsclient.ParseMonthLabel(label)
	if err != nil {
		return nil, fmt.Errorf("failed to parse month label %q: %w", label, err)
	}
	fromDate, toDate := sheetsclient.MonthBounds(month, year)

	logger.Debug("Reconciling schedule",
		zap.String("label", label),
		zap.String("from", fromDate),
		zap.String("to", toDate))

	tab, err := roster.FindMonthTab(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("failed to find month tab: %w", err)
	}
	grid, err := roster.ReadMonthGrid(ctx, tab.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to read tab %q: %w", tab.Title, err)
	}

	cells := sheetsclient.ParseRosterGrid(grid)
	logger.Debug("Parsed roster grid", zap.String("tab", tab.Title), zap.Int("cells", len(cells)))

	result := &ReconcileResult{Tab: tab.Title, Month: month, Year: year, Parsed: len(cells)}
	today := now().Format(schedule.DateFormat)

	candidates := make([]db.ShiftCandidate, 0, len(cells))
	for _, cell := range cells {
		day := time.Date(year, month, cell.Day, 0, 0, 0, 0, time.UTC)
		if day.Month() != month {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s day %d: no such day in %s %d", cell.StaffID, cell.Day, month, year))
			continue
		}
		date := day.Format(schedule.DateFormat)
		if date < today {
			// history is never rewritten from the sheet
			continue
		}

		start := schedule.NormalizeTime(cell.StartTime)
		end := schedule.NormalizeTime(cell.EndTime)
		shiftType, err := store.FindByTimes(ctx, start, end)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				warning := fmt.Sprintf("%s on %s: no shift type for %s-%s", cell.StaffID, date, start, end)
				logger.Warn("Roster cell matches no shift type",
					zap.String("staff_id", cell.StaffID),
					zap.String("date", date),
					zap.String("start", start),
					zap.String("end", end))
				result.Warnings = append(result.Warnings, warning)
				continue
			}
			return nil, fmt.Errorf("failed to look up shift type %s-%s: %w", start, end, err)
		}

		if closures.Closed(shiftType.Point, day) {
			logger.Debug("Skipping shift on closed day",
				zap.String("point", shiftType.Point),
				zap.String("date", date))
			continue
		}

		candidates = append(candidates, db.ShiftCandidate{
			Date:        date,
			StaffID:     cell.StaffID,
			ShiftTypeID: shiftType.ID,
			Source:      db.SourceSheets,
		})
	}
	result.Imported = len(candidates)

	created, err := store.BulkUpsertShifts(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert shifts: %w", err)
	}
	result.Created = created

	removed, err := store.RemoveStaleShifts(ctx, candidates, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to remove stale shifts: %w", err)
	}
	result.Removed = removed

	logger.Info("Schedule reconciled",
		zap.String("tab", tab.Title),
		zap.Int("parsed", result.Parsed),
		zap.Int("imported", result.Imported),
		zap.Int("created", result.Created),
		zap.Int("removed", result.Removed),
		zap.Int("warnings", len(result.Warnings)))

	return result, nil
}

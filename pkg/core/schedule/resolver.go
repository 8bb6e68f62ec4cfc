package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mkoshkina/baristabot/pkg/db"
)

// ErrNoCurrentShift is returned when no shift window contains "now"
var ErrNoCurrentShift = errors.New("no current shift")

// tolerance widens the shift window on both sides so staff arriving early
// or leaving late still resolve to their shift
const tolerance = time.Hour

// Resolution describes the shift a staff member is currently working
type Resolution struct {
	Shift     db.Shift
	ShiftType db.ShiftType
	Point     string
	Weekday   time.Weekday
}

// ShiftLister is the slice of the schedule store the resolver needs
type ShiftLister interface {
	ListShiftsByStaff(ctx context.Context, staffID, fromDate, toDate string) ([]db.Shift, error)
}

// TypeFinder is the slice of the catalog the resolver needs
type TypeFinder interface {
	FindShiftTypeByID(ctx context.Context, id int64) (*db.ShiftType, error)
}

// Resolve determines which of a staff member's shifts is active at "now",
// using a [start-1h, end+1h] tolerance window. A shift whose end time is
// not after its start time spans midnight and has its end advanced by 24h,
// so yesterday's overnight shift still resolves in the small hours.
// Returns ErrNoCurrentShift when nothing matches.
func Resolve(ctx context.Context, store ShiftLister, catalog TypeFinder, logger *zap.Logger, staffID string, now time.Time) (*Resolution, error) {
	// Yesterday is included so overnight shifts are considered.
	from := now.AddDate(0, 0, -1).Format(DateFormat)
	to := now.Format(DateFormat)

	shifts, err := store.ListShiftsByStaff(ctx, staffID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts for %s: %w", staffID, err)
	}

	var matches []Resolution
	for _, shift := range shifts {
		if !shift.Active {
			continue
		}

		shiftType, err := catalog.FindShiftTypeByID(ctx, shift.ShiftTypeID)
		if errors.Is(err, db.ErrNotFound) {
			logger.Warn("Shift references a deleted shift type",
				zap.Int64("shift_id", shift.ID),
				zap.Int64("shift_type_id", shift.ShiftTypeID))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load shift type %d: %w", shift.ShiftTypeID, err)
		}

		within, err := windowContains(shift.Date, shiftType.StartTime, shiftType.EndTime, now)
		if err != nil {
			logger.Warn("Skipping shift with unparseable times",
				zap.Int64("shift_id", shift.ID),
				zap.Error(err))
			continue
		}
		if within {
			matches = append(matches, Resolution{
				Shift:     shift,
				ShiftType: *shiftType,
				Point:     shiftType.Point,
				Weekday:   now.Weekday(),
			})
		}
	}

	if len(matches) == 0 {
		return nil, ErrNoCurrentShift
	}
	if len(matches) > 1 {
		// Double-booked staff member. Returning the first match mirrors
		// long-standing behavior; the anomaly is surfaced for operators.
		ids := make([]int64, len(matches))
		for i, m := range matches {
			ids[i] = m.Shift.ID
		}
		logger.Warn("Multiple shifts match the current time window, using the first",
			zap.String("staff_id", staffID),
			zap.Int64s("shift_ids", ids))
	}

	return &matches[0], nil
}

// windowContains reports whether now falls inside the tolerance window of a
// shift anchored at date. Bounds are inclusive.
func windowContains(date, startTime, endTime string, now time.Time) (bool, error) {
	anchor, err := time.ParseInLocation(DateFormat, date, now.Location())
	if err != nil {
		return false, fmt.Errorf("invalid shift date %q: %w", date, err)
	}

	startOffset, err := ParseClock(startTime)
	if err != nil {
		return false, err
	}
	endOffset, err := ParseClock(endTime)
	if err != nil {
		return false, err
	}

	start := anchor.Add(startOffset)
	end := anchor.Add(endOffset)
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}

	windowStart := start.Add(-tolerance)
	windowEnd := end.Add(tolerance)

	return !now.Before(windowStart) && !now.After(windowEnd), nil
}

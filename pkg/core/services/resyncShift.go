package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mkoshkina/baristabot/pkg/db"
)

// ResyncStore is the slice of the database a shift resync needs
type ResyncStore interface {
	GetShiftByID(ctx context.Context, id int64) (*db.Shift, error)
	FindShiftTypeByID(ctx context.Context, id int64) (*db.ShiftType, error)
}

// ShiftCellWriter pushes a single schedule cell to the spreadsheet
type ShiftCellWriter interface {
	WriteShift(ctx context.Context, staffID, date, startTime, endTime, point string) error
	ClearShift(ctx context.Context, staffID, date string) error
}

// ResyncResult represents the repair pushed for one shift
type ResyncResult struct {
	Shift     *db.Shift
	ShiftType *db.ShiftType
	Cleared   bool
}

// ResyncShift re-pushes a single database row to the spreadsheet. It is
// the manual repair for a degraded swap: the database won, so its row is
// written over whatever the cell currently holds. An inactive row clears
// the cell instead.
func ResyncShift(ctx context.Context, store ResyncStore, sheet ShiftCellWriter, logger *zap.Logger, shiftID int64) (*ResyncResult, error) {
	shift, err := store.GetShiftByID(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift %d: %w", shiftID, err)
	}
	shiftType, err := store.FindShiftTypeByID(ctx, shift.ShiftTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift type %d: %w", shift.ShiftTypeID, err)
	}

	if !shift.Active {
		if err := sheet.ClearShift(ctx, shift.StaffID, shift.Date); err != nil {
			return nil, fmt.Errorf("failed to clear cell for %s on %s: %w", shift.StaffID, shift.Date, err)
		}
		logger.Info("Cell cleared from database row",
			zap.Int64("shift_id", shift.ID),
			zap.String("staff_id", shift.StaffID),
			zap.String("date", shift.Date))
		return &ResyncResult{Shift: shift, ShiftType: shiftType, Cleared: true}, nil
	}

	if err := sheet.WriteShift(ctx, shift.StaffID, shift.Date, shiftType.StartTime, shiftType.EndTime, shiftType.Point); err != nil {
		return nil, fmt.Errorf("failed to write cell for %s on %s: %w", shift.StaffID, shift.Date, err)
	}
	logger.Info("Cell rewritten from database row",
		zap.Int64("shift_id", shift.ID),
		zap.String("staff_id", shift.StaffID),
		zap.String("date", shift.Date),
		zap.String("span", shiftType.StartTime+"-"+shiftType.EndTime))
	return &ResyncResult{Shift: shift, ShiftType: shiftType}, nil
}

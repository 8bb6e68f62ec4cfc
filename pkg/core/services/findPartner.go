package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mkoshkina/baristabot/pkg/db"
)

// PartnerStore is the slice of the database a partner lookup needs
type PartnerStore interface {
	FindPartner(ctx context.Context, date, point, category, excludingStaffID string) (*db.User, error)
}

// FindShiftPartner finds the colleague working the same point on the same
// date, preferring the same shift category. When nobody of the exact
// category works that day the hybrid pool is tried once: hybrid shifts
// span both the morning and evening windows, so their holders overlap
// either side.
func FindShiftPartner(ctx context.Context, store PartnerStore, logger *zap.Logger, date, point, category, excludingStaffID string) (*db.User, error) {
	partner, err := store.FindPartner(ctx, date, point, category, excludingStaffID)
	if err == nil {
		return partner, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up partner: %w", err)
	}

	if category == db.CategoryHybrid {
		return nil, db.ErrNotFound
	}

	logger.Debug("No exact-category partner, trying hybrid pool",
		zap.String("date", date),
		zap.String("point", point),
		zap.String("category", category))
	partner, err = store.FindPartner(ctx, date, point, db.CategoryHybrid, excludingStaffID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up hybrid partner: %w", err)
	}
	return partner, nil
}

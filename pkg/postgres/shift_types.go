package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mkoshkina/baristabot/pkg/db"
)

// FindByTimes looks up a shift type by its exact (start, end) pair.
// Both sides of the comparison must already be normalized to zero-padded
// HH:MM, otherwise the lookup silently misses.
func (d *DB) FindByTimes(ctx context.Context, startTime, endTime string) (*db.ShiftType, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, name, start_time, end_time, point, category, created_at
		FROM shift_types
		WHERE start_time = $1 AND end_time = $2
		ORDER BY point, start_time
		LIMIT 1
	`, startTime, endTime)

	return scanShiftType(row)
}

// FindShiftTypeByID retrieves a shift type by its id
func (d *DB) FindShiftTypeByID(ctx context.Context, id int64) (*db.ShiftType, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, name, start_time, end_time, point, category, created_at
		FROM shift_types
		WHERE id = $1
	`, id)

	return scanShiftType(row)
}

// ListShiftTypes retrieves the whole catalog ordered by point then start time
func (d *DB) ListShiftTypes(ctx context.Context) ([]db.ShiftType, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, start_time, end_time, point, category, created_at
		FROM shift_types
		ORDER BY point, start_time
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift types: %w", err)
	}
	defer rows.Close()

	var types []db.ShiftType
	for rows.Next() {
		var st db.ShiftType
		var createdAt time.Time
		if err := rows.Scan(&st.ID, &st.Name, &st.StartTime, &st.EndTime, &st.Point, &st.Category, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan shift type: %w", err)
		}
		st.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		types = append(types, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shift types: %w", err)
	}

	return types, nil
}

// CreateShiftType inserts a new shift type and returns its id
func (d *DB) CreateShiftType(ctx context.Context, st *db.ShiftType) (int64, error) {
	var id int64
	err := d.pool.QueryRow(ctx, `
		INSERT INTO shift_types (name, start_time, end_time, point, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, st.Name, st.StartTime, st.EndTime, st.Point, st.Category).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shift type: %w", err)
	}
	return id, nil
}

// UpdateShiftType overwrites the mutable fields of a shift type
func (d *DB) UpdateShiftType(ctx context.Context, id int64, st *db.ShiftType) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE shift_types
		SET name = $2, start_time = $3, end_time = $4, point = $5, category = $6
		WHERE id = $1
	`, id, st.Name, st.StartTime, st.EndTime, st.Point, st.Category)
	if err != nil {
		return fmt.Errorf("failed to update shift type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// DeleteShiftType hard-deletes a shift type. There is no cascade protection
// for schedule entries still referencing it; administrators are expected to
// use this only for types with no remaining shifts.
func (d *DB) DeleteShiftType(ctx context.Context, id int64) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM shift_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func scanShiftType(row pgx.Row) (*db.ShiftType, error) {
	var st db.ShiftType
	var createdAt time.Time
	err := row.Scan(&st.ID, &st.Name, &st.StartTime, &st.EndTime, &st.Point, &st.Category, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan shift type: %w", err)
	}
	st.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return &st, nil
}

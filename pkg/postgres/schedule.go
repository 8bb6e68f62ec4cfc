package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mkoshkina/baristabot/pkg/db"
)

const shiftColumns = `s.id, s.shift_date, s.staff_id, s.shift_type_id, s.source, s.version, s.active, s.created_at, s.updated_at`

const shiftColumnsBare = `id, shift_date, staff_id, shift_type_id, source, version, active, created_at, updated_at`

// CreateShift inserts a new schedule entry. Uniqueness of (date, staff) is
// not enforced here; callers check for an existing shift first.
func (d *DB) CreateShift(ctx context.Context, date, staffID string, shiftTypeID int64, source string) (*db.Shift, error) {
	if source == "" {
		source = db.SourceSheets
	}
	row := d.pool.QueryRow(ctx, `
		INSERT INTO schedule (shift_date, staff_id, shift_type_id, source)
		VALUES ($1, $2, $3, $4)
		RETURNING `+shiftColumnsBare, date, db.NormalizeStaffID(staffID), shiftTypeID, source)

	shift, err := scanShift(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert shift: %w", err)
	}
	return shift, nil
}

// GetShiftByID retrieves a single schedule entry
func (d *DB) GetShiftByID(ctx context.Context, id int64) (*db.Shift, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT `+shiftColumns+`
		FROM schedule s
		WHERE s.id = $1
	`, id)

	shift, err := scanShift(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	return shift, nil
}

// ListShiftsByStaff retrieves a staff member's shifts, optionally bounded by
// an inclusive date range, ordered by date then shift start time.
// Empty fromDate/toDate leave that bound open.
func (d *DB) ListShiftsByStaff(ctx context.Context, staffID, fromDate, toDate string) ([]db.Shift, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+shiftColumns+`
		FROM schedule s
		JOIN shift_types st ON st.id = s.shift_type_id
		WHERE s.staff_id = $1
		  AND (NULLIF($2, '')::date IS NULL OR s.shift_date >= NULLIF($2, '')::date)
		  AND (NULLIF($3, '')::date IS NULL OR s.shift_date <= NULLIF($3, '')::date)
		ORDER BY s.shift_date, st.start_time
	`, db.NormalizeStaffID(staffID), fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts by staff: %w", err)
	}
	defer rows.Close()

	return collectShifts(rows)
}

// ListShiftsByDateRange retrieves every shift in [fromDate, toDate] ordered
// by date then shift start time
func (d *DB) ListShiftsByDateRange(ctx context.Context, fromDate, toDate string) ([]db.Shift, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+shiftColumns+`
		FROM schedule s
		JOIN shift_types st ON st.id = s.shift_type_id
		WHERE s.shift_date >= $1::date AND s.shift_date <= $2::date
		ORDER BY s.shift_date, st.start_time
	`, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts by date range: %w", err)
	}
	defer rows.Close()

	return collectShifts(rows)
}

// ReassignShift changes a shift's assignee and bumps updated_at. Provenance
// and version are left alone; callers stamp those when appropriate.
func (d *DB) ReassignShift(ctx context.Context, id int64, newStaffID string) (*db.Shift, error) {
	row := d.pool.QueryRow(ctx, `
		UPDATE schedule s
		SET staff_id = $2, updated_at = NOW()
		WHERE s.id = $1
		RETURNING `+shiftColumns, id, db.NormalizeStaffID(newStaffID))

	shift, err := scanShift(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reassign shift: %w", err)
	}
	return shift, nil
}

// UpdateShift applies a partial update and bumps updated_at
func (d *DB) UpdateShift(ctx context.Context, id int64, upd db.ShiftUpdate) (*db.Shift, error) {
	if upd.StaffID != nil {
		normalized := db.NormalizeStaffID(*upd.StaffID)
		upd.StaffID = &normalized
	}
	row := d.pool.QueryRow(ctx, `
		UPDATE schedule s
		SET shift_date    = COALESCE($2::date, s.shift_date),
		    staff_id      = COALESCE($3, s.staff_id),
		    shift_type_id = COALESCE($4, s.shift_type_id),
		    source        = COALESCE($5, s.source),
		    version       = COALESCE($6, s.version),
		    active        = COALESCE($7, s.active),
		    updated_at    = NOW()
		WHERE s.id = $1
		RETURNING `+shiftColumns,
		id, upd.Date, upd.StaffID, upd.ShiftTypeID, upd.Source, upd.Version, upd.Active)

	shift, err := scanShift(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update shift: %w", err)
	}
	return shift, nil
}

// DeleteShiftByID hard-deletes a single schedule entry (admin corrections)
func (d *DB) DeleteShiftByID(ctx context.Context, id int64) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM schedule WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// DeleteRangeFutureOnly hard-deletes every shift in [fromDate, toDate],
// clamping fromDate to today so a bulk purge can never destroy past shifts.
func (d *DB) DeleteRangeFutureOnly(ctx context.Context, fromDate, toDate string) (int, error) {
	today := time.Now().Format("2006-01-02")
	if fromDate < today {
		fromDate = today
	}
	if toDate < fromDate {
		return 0, nil
	}

	tag, err := d.pool.Exec(ctx, `
		DELETE FROM schedule
		WHERE shift_date >= $1::date AND shift_date <= $2::date
	`, fromDate, toDate)
	if err != nil {
		return 0, fmt.Errorf("failed to delete shifts in range: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// BulkUpsertShifts applies a batch of parsed roster rows in one transaction.
// An existing row with the same (date, staff, shift type) key only gets its
// updated_at touched, which is what makes repeated imports of unchanged
// data produce zero net changes. Returns the number of rows inserted.
func (d *DB) BulkUpsertShifts(ctx context.Context, candidates []db.ShiftCandidate) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	created := 0
	for _, c := range candidates {
		staffID := db.NormalizeStaffID(c.StaffID)
		tag, err := tx.Exec(ctx, `
			UPDATE schedule
			SET updated_at = NOW()
			WHERE shift_date = $1::date AND staff_id = $2 AND shift_type_id = $3
		`, c.Date, staffID, c.ShiftTypeID)
		if err != nil {
			return 0, fmt.Errorf("failed to touch existing shift: %w", err)
		}
		if tag.RowsAffected() > 0 {
			continue
		}

		source := c.Source
		if source == "" {
			source = db.SourceSheets
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO schedule (shift_date, staff_id, shift_type_id, source)
			VALUES ($1, $2, $3, $4)
		`, c.Date, staffID, c.ShiftTypeID, source)
		if err != nil {
			return 0, fmt.Errorf("failed to insert shift: %w", err)
		}
		created++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return created, nil
}

// RemoveStaleShifts deletes rows in [fromDate, toDate] whose (date, staff,
// shift type) key is absent from candidates and whose provenance is
// 'sheets' or unset. Rows created by swaps or manual entry are never
// removed here, and fromDate is clamped to today so past rows survive any
// input.
func (d *DB) RemoveStaleShifts(ctx context.Context, candidates []db.ShiftCandidate, fromDate, toDate string) (int, error) {
	today := time.Now().Format("2006-01-02")
	if fromDate < today {
		fromDate = today
	}
	if toDate < fromDate {
		return 0, nil
	}

	keep := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		keep[candidateKey(c.Date, c.StaffID, c.ShiftTypeID)] = true
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, shift_date, staff_id, shift_type_id
		FROM schedule
		WHERE shift_date >= $1::date AND shift_date <= $2::date
		  AND (source = $3 OR source = '')
	`, fromDate, toDate, db.SourceSheets)
	if err != nil {
		return 0, fmt.Errorf("failed to query removable shifts: %w", err)
	}

	var staleIDs []int64
	for rows.Next() {
		var id, shiftTypeID int64
		var shiftDate time.Time
		var staffID string
		if err := rows.Scan(&id, &shiftDate, &staffID, &shiftTypeID); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan removable shift: %w", err)
		}
		if !keep[candidateKey(shiftDate.Format("2006-01-02"), staffID, shiftTypeID)] {
			staleIDs = append(staleIDs, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating removable shifts: %w", err)
	}

	if len(staleIDs) == 0 {
		return 0, nil
	}

	// Provenance is re-checked in the delete itself: a row stamped by a
	// swap between the select and the delete must survive.
	tag, err := tx.Exec(ctx, `
		DELETE FROM schedule
		WHERE id = ANY($1) AND (source = $2 OR source = '')
	`, staleIDs, db.SourceSheets)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale shifts: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ExchangeAssignees swaps the assignees of two shifts in one transaction,
// stamping both rows as swap-sourced and bumping their versions. Either
// both rows change or neither does.
func (d *DB) ExchangeAssignees(ctx context.Context, shiftAID int64, newStaffA string, shiftBID int64, newStaffB string) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, step := range []struct {
		shiftID int64
		staffID string
	}{
		{shiftAID, newStaffA},
		{shiftBID, newStaffB},
	} {
		tag, err := tx.Exec(ctx, `
			UPDATE schedule
			SET staff_id = $2, source = $3, version = version + 1, updated_at = NOW()
			WHERE id = $1
		`, step.shiftID, db.NormalizeStaffID(step.staffID), db.SourceSwap)
		if err != nil {
			return fmt.Errorf("failed to exchange assignee on shift %d: %w", step.shiftID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("shift %d: %w", step.shiftID, db.ErrNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit exchange: %w", err)
	}
	return nil
}

// FindPartner finds an active user holding a shift of exactly the given
// category at the given point on that date, excluding the requester.
// Category fallback is the caller's concern.
func (d *DB) FindPartner(ctx context.Context, date, point, category, excludingStaffID string) (*db.User, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT u.id, u.name, u.staff_id, COALESCE(u.chat_id, 0), COALESCE(u.handle, ''), u.role, u.active
		FROM schedule s
		JOIN shift_types st ON st.id = s.shift_type_id
		JOIN users u ON u.staff_id = s.staff_id
		WHERE s.shift_date = $1::date
		  AND st.point = $2
		  AND st.category = $3
		  AND s.staff_id <> $4
		  AND s.active
		  AND u.active
		ORDER BY st.start_time, u.name
		LIMIT 1
	`, date, point, category, db.NormalizeStaffID(excludingStaffID))

	var u db.User
	err := row.Scan(&u.ID, &u.Name, &u.StaffID, &u.ChatID, &u.Handle, &u.Role, &u.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan partner: %w", err)
	}
	return &u, nil
}

func candidateKey(date, staffID string, shiftTypeID int64) string {
	return fmt.Sprintf("%s|%s|%d", date, db.NormalizeStaffID(staffID), shiftTypeID)
}

func scanShift(row pgx.Row) (*db.Shift, error) {
	var s db.Shift
	var shiftDate, createdAt, updatedAt time.Time
	err := row.Scan(&s.ID, &shiftDate, &s.StaffID, &s.ShiftTypeID, &s.Source, &s.Version, &s.Active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	s.Date = shiftDate.Format("2006-01-02")
	s.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	s.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
	return &s, nil
}

func collectShifts(rows pgx.Rows) ([]db.Shift, error) {
	var shifts []db.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, *shift)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}
	return shifts, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mkoshkina/baristabot/pkg/db"
)

const userColumns = `id, name, COALESCE(staff_id, ''), COALESCE(chat_id, 0), COALESCE(handle, ''), role, active`

// GetUserByID retrieves a user by primary key
func (d *DB) GetUserByID(ctx context.Context, id int64) (*db.User, error) {
	return d.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetUserByStaffID retrieves a user by external personnel-system id
func (d *DB) GetUserByStaffID(ctx context.Context, staffID string) (*db.User, error) {
	return d.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE staff_id = $1`, db.NormalizeStaffID(staffID))
}

// GetUserByChatID retrieves a user by messaging-platform id
func (d *DB) GetUserByChatID(ctx context.Context, chatID int64) (*db.User, error) {
	return d.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE chat_id = $1`, chatID)
}

// GetUserByHandle retrieves a user by messaging-platform handle
func (d *DB) GetUserByHandle(ctx context.Context, handle string) (*db.User, error) {
	return d.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE handle = $1`, handle)
}

// CreateUser inserts a new user and returns its id
func (d *DB) CreateUser(ctx context.Context, u *db.User) (int64, error) {
	var staffID, handle *string
	var chatID *int64
	if s := db.NormalizeStaffID(u.StaffID); s != "" {
		staffID = &s
	}
	if u.Handle != "" {
		handle = &u.Handle
	}
	if u.ChatID != 0 {
		chatID = &u.ChatID
	}

	role := u.Role
	if role == "" {
		role = db.RoleStaff
	}

	var id int64
	err := d.pool.QueryRow(ctx, `
		INSERT INTO users (name, staff_id, chat_id, handle, role, active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING id
	`, u.Name, staffID, chatID, handle, role).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

// UpdateUser overwrites the mutable fields of a user
func (d *DB) UpdateUser(ctx context.Context, id int64, u *db.User) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE users
		SET name = $2, staff_id = $3, chat_id = $4, handle = $5, role = $6, active = $7, updated_at = NOW()
		WHERE id = $1
	`, id, u.Name, db.NormalizeStaffID(u.StaffID), u.ChatID, u.Handle, u.Role, u.Active)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// DeactivateUser soft-deletes a user
func (d *DB) DeactivateUser(ctx context.Context, id int64) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE users SET active = FALSE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// ListActiveUsers retrieves active users with a known staff id, optionally
// excluding one staff member (the swap requester)
func (d *DB) ListActiveUsers(ctx context.Context, excludingStaffID string) ([]db.User, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE active
		  AND staff_id IS NOT NULL AND staff_id <> ''
		  AND ($1 = '' OR staff_id <> $1)
		ORDER BY name
	`, db.NormalizeStaffID(excludingStaffID))
	if err != nil {
		return nil, fmt.Errorf("failed to query active users: %w", err)
	}
	defer rows.Close()

	var users []db.User
	for rows.Next() {
		var u db.User
		if err := rows.Scan(&u.ID, &u.Name, &u.StaffID, &u.ChatID, &u.Handle, &u.Role, &u.Active); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

func (d *DB) getUser(ctx context.Context, query string, arg any) (*db.User, error) {
	var u db.User
	err := d.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.StaffID, &u.ChatID, &u.Handle, &u.Role, &u.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

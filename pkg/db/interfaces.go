package db

import "context"

// ShiftTypeStore defines the interface for shift type catalog operations
type ShiftTypeStore interface {
	FindByTimes(ctx context.Context, startTime, endTime string) (*ShiftType, error)
	FindShiftTypeByID(ctx context.Context, id int64) (*ShiftType, error)
	ListShiftTypes(ctx context.Context) ([]ShiftType, error)
	CreateShiftType(ctx context.Context, st *ShiftType) (int64, error)
	UpdateShiftType(ctx context.Context, id int64, st *ShiftType) error
	DeleteShiftType(ctx context.Context, id int64) error
}

// ScheduleStore defines the interface for schedule entry operations
type ScheduleStore interface {
	CreateShift(ctx context.Context, date, staffID string, shiftTypeID int64, source string) (*Shift, error)
	GetShiftByID(ctx context.Context, id int64) (*Shift, error)
	ListShiftsByStaff(ctx context.Context, staffID, fromDate, toDate string) ([]Shift, error)
	ListShiftsByDateRange(ctx context.Context, fromDate, toDate string) ([]Shift, error)
	ReassignShift(ctx context.Context, id int64, newStaffID string) (*Shift, error)
	UpdateShift(ctx context.Context, id int64, upd ShiftUpdate) (*Shift, error)
	DeleteShiftByID(ctx context.Context, id int64) error
	DeleteRangeFutureOnly(ctx context.Context, fromDate, toDate string) (int, error)
	BulkUpsertShifts(ctx context.Context, candidates []ShiftCandidate) (int, error)
	RemoveStaleShifts(ctx context.Context, candidates []ShiftCandidate, fromDate, toDate string) (int, error)
	ExchangeAssignees(ctx context.Context, shiftAID int64, newStaffA string, shiftBID int64, newStaffB string) error
	// FindPartner returns an active user working a shift of exactly the
	// given category at the given point on the date
	FindPartner(ctx context.Context, date, point, category, excludingStaffID string) (*User, error)
}

// UserStore defines the interface for user operations
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByStaffID(ctx context.Context, staffID string) (*User, error)
	GetUserByChatID(ctx context.Context, chatID int64) (*User, error)
	GetUserByHandle(ctx context.Context, handle string) (*User, error)
	CreateUser(ctx context.Context, u *User) (int64, error)
	UpdateUser(ctx context.Context, id int64, u *User) error
	DeactivateUser(ctx context.Context, id int64) error
	ListActiveUsers(ctx context.Context, excludingStaffID string) ([]User, error)
}

// Database groups every store the application uses. The postgres.DB type
// implements all of them.
type Database interface {
	ShiftTypeStore
	ScheduleStore
	UserStore
}

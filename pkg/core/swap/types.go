package swap

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkoshkina/baristabot/pkg/db"
)

// State is a position in the swap flow's state machine
type State string

const (
	StateIdle                State = "IDLE"
	StateShiftSelected       State = "SHIFT_SELECTED"
	StateCounterpartSelected State = "COUNTERPART_SELECTED"
	StateOneWayConfirming    State = "ONE_WAY_CONFIRMING"
	StateTwoWayConfirming    State = "TWO_WAY_CONFIRMING"
	StateApplying            State = "APPLYING"
	StateDone                State = "DONE"
	StateFailed              State = "FAILED"
)

// ExchangeKind distinguishes the shapes a swap can take
type ExchangeKind string

const (
	ExchangeOneWay    ExchangeKind = "one-way"
	ExchangeSameDay   ExchangeKind = "same-day exchange"
	ExchangeCrossDate ExchangeKind = "cross-date exchange"
)

var (
	// ErrNoStaffID means the acting identity has no personnel-system id;
	// the flow cannot start and the user is told to contact an
	// administrator.
	ErrNoStaffID = errors.New("acting user has no personnel-system id")

	// ErrNoUpcomingShifts terminates the flow before any selection
	ErrNoUpcomingShifts = errors.New("no upcoming shifts to swap")

	// ErrNoCounterparts terminates the flow when no other active staff exist
	ErrNoCounterparts = errors.New("no staff available for a swap")

	// ErrShiftVanished means a shift disappeared between selection and
	// apply (another operator deleted it)
	ErrShiftVanished = errors.New("shift no longer exists")

	// ErrInvalidTransition guards the state machine against out-of-order calls
	ErrInvalidTransition = errors.New("action not allowed in the current state")

	// ErrExternalSync is a hard two-way failure: the spreadsheet push did
	// not complete, so the database was left untouched
	ErrExternalSync = errors.New("external spreadsheet sync failed")
)

// ActingIdentity carries who is really acting and who the action is for.
// Supervisors may act on behalf of another staff member; the impersonation
// is explicit here rather than hidden in conversation state, so it can be
// switched, expired and audited.
type ActingIdentity struct {
	Real      *db.User
	Effective *db.User
}

// User returns the identity the flow operates as
func (a ActingIdentity) User() *db.User {
	if a.Effective != nil {
		return a.Effective
	}
	return a.Real
}

// Impersonating reports whether the real user acts on someone's behalf
func (a ActingIdentity) Impersonating() bool {
	return a.Effective != nil && a.Real != nil && a.Effective.ID != a.Real.ID
}

// ShiftOption is a selectable shift with its resolved type
type ShiftOption struct {
	Shift     db.Shift
	ShiftType db.ShiftType
	Label     string
}

// Counterpart is a candidate for the other side of a swap. HasShiftOnDate
// is informational only and never blocks selection.
type Counterpart struct {
	User           db.User
	HasShiftOnDate bool
}

// Summary is the human-readable description shown before confirmation
type Summary struct {
	Kind              ExchangeKind
	RequesterGives    string
	RequesterReceives string
	CounterpartName   string
	Text              string
}

// Result reports the outcome of an applied swap to both parties. Degraded
// means the database change stands but the spreadsheet could not be
// updated and needs manual reconciliation.
type Result struct {
	Kind            ExchangeKind
	Degraded        bool
	RequesterNote   string
	CounterpartNote string
}

// ScheduleStore is the slice of the schedule store the engine needs
type ScheduleStore interface {
	GetShiftByID(ctx context.Context, id int64) (*db.Shift, error)
	ListShiftsByStaff(ctx context.Context, staffID, fromDate, toDate string) ([]db.Shift, error)
	UpdateShift(ctx context.Context, id int64, upd db.ShiftUpdate) (*db.Shift, error)
	ExchangeAssignees(ctx context.Context, shiftAID int64, newStaffA string, shiftBID int64, newStaffB string) error
}

// TypeFinder is the slice of the catalog the engine needs
type TypeFinder interface {
	FindShiftTypeByID(ctx context.Context, id int64) (*db.ShiftType, error)
}

// UserDirectory is the slice of the user store the engine needs
type UserDirectory interface {
	ListActiveUsers(ctx context.Context, excludingStaffID string) ([]db.User, error)
	GetUserByStaffID(ctx context.Context, staffID string) (*db.User, error)
}

// SheetSyncer pushes shift changes to the external spreadsheet
type SheetSyncer interface {
	WriteShift(ctx context.Context, staffID, date, startTime, endTime, point string) error
	ClearShift(ctx context.Context, staffID, date string) error
}

// shiftSnapshot captures everything needed to describe or restore one side
// of an exchange before any mutation happens
type shiftSnapshot struct {
	ShiftID   int64
	StaffID   string
	Date      string
	StartTime string
	EndTime   string
	Point     string
	Category  string
}

func (s shiftSnapshot) line() string {
	return fmt.Sprintf("%s (%s) %s: %s - %s", displayDate(s.Date), categoryTitle(s.Category), s.Point, s.StartTime, s.EndTime)
}

func categoryTitle(category string) string {
	switch category {
	case db.CategoryMorning:
		return "утро"
	case db.CategoryEvening:
		return "вечер"
	case db.CategoryHybrid:
		return "пересмен"
	default:
		return category
	}
}

func displayDate(date string) string {
	// "2006-01-02" -> "02.01.2006"; roster dates are already validated
	if len(date) != 10 {
		return date
	}
	return date[8:10] + "." + date[5:7] + "." + date[0:4]
}

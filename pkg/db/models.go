package db

// Shift categories. Category is derived from a shift type's time span but
// stored redundantly for fast filtering.
const (
	CategoryMorning = "morning"
	CategoryEvening = "evening"
	CategoryHybrid  = "hybrid"
)

// Shift provenance values. Reconciliation only ever removes rows whose
// source is SourceSheets (or empty, for rows predating the column).
const (
	SourceSheets = "sheets"
	SourceSwap   = "swap"
	SourceManual = "manual"
)

// User roles
const (
	RoleStaff      = "staff"
	RoleSupervisor = "supervisor"
	RoleMentor     = "mentor"
)

// ShiftType represents a named shift template
type ShiftType struct {
	ID        int64
	Name      string
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM"
	Point     string
	Category  string // morning, evening or hybrid
	CreatedAt string // RFC3339
}

// Shift represents a concrete schedule entry
type Shift struct {
	ID          int64
	Date        string // "2006-01-02"
	StaffID     string // external personnel-system id, kept as a string
	ShiftTypeID int64
	Source      string // sheets, swap or manual
	Version     int
	Active      bool
	CreatedAt   string // RFC3339
	UpdatedAt   string // RFC3339
}

// ShiftCandidate is a row produced by roster parsing, applied via
// BulkUpsert + RemoveStale
type ShiftCandidate struct {
	Date        string // "2006-01-02"
	StaffID     string
	ShiftTypeID int64
	Source      string // empty means sheets
}

// User represents a staff member known to the bot
type User struct {
	ID      int64
	Name    string
	StaffID string // external personnel-system id, unique
	ChatID  int64  // messaging-platform id, unique
	Handle  string // messaging-platform handle, unique
	Role    string
	Active  bool
}

// ShiftUpdate holds optional fields for a partial shift update. Nil fields
// are left untouched.
type ShiftUpdate struct {
	Date        *string
	StaffID     *string
	ShiftTypeID *int64
	Source      *string
	Version     *int
	Active      *bool
}

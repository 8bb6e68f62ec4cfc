package swap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkoshkina/baristabot/pkg/core/schedule"
	"github.com/mkoshkina/baristabot/pkg/db"
)

// Engine creates swap flows. It is stateless and safe to share; each flow
// holds the conversational state for one user.
type Engine struct {
	store         ScheduleStore
	catalog       TypeFinder
	users         UserDirectory
	sheet         SheetSyncer
	logger        *zap.Logger
	lookaheadDays int
	now           func() time.Time
}

func NewEngine(store ScheduleStore, catalog TypeFinder, users UserDirectory, sheet SheetSyncer, logger *zap.Logger, lookaheadDays int) *Engine {
	return &Engine{
		store:         store,
		catalog:       catalog,
		users:         users,
		sheet:         sheet,
		logger:        logger,
		lookaheadDays: lookaheadDays,
		now:           time.Now,
	}
}

// Flow is one user's swap in progress. It is not safe for concurrent use;
// the bot layer keeps one flow per conversation.
type Flow struct {
	engine   *Engine
	identity ActingIdentity
	state    State
	opID     string

	source       *db.Shift
	sourceType   *db.ShiftType
	counterpart  *db.User
	exchange     *db.Shift
	exchangeType *db.ShiftType
}

// NewFlow starts a flow for the given identity. The effective user must be
// linked to a personnel-system id.
func (e *Engine) NewFlow(identity ActingIdentity) (*Flow, error) {
	u := identity.User()
	if u == nil || u.StaffID == "" {
		return nil, ErrNoStaffID
	}
	f := &Flow{
		engine:   e,
		identity: identity,
		state:    StateIdle,
		opID:     uuid.NewString(),
	}
	e.logger.Info("swap flow started",
		zap.String("op_id", f.opID),
		zap.String("staff_id", u.StaffID),
		zap.Bool("impersonating", identity.Impersonating()))
	return f, nil
}

// State returns the flow's current position in the state machine
func (f *Flow) State() State { return f.state }

// OperationID returns the correlation id stamped into every log line of
// this flow
func (f *Flow) OperationID() string { return f.opID }

// Cancel discards the flow's intent. It is allowed from any state except
// APPLYING; an apply in flight must run to completion.
func (f *Flow) Cancel() error {
	if f.state == StateApplying {
		return fmt.Errorf("%w: apply in progress", ErrInvalidTransition)
	}
	f.engine.logger.Info("swap flow cancelled", zap.String("op_id", f.opID), zap.String("state", string(f.state)))
	f.reset()
	return nil
}

func (f *Flow) reset() {
	f.state = StateIdle
	f.source = nil
	f.sourceType = nil
	f.counterpart = nil
	f.exchange = nil
	f.exchangeType = nil
}

// UpcomingShifts lists the acting user's shifts from today through the
// lookahead horizon. The flow terminates with ErrNoUpcomingShifts when the
// user has nothing to give away.
func (f *Flow) UpcomingShifts(ctx context.Context) ([]ShiftOption, error) {
	if f.state != StateIdle {
		return nil, f.badTransition("upcoming shifts")
	}
	options, err := f.engine.shiftOptions(ctx, f.identity.User().StaffID, f.today(), f.horizon())
	if err != nil {
		return nil, err
	}
	if len(options) == 0 {
		return nil, ErrNoUpcomingShifts
	}
	return options, nil
}

// SelectShift fixes the shift the acting user gives away and moves the
// flow to SHIFT_SELECTED
func (f *Flow) SelectShift(ctx context.Context, shiftID int64) error {
	if f.state != StateIdle {
		return f.badTransition("select shift")
	}
	shift, err := f.engine.store.GetShiftByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrShiftVanished
		}
		return fmt.Errorf("loading shift %d: %w", shiftID, err)
	}
	if !db.SameStaffID(shift.StaffID, f.identity.User().StaffID) {
		return fmt.Errorf("shift %d belongs to someone else", shiftID)
	}
	st, err := f.engine.catalog.FindShiftTypeByID(ctx, shift.ShiftTypeID)
	if err != nil {
		return fmt.Errorf("loading shift type %d: %w", shift.ShiftTypeID, err)
	}
	f.source = shift
	f.sourceType = st
	f.state = StateShiftSelected
	return nil
}

// Counterparts lists every other active staff member, annotated with
// whether they already work on the selected date. The annotation is a
// hint for the requester, not a filter.
func (f *Flow) Counterparts(ctx context.Context) ([]Counterpart, error) {
	if f.state != StateShiftSelected {
		return nil, f.badTransition("list counterparts")
	}
	users, err := f.engine.users.ListActiveUsers(ctx, f.identity.User().StaffID)
	if err != nil {
		return nil, fmt.Errorf("listing active staff: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrNoCounterparts
	}
	out := make([]Counterpart, 0, len(users))
	for _, u := range users {
		shifts, err := f.engine.store.ListShiftsByStaff(ctx, u.StaffID, f.source.Date, f.source.Date)
		if err != nil {
			return nil, fmt.Errorf("checking %s on %s: %w", u.StaffID, f.source.Date, err)
		}
		out = append(out, Counterpart{User: u, HasShiftOnDate: len(shifts) > 0})
	}
	return out, nil
}

// SelectCounterpart fixes the other party and returns their upcoming
// shifts, same-day included, as candidates for a two-way exchange. An
// empty slice means only a one-way swap is possible.
func (f *Flow) SelectCounterpart(ctx context.Context, staffID string) ([]ShiftOption, error) {
	if f.state != StateShiftSelected {
		return nil, f.badTransition("select counterpart")
	}
	user, err := f.engine.users.GetUserByStaffID(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("loading counterpart %s: %w", staffID, err)
	}
	if db.SameStaffID(user.StaffID, f.identity.User().StaffID) {
		return nil, fmt.Errorf("cannot swap a shift with yourself")
	}
	options, err := f.engine.shiftOptions(ctx, user.StaffID, f.today(), f.horizon())
	if err != nil {
		return nil, err
	}
	f.counterpart = user
	f.state = StateCounterpartSelected
	return options, nil
}

// ChooseOneWay declares the swap a plain give-away and moves the flow to
// confirmation
func (f *Flow) ChooseOneWay() error {
	if f.state != StateCounterpartSelected {
		return f.badTransition("choose one-way")
	}
	f.state = StateOneWayConfirming
	return nil
}

// ChooseExchange fixes the counterpart's shift that comes back in return
// and moves the flow to confirmation
func (f *Flow) ChooseExchange(ctx context.Context, shiftID int64) error {
	if f.state != StateCounterpartSelected {
		return f.badTransition("choose exchange shift")
	}
	shift, err := f.engine.store.GetShiftByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrShiftVanished
		}
		return fmt.Errorf("loading shift %d: %w", shiftID, err)
	}
	if !db.SameStaffID(shift.StaffID, f.counterpart.StaffID) {
		return fmt.Errorf("shift %d does not belong to %s", shiftID, f.counterpart.StaffID)
	}
	st, err := f.engine.catalog.FindShiftTypeByID(ctx, shift.ShiftTypeID)
	if err != nil {
		return fmt.Errorf("loading shift type %d: %w", shift.ShiftTypeID, err)
	}
	f.exchange = shift
	f.exchangeType = st
	f.state = StateTwoWayConfirming
	return nil
}

// Summary produces the confirmation text. It never changes the flow's
// state; confirmation is armed by ChooseOneWay or ChooseExchange.
func (f *Flow) Summary() (*Summary, error) {
	switch f.state {
	case StateOneWayConfirming:
		give := f.sourceSnapshot().line()
		return &Summary{
			Kind:            ExchangeOneWay,
			RequesterGives:  give,
			CounterpartName: f.counterpart.Name,
			Text:            fmt.Sprintf("Отдать смену %s сотруднику %s?", give, f.counterpart.Name),
		}, nil
	case StateTwoWayConfirming:
		give := f.sourceSnapshot().line()
		receive := f.exchangeSnapshot().line()
		return &Summary{
			Kind:              f.kindOf(f.sourceSnapshot(), f.exchangeSnapshot()),
			RequesterGives:    give,
			RequesterReceives: receive,
			CounterpartName:   f.counterpart.Name,
			Text:              fmt.Sprintf("Обменять смену %s на смену %s (%s)?", give, receive, f.counterpart.Name),
		}, nil
	default:
		return nil, f.badTransition("summary")
	}
}

// Confirm applies the swap. The flow always returns to IDLE afterwards;
// the returned Result (or error) is the only record handed back to the
// conversation.
func (f *Flow) Confirm(ctx context.Context) (*Result, error) {
	var apply func(context.Context) (*Result, error)
	switch f.state {
	case StateOneWayConfirming:
		apply = f.applyOneWay
	case StateTwoWayConfirming:
		apply = f.applyTwoWay
	default:
		return nil, f.badTransition("confirm")
	}
	f.state = StateApplying
	result, err := apply(ctx)
	if err != nil {
		f.state = StateFailed
		f.engine.logger.Error("swap failed", zap.String("op_id", f.opID), zap.Error(err))
	} else {
		f.state = StateDone
	}
	f.reset()
	return result, err
}

// applyOneWay reassigns the source shift to the counterpart, then pushes
// the change to the spreadsheet best-effort. A sheet failure degrades the
// result instead of failing it: the database is the source of truth and
// the cell can be repaired later.
func (f *Flow) applyOneWay(ctx context.Context) (*Result, error) {
	src, err := f.refetch(ctx, f.source.ID, f.identity.User().StaffID)
	if err != nil {
		return nil, err
	}
	snap := f.snapshotOf(src, f.sourceType)

	// Assignee, provenance and version change in one statement so a
	// failure leaves either the full swap or no swap. A reassigned row
	// without the swap stamp would be wiped by the next import.
	newStaffID := f.counterpart.StaffID
	source := db.SourceSwap
	version := src.Version + 1
	if _, err := f.engine.store.UpdateShift(ctx, src.ID, db.ShiftUpdate{StaffID: &newStaffID, Source: &source, Version: &version}); err != nil {
		return nil, fmt.Errorf("reassigning shift %d: %w", src.ID, err)
	}
	f.engine.logger.Info("one-way swap committed",
		zap.String("op_id", f.opID),
		zap.Int64("shift_id", src.ID),
		zap.String("from", snap.StaffID),
		zap.String("to", f.counterpart.StaffID))

	degraded := false
	if err := f.engine.sheet.ClearShift(ctx, snap.StaffID, snap.Date); err != nil {
		degraded = true
		f.engine.logger.Warn("sheet clear failed after one-way swap",
			zap.String("op_id", f.opID), zap.String("staff_id", snap.StaffID), zap.String("date", snap.Date), zap.Error(err))
	}
	if err := f.engine.sheet.WriteShift(ctx, f.counterpart.StaffID, snap.Date, snap.StartTime, snap.EndTime, snap.Point); err != nil {
		degraded = true
		f.engine.logger.Warn("sheet write failed after one-way swap",
			zap.String("op_id", f.opID), zap.String("staff_id", f.counterpart.StaffID), zap.String("date", snap.Date), zap.Error(err))
	}

	res := &Result{
		Kind:            ExchangeOneWay,
		Degraded:        degraded,
		RequesterNote:   fmt.Sprintf("Смена %s передана: %s.", snap.line(), f.counterpart.Name),
		CounterpartNote: fmt.Sprintf("Вам передали смену %s.", snap.line()),
	}
	if degraded {
		res.RequesterNote += " Таблица не обновилась, сообщите администратору."
	}
	return res, nil
}

// applyTwoWay pushes all four spreadsheet cell changes first and commits
// the database exchange only after they succeed. A sheet failure aborts
// with the database untouched; a database failure rolls the sheet back to
// the pre-swap snapshots best-effort.
func (f *Flow) applyTwoWay(ctx context.Context) (*Result, error) {
	src, err := f.refetch(ctx, f.source.ID, f.identity.User().StaffID)
	if err != nil {
		return nil, err
	}
	exch, err := f.refetch(ctx, f.exchange.ID, f.counterpart.StaffID)
	if err != nil {
		return nil, err
	}
	snapA := f.snapshotOf(src, f.sourceType)
	snapB := f.snapshotOf(exch, f.exchangeType)

	if err := f.pushExchange(ctx, snapA, snapB); err != nil {
		f.restoreSheet(ctx, snapA, snapB)
		return nil, fmt.Errorf("%w: %v", ErrExternalSync, err)
	}

	if err := f.engine.store.ExchangeAssignees(ctx, src.ID, snapB.StaffID, exch.ID, snapA.StaffID); err != nil {
		f.restoreSheet(ctx, snapA, snapB)
		return nil, fmt.Errorf("exchanging shifts %d and %d: %w", src.ID, exch.ID, err)
	}
	f.engine.logger.Info("two-way swap committed",
		zap.String("op_id", f.opID),
		zap.Int64("shift_a", src.ID),
		zap.Int64("shift_b", exch.ID),
		zap.String("staff_a", snapA.StaffID),
		zap.String("staff_b", snapB.StaffID))

	return &Result{
		Kind:            f.kindOf(snapA, snapB),
		RequesterNote:   fmt.Sprintf("Обмен выполнен: вы работаете %s вместо %s.", snapB.line(), snapA.line()),
		CounterpartNote: fmt.Sprintf("Обмен выполнен: вы работаете %s вместо %s.", snapA.line(), snapB.line()),
	}, nil
}

func (f *Flow) kindOf(a, b shiftSnapshot) ExchangeKind {
	if a.Date == b.Date {
		return ExchangeSameDay
	}
	return ExchangeCrossDate
}

// pushExchange writes both sides of an exchange to the sheet: clear both
// old cells, then write the crossed assignments. Same-day exchanges skip
// the clears since both cells are overwritten anyway.
func (f *Flow) pushExchange(ctx context.Context, a, b shiftSnapshot) error {
	if a.Date != b.Date {
		if err := f.engine.sheet.ClearShift(ctx, a.StaffID, a.Date); err != nil {
			return fmt.Errorf("clearing %s on %s: %w", a.StaffID, a.Date, err)
		}
		if err := f.engine.sheet.ClearShift(ctx, b.StaffID, b.Date); err != nil {
			return fmt.Errorf("clearing %s on %s: %w", b.StaffID, b.Date, err)
		}
	}
	if err := f.engine.sheet.WriteShift(ctx, b.StaffID, a.Date, a.StartTime, a.EndTime, a.Point); err != nil {
		return fmt.Errorf("writing %s on %s: %w", b.StaffID, a.Date, err)
	}
	if err := f.engine.sheet.WriteShift(ctx, a.StaffID, b.Date, b.StartTime, b.EndTime, b.Point); err != nil {
		return fmt.Errorf("writing %s on %s: %w", a.StaffID, b.Date, err)
	}
	return nil
}

// restoreSheet best-effort puts every touched cell back to its pre-swap
// state: the crossed target cells are cleared so no phantom assignment
// from the uncommitted swap survives, then both source cells are
// rewritten. Same-day exchanges only have the two source cells, and the
// rewrites overwrite them. Failures here leave the sheet inconsistent
// with the database and are logged loudly for manual repair.
func (f *Flow) restoreSheet(ctx context.Context, a, b shiftSnapshot) {
	if a.Date != b.Date {
		crossed := []struct{ staffID, date string }{
			{b.StaffID, a.Date},
			{a.StaffID, b.Date},
		}
		for _, c := range crossed {
			if err := f.engine.sheet.ClearShift(ctx, c.staffID, c.date); err != nil {
				f.engine.logger.Error("sheet restore failed, manual repair needed",
					zap.String("op_id", f.opID),
					zap.String("staff_id", c.staffID),
					zap.String("date", c.date),
					zap.Error(err))
			}
		}
	}
	for _, s := range []shiftSnapshot{a, b} {
		if err := f.engine.sheet.WriteShift(ctx, s.StaffID, s.Date, s.StartTime, s.EndTime, s.Point); err != nil {
			f.engine.logger.Error("sheet restore failed, manual repair needed",
				zap.String("op_id", f.opID),
				zap.String("staff_id", s.StaffID),
				zap.String("date", s.Date),
				zap.Error(err))
		}
	}
}

// refetch reloads a shift by id right before apply and verifies it still
// belongs to the expected staff member
func (f *Flow) refetch(ctx context.Context, id int64, wantStaffID string) (*db.Shift, error) {
	shift, err := f.engine.store.GetShiftByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: shift %d", ErrShiftVanished, id)
		}
		return nil, fmt.Errorf("reloading shift %d: %w", id, err)
	}
	if !db.SameStaffID(shift.StaffID, wantStaffID) {
		return nil, fmt.Errorf("%w: shift %d reassigned to %s", ErrShiftVanished, id, shift.StaffID)
	}
	return shift, nil
}

func (f *Flow) snapshotOf(shift *db.Shift, st *db.ShiftType) shiftSnapshot {
	return shiftSnapshot{
		ShiftID:   shift.ID,
		StaffID:   shift.StaffID,
		Date:      shift.Date,
		StartTime: st.StartTime,
		EndTime:   st.EndTime,
		Point:     st.Point,
		Category:  st.Category,
	}
}

func (f *Flow) sourceSnapshot() shiftSnapshot   { return f.snapshotOf(f.source, f.sourceType) }
func (f *Flow) exchangeSnapshot() shiftSnapshot { return f.snapshotOf(f.exchange, f.exchangeType) }

func (f *Flow) badTransition(action string) error {
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, action, f.state)
}

func (f *Flow) today() string {
	return f.engine.now().Format(schedule.DateFormat)
}

func (f *Flow) horizon() string {
	return f.engine.now().AddDate(0, 0, f.engine.lookaheadDays).Format(schedule.DateFormat)
}

// shiftOptions lists a staff member's active shifts in a window with their
// shift types resolved. Shifts pointing at a deleted catalog entry are
// skipped with a warning.
func (e *Engine) shiftOptions(ctx context.Context, staffID, fromDate, toDate string) ([]ShiftOption, error) {
	shifts, err := e.store.ListShiftsByStaff(ctx, staffID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("listing shifts for %s: %w", staffID, err)
	}
	options := make([]ShiftOption, 0, len(shifts))
	for _, shift := range shifts {
		if !shift.Active {
			continue
		}
		st, err := e.catalog.FindShiftTypeByID(ctx, shift.ShiftTypeID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				e.logger.Warn("shift references unknown shift type",
					zap.Int64("shift_id", shift.ID),
					zap.Int64("shift_type_id", shift.ShiftTypeID))
				continue
			}
			return nil, fmt.Errorf("loading shift type %d: %w", shift.ShiftTypeID, err)
		}
		snap := shiftSnapshot{Date: shift.Date, StartTime: st.StartTime, EndTime: st.EndTime, Point: st.Point, Category: st.Category}
		options = append(options, ShiftOption{Shift: shift, ShiftType: *st, Label: snap.line()})
	}
	return options, nil
}

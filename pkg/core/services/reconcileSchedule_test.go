package services

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/mkoshkina/baristabot/pkg/clients/sheetsclient"
	"github.com/mkoshkina/baristabot/pkg/db"
)

// memStore mirrors the store contract: upsert never duplicates a
// (date, staff, type) row, and stale removal never touches past rows or
// rows whose provenance is not the sheet.
type memStore struct {
	types map[string]db.ShiftType // "start|end"
	rows  map[string]string       // "date|staff|type" -> source
}

func newMemStore() *memStore {
	return &memStore{
		types: map[string]db.ShiftType{
			"07:00|15:00": {ID: 1, Name: "07:00-15:00 ДЕ", StartTime: "07:00", EndTime: "15:00", Point: "ДЕ", Category: db.CategoryMorning},
			"15:45|23:30": {ID: 2, Name: "15:45-23:30 УЯ", StartTime: "15:45", EndTime: "23:30", Point: "УЯ", Category: db.CategoryEvening},
		},
		rows: map[string]string{},
	}
}

func rowKey(date, staffID string, shiftTypeID int64) string {
	return date + "|" + staffID + "|" + strconv.FormatInt(shiftTypeID, 10)
}

func (m *memStore) FindByTimes(_ context.Context, startTime, endTime string) (*db.ShiftType, error) {
	st, ok := m.types[startTime+"|"+endTime]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &st, nil
}

func (m *memStore) BulkUpsertShifts(_ context.Context, candidates []db.ShiftCandidate) (int, error) {
	created := 0
	for _, c := range candidates {
		key := rowKey(c.Date, c.StaffID, c.ShiftTypeID)
		if _, ok := m.rows[key]; ok {
			continue
		}
		source := c.Source
		if source == "" {
			source = db.SourceSheets
		}
		m.rows[key] = source
		created++
	}
	return created, nil
}

func (m *memStore) RemoveStaleShifts(_ context.Context, candidates []db.ShiftCandidate, fromDate, toDate string) (int, error) {
	today := now().Format("2006-01-02")
	if fromDate < today {
		fromDate = today
	}
	keep := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		keep[rowKey(c.Date, c.StaffID, c.ShiftTypeID)] = true
	}
	removed := 0
	for key, source := range m.rows {
		date := strings.SplitN(key, "|", 2)[0]
		if date < fromDate || date > toDate {
			continue
		}
		if source != db.SourceSheets && source != "" {
			continue
		}
		if !keep[key] {
			delete(m.rows, key)
			removed++
		}
	}
	return removed, nil
}

type mockRoster struct {
	tab  string
	grid [][]string
}

func (m *mockRoster) FindMonthTab(_ context.Context, _ string) (*sheetsclient.Tab, error) {
	return &sheetsclient.Tab{Title: m.tab, SheetID: 7}, nil
}

func (m *mockRoster) ReadMonthGrid(_ context.Context, _ string) ([][]string, error) {
	return m.grid, nil
}

// buildGrid lays out a month tab: day headers 1..days in row 1 from
// column C, two columns per day, staff rows from row 4.
func buildGrid(days int, staff map[string]map[int][2]string) [][]string {
	width := 2 + days*2
	header := make([]string, width)
	for d := 1; d <= days; d++ {
		header[2+(d-1)*2] = strconv.Itoa(d)
	}
	grid := [][]string{header, make([]string, width), make([]string, width)}
	for staffID, shifts := range staff {
		row := make([]string, width)
		row[0] = staffID
		for day, span := range shifts {
			row[2+(day-1)*2] = span[0]
			row[2+(day-1)*2+1] = span[1]
		}
		grid = append(grid, row)
	}
	return grid
}

func fixTime(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func septemberFixture(t *testing.T) (*mockRoster, *memStore) {
	t.Helper()
	fixTime(t, time.Date(2026, time.September, 5, 12, 0, 0, 0, time.UTC))
	roster := &mockRoster{
		tab: "Сентябрь 26",
		grid: buildGrid(12, map[string]map[int][2]string{
			"222559": {
				3:  {"7:00", "15:00"}, // past, never imported
				10: {"7:00", "15:00"},
				12: {"15:45", "23:30"},
			},
			"901953": {
				10: {"15:45", "23:30"},
				12: {"08:00", "19:30"}, // matches no catalog entry
			},
		}),
	}
	return roster, newMemStore()
}

func TestReconcileSchedule_ImportsFutureCells(t *testing.T) {
	roster, store := septemberFixture(t)

	result, err := ReconcileSchedule(context.Background(), roster, store, zap.NewNop(), "Сентябрь 26", nil)
	require.NoError(t, err)

	assert.Equal(t, "Сентябрь 26", result.Tab)
	assert.Equal(t, time.September, result.Month)
	assert.Equal(t, 2026, result.Year)
	assert.Equal(t, 5, result.Parsed)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 0, result.Removed)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "08:00-19:30")

	assert.Contains(t, store.rows, rowKey("2026-09-10", "222559", 1))
	assert.Contains(t, store.rows, rowKey("2026-09-12", "222559", 2))
	assert.Contains(t, store.rows, rowKey("2026-09-10", "901953", 2))
	assert.NotContains(t, store.rows, rowKey("2026-09-03", "222559", 1))
}

func TestReconcileSchedule_Idempotent(t *testing.T) {
	roster, store := septemberFixture(t)
	ctx := context.Background()

	first, err := ReconcileSchedule(ctx, roster, store, zap.NewNop(), "Сентябрь 26", nil)
	require.NoError(t, err)
	require.Equal(t, 3, first.Created)

	second, err := ReconcileSchedule(ctx, roster, store, zap.NewNop(), "Сентябрь 26", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 0, second.Removed)
	assert.Len(t, store.rows, 3)
}

func TestReconcileSchedule_PreservesSwapRows(t *testing.T) {
	roster, store := septemberFixture(t)
	// a shift handed over after the last import; the sheet knows nothing
	// about it
	store.rows[rowKey("2026-09-11", "222559", 1)] = db.SourceSwap

	result, err := ReconcileSchedule(context.Background(), roster, store, zap.NewNop(), "Сентябрь 26", nil)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Removed)
	assert.Contains(t, store.rows, rowKey("2026-09-11", "222559", 1))
	assert.Equal(t, db.SourceSwap, store.rows[rowKey("2026-09-11", "222559", 1)])
}

func TestReconcileSchedule_RemovesStaleSheetRows(t *testing.T) {
	roster, store := septemberFixture(t)
	// a sheet-sourced row the roster no longer backs
	store.rows[rowKey("2026-09-11", "901953", 1)] = db.SourceSheets

	result, err := ReconcileSchedule(context.Background(), roster, store, zap.NewNop(), "Сентябрь 26", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Removed)
	assert.NotContains(t, store.rows, rowKey("2026-09-11", "901953", 1))
}

func TestReconcileSchedule_PastRowsUntouched(t *testing.T) {
	roster, store := septemberFixture(t)
	// a past row absent from the sheet stays: history is immutable
	store.rows[rowKey("2026-09-01", "901953", 1)] = db.SourceSheets

	result, err := ReconcileSchedule(context.Background(), roster, store, zap.NewNop(), "Сентябрь 26", nil)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Removed)
	assert.Contains(t, store.rows, rowKey("2026-09-01", "901953", 1))
}

func TestReconcileSchedule_SkipsClosedDays(t *testing.T) {
	roster, store := septemberFixture(t)

	// 2026-09-10 is a Thursday
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rrule.TH},
		Dtstart:   time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	closures := NewClosureCalendar([]ClosureRule{{Point: "ДЕ", Rule: rule}})

	result, err := ReconcileSchedule(context.Background(), roster, store, zap.NewNop(), "Сентябрь 26", closures)
	require.NoError(t, err)

	// 222559's Thursday morning at ДЕ is dropped, 901953's evening at УЯ
	// the same day stays
	assert.Equal(t, 2, result.Imported)
	assert.NotContains(t, store.rows, rowKey("2026-09-10", "222559", 1))
	assert.Contains(t, store.rows, rowKey("2026-09-10", "901953", 2))
}

func TestReconcileSchedule_BadLabel(t *testing.T) {
	roster, store := septemberFixture(t)
	_, err := ReconcileSchedule(context.Background(), roster, store, zap.NewNop(), "не месяц", nil)
	assert.Error(t, err)
}

func TestClosureCalendar_NilNeverClosed(t *testing.T) {
	var calendar *ClosureCalendar
	assert.False(t, calendar.Closed("ДЕ", time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC)))
}

func TestClosureCalendar_EmptyPointMatchesAll(t *testing.T) {
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:       rrule.YEARLY,
		Bymonth:    []int{1},
		Bymonthday: []int{1},
		Dtstart:    time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	calendar := NewClosureCalendar([]ClosureRule{{Rule: rule}})

	newYear := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, calendar.Closed("ДЕ", newYear))
	assert.True(t, calendar.Closed("УЯ", newYear))
	assert.False(t, calendar.Closed("ДЕ", newYear.AddDate(0, 0, 1)))
}

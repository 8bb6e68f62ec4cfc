package sheetsclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGrid() [][]string {
	// Row 1: day headers from column C, two columns per day.
	// Row 4 onward: staff id in column A, arrival/departure pairs.
	return [][]string{
		{"", "", "1", "", "2", "", "3", ""},
		{"", "", "Пн", "", "Вт", "", "Ср", ""},
		{},
		{"222559", "Настя", "7:00", "15:00", "ВЫХ", "", "14:45", "22:30"},
		{"901953", "Богдана", "", "", "8:00", "19:30", "ОТПУСК", "ОТПУСК"},
		{"", "", "9:00", "17:00"},
	}
}

func TestParseRosterGrid(t *testing.T) {
	cells := ParseRosterGrid(sampleGrid())

	require.Len(t, cells, 3)
	assert.Equal(t, RosterCell{StaffID: "222559", Day: 1, StartTime: "7:00", EndTime: "15:00"}, cells[0])
	assert.Equal(t, RosterCell{StaffID: "222559", Day: 3, StartTime: "14:45", EndTime: "22:30"}, cells[1])
	assert.Equal(t, RosterCell{StaffID: "901953", Day: 2, StartTime: "8:00", EndTime: "19:30"}, cells[2])
}

func TestParseRosterGrid_SkipsDayOffAndVacation(t *testing.T) {
	cells := ParseRosterGrid(sampleGrid())

	for _, cell := range cells {
		assert.NotEqual(t, 2, cell.Day, "day off cell for 222559 must be skipped")
		if cell.StaffID == "901953" {
			assert.NotEqual(t, 3, cell.Day, "vacation cell must be skipped")
		}
	}
}

func TestParseRosterGrid_TooShort(t *testing.T) {
	assert.Nil(t, ParseRosterGrid([][]string{{"1"}, {"x"}}))
}

func TestFindCellPosition(t *testing.T) {
	grid := sampleGrid()

	row, col, err := FindCellPosition(grid, "222559", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, row)
	assert.Equal(t, 2, col)

	row, col, err = FindCellPosition(grid, "901953", 3)
	require.NoError(t, err)
	assert.Equal(t, 4, row)
	assert.Equal(t, 6, col)
}

func TestFindCellPosition_UnknownStaff(t *testing.T) {
	_, _, err := FindCellPosition(sampleGrid(), "999999", 1)
	assert.Error(t, err)
}

func TestFindCellPosition_DayBeyondGrid(t *testing.T) {
	_, _, err := FindCellPosition(sampleGrid(), "222559", 20)
	assert.Error(t, err)
}

func TestIsDayOff(t *testing.T) {
	assert.True(t, IsDayOff(""))
	assert.True(t, IsDayOff("  "))
	assert.True(t, IsDayOff("ВЫХ"))
	assert.True(t, IsDayOff("ОТПУСК"))
	assert.False(t, IsDayOff("7:00"))
}

func TestParseMonthLabel(t *testing.T) {
	cases := []struct {
		label string
		month time.Month
		year  int
	}{
		{"Декабрь 24", time.December, 2024},
		{"декабрь 2024", time.December, 2024},
		{"June 25", time.June, 2025},
		{"сент 25", time.September, 2025},
		{"Ноябрь_25", time.November, 2025},
		{"март-26", time.March, 2026},
	}
	for _, tc := range cases {
		month, year, err := ParseMonthLabel(tc.label)
		require.NoError(t, err, tc.label)
		assert.Equal(t, tc.month, month, tc.label)
		assert.Equal(t, tc.year, year, tc.label)
	}
}

func TestParseMonthLabel_Invalid(t *testing.T) {
	_, _, err := ParseMonthLabel("Декабрь")
	assert.Error(t, err)

	_, _, err = ParseMonthLabel("тыква 24")
	assert.Error(t, err)
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Июнь 24", MonthLabel(time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Январь 26", MonthLabel(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestMonthBounds(t *testing.T) {
	from, to := MonthBounds(time.June, 2024)
	assert.Equal(t, "2024-06-01", from)
	assert.Equal(t, "2024-06-30", to)

	from, to = MonthBounds(time.December, 2024)
	assert.Equal(t, "2024-12-01", from)
	assert.Equal(t, "2024-12-31", to)
}

func TestColumnLetters(t *testing.T) {
	assert.Equal(t, "A", columnLetters(0))
	assert.Equal(t, "C", columnLetters(2))
	assert.Equal(t, "Z", columnLetters(25))
	assert.Equal(t, "AA", columnLetters(26))
	assert.Equal(t, "BL", columnLetters(63))
}

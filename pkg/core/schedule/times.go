package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mkoshkina/baristabot/pkg/db"
)

// DateFormat is the canonical calendar-date layout used across the system
const DateFormat = "2006-01-02"

// NormalizeTime brings a clock string to zero-padded HH:MM. Catalog lookups
// compare times as exact strings, so both the roster parser and manual
// entry must run input through this first. Strings that are not a
// two-part clock are returned unchanged.
func NormalizeTime(s string) string {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return s
	}
	hour := parts[0]
	minute := parts[1]
	if len(hour) == 1 {
		hour = "0" + hour
	}
	if len(minute) == 1 {
		minute = "0" + minute
	}
	return hour + ":" + minute
}

// ParseClock converts an HH:MM string to an offset from midnight
func ParseClock(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute, nil
}

// CategoryForStart derives a shift category from its start time. The known
// production start times are matched directly; anything else falls back to
// the time-of-day bands the roster has historically used.
func CategoryForStart(startTime string) (string, error) {
	normalized := NormalizeTime(startTime)

	switch normalized {
	case "07:00", "08:30":
		return db.CategoryMorning, nil
	case "14:45", "15:45":
		return db.CategoryEvening, nil
	case "08:00", "10:45", "11:45":
		return db.CategoryHybrid, nil
	}

	offset, err := ParseClock(normalized)
	if err != nil {
		return "", err
	}
	switch {
	case offset < 10*time.Hour:
		return db.CategoryMorning, nil
	case offset >= 14*time.Hour+30*time.Minute:
		return db.CategoryEvening, nil
	default:
		return db.CategoryHybrid, nil
	}
}

package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mkoshkina/baristabot/pkg/core/schedule"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expected a numeric id, got %q", arg)
	}
	return id, nil
}

func parseDate(arg string) (string, error) {
	t, err := time.Parse(schedule.DateFormat, arg)
	if err != nil {
		return "", fmt.Errorf("expected a date in YYYY-MM-DD form, got %q", arg)
	}
	return t.Format(schedule.DateFormat), nil
}

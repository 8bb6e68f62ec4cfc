package sheetsclient

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Roster tabs are titled with a month name and a short year ("Декабрь 24").
// Labels are hand-typed, so parsing tolerates both languages, partial month
// names and a handful of separators.

var monthNumbers = map[string]time.Month{
	"январь": time.January, "февраль": time.February, "март": time.March,
	"апрель": time.April, "май": time.May, "июнь": time.June,
	"июль": time.July, "август": time.August, "сентябрь": time.September,
	"октябрь": time.October, "ноябрь": time.November, "декабрь": time.December,
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

var monthTitles = map[time.Month]string{
	time.January: "Январь", time.February: "Февраль", time.March: "Март",
	time.April: "Апрель", time.May: "Май", time.June: "Июнь",
	time.July: "Июль", time.August: "Август", time.September: "Сентябрь",
	time.October: "Октябрь", time.November: "Ноябрь", time.December: "Декабрь",
}

var labelSeparators = regexp.MustCompile(`[\s_\-]+`)

// ParseMonthLabel parses a tab label such as "Декабрь 24" or "december_2024"
// into its month and year
func ParseMonthLabel(label string) (time.Month, int, error) {
	parts := labelSeparators.Split(strings.ToLower(strings.TrimSpace(label)), -1)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("invalid month label %q", label)
	}

	monthStr, yearStr := parts[0], parts[1]

	month, ok := monthNumbers[monthStr]
	if !ok {
		// Hand-typed labels are sometimes truncated ("сент 25").
		for name, num := range monthNumbers {
			if strings.HasPrefix(name, monthStr) || strings.HasPrefix(monthStr, name) {
				month = num
				ok = true
				break
			}
		}
		if !ok {
			return 0, 0, fmt.Errorf("unknown month in label %q", label)
		}
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in label %q: %w", label, err)
	}
	if len(yearStr) == 2 {
		year += 2000
	}

	return month, year, nil
}

// MonthLabel returns the canonical tab label for a date ("Декабрь 24")
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%s %02d", monthTitles[t.Month()], t.Year()%100)
}

// CurrentMonthLabel returns the tab label for the current month
func CurrentMonthLabel() string {
	return MonthLabel(time.Now())
}

// NextMonthLabel returns the tab label for the following month
func NextMonthLabel() string {
	now := time.Now()
	return MonthLabel(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0))
}

// MonthBounds returns the first and last day of the labelled month as
// "2006-01-02" strings
func MonthBounds(month time.Month, year int) (string, string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format("2006-01-02"), last.Format("2006-01-02")
}

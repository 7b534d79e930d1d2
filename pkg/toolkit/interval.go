package toolkit

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// dateLayout is the compact date format the eventlogs endpoint expects.
const dateLayout = "20060102"

// defaultIntervalDays is used when an interval cannot be understood.
const defaultIntervalDays = 7

// resolveInterval turns a human interval ("last week", "last month",
// "last 3 days") into a start/end date pair ending at now. Unrecognized
// intervals fall back to the last week.
func resolveInterval(interval string, now time.Time) (start, end string) {
	days := defaultIntervalDays

	switch s := strings.ToLower(interval); {
	case strings.Contains(s, "last week"):
		days = 7
	case strings.Contains(s, "last month"):
		days = 30
	case strings.Contains(s, "last") && strings.Contains(s, "day"):
		if n, err := strconv.Atoi(digits(s)); err == nil && n > 0 {
			days = n
		}
	}

	return now.AddDate(0, 0, -days).Format(dateLayout), now.Format(dateLayout)
}

// digits returns the digit characters of s, in order.
func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package period

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
	labelLayout = "Jan 2006"
)

// Month identifies one calendar month. A budgeting period is always a whole month,
// from its first to its last day inclusive.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing the given date.
func MonthOf(date time.Time) Month {
	year, month, _ := date.Date()
	return Month{Year: year, Month: month}
}

// MonthFromString parses the "2025-01" format.
func MonthFromString(value string) (Month, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(value))
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", value, err)
	}
	return MonthOf(t), nil
}

// Start returns the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the month (a date, not the last instant).
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, -1)
}

// Contains reports whether the date falls on any day of the month.
func (m Month) Contains(date time.Time) bool {
	return Contains(date, m.Start(), m.End())
}

// Next returns the following month.
func (m Month) Next() Month {
	return MonthOf(m.Start().AddDate(0, 1, 0))
}

// Label returns a short human label, e.g. "Jan 2025".
func (m Month) Label() string {
	return m.Start().Format(labelLayout)
}

// String returns the "2025-01" format.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// DateOf strips the time of day, keeping the calendar date seen in the value's own location.
func DateOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether date lies within [start, end] inclusive, compared by calendar day.
// A zero date never matches, so records with unparseable dates drop out of every period.
func Contains(date, start, end time.Time) bool {
	if date.IsZero() {
		return false
	}
	d := DateOf(date)
	if !start.IsZero() && d.Before(DateOf(start)) {
		return false
	}
	if !end.IsZero() && d.After(DateOf(end)) {
		return false
	}
	return true
}

// Overlaps reports whether two date ranges share at least one day. A zero bound is open.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !aEnd.IsZero() && !bStart.IsZero() && DateOf(aEnd).Before(DateOf(bStart)) {
		return false
	}
	if !bEnd.IsZero() && !aStart.IsZero() && DateOf(bEnd).Before(DateOf(aStart)) {
		return false
	}
	return true
}

// ParseDate accepts "2006-01-02" and RFC3339 values. It reports false instead of failing,
// callers decide whether a bad date is an error or just a non-matching record.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return DateOf(t), true
	}
	return time.Time{}, false
}

// FormatDate renders a date as "2006-01-02", or an empty string for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// Label returns the month label of a date, e.g. "Jan 2025".
func Label(t time.Time) string {
	return MonthOf(t).Label()
}

package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestMonth_Bounds(t *testing.T) {
	tests := []struct {
		name      string
		month     Month
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"january", Month{2025, time.January}, date(2025, 1, 1), date(2025, 1, 31)},
		{"february non leap", Month{2025, time.February}, date(2025, 2, 1), date(2025, 2, 28)},
		{"february leap", Month{2024, time.February}, date(2024, 2, 1), date(2024, 2, 29)},
		{"december", Month{2024, time.December}, date(2024, 12, 1), date(2024, 12, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStart, tt.month.Start())
			assert.Equal(t, tt.wantEnd, tt.month.End())
		})
	}
}

func TestMonthFromString(t *testing.T) {
	m, err := MonthFromString("2025-02")
	require.NoError(t, err)
	assert.Equal(t, Month{2025, time.February}, m)
	assert.Equal(t, "2025-02", m.String())
	assert.Equal(t, "Feb 2025", m.Label())
	assert.Equal(t, Month{2025, time.March}, m.Next())

	_, err = MonthFromString("2025/02")
	assert.Error(t, err)
}

func TestContains(t *testing.T) {
	start := date(2025, 1, 1)
	end := date(2025, 1, 31)

	assert.True(t, Contains(date(2025, 1, 1), start, end), "start is inclusive")
	assert.True(t, Contains(date(2025, 1, 31), start, end), "end is inclusive")
	assert.True(t, Contains(time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC), start, end), "time of day is ignored")
	assert.False(t, Contains(date(2025, 2, 1), start, end))
	assert.False(t, Contains(date(2024, 12, 31), start, end))
	assert.False(t, Contains(time.Time{}, start, end), "zero date never matches")
}

func TestContains_UsesLocalCalendarDay(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)
	// 00:30 on Feb 1st in Warsaw is still Jan 31st in UTC, the local day wins
	paid := time.Date(2025, 2, 1, 0, 30, 0, 0, warsaw)

	assert.True(t, Month{2025, time.February}.Contains(paid))
	assert.False(t, Month{2025, time.January}.Contains(paid))
}

func TestOverlaps(t *testing.T) {
	jan := Month{2025, time.January}

	assert.True(t, Overlaps(date(2024, 12, 1), date(2025, 1, 1), jan.Start(), jan.End()))
	assert.True(t, Overlaps(time.Time{}, time.Time{}, jan.Start(), jan.End()), "open range")
	assert.False(t, Overlaps(date(2025, 2, 1), date(2025, 3, 1), jan.Start(), jan.End()))
	assert.False(t, Overlaps(date(2024, 1, 1), date(2024, 12, 31), jan.Start(), jan.End()))
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2025-01-28")
	assert.True(t, ok)
	assert.Equal(t, date(2025, 1, 28), d)

	d, ok = ParseDate("2025-01-28T10:15:00Z")
	assert.True(t, ok)
	assert.Equal(t, date(2025, 1, 28), d)

	for _, invalid := range []string{"", "  ", "28/01/2025", "2025-13-01", "not a date"} {
		d, ok = ParseDate(invalid)
		assert.False(t, ok, invalid)
		assert.True(t, d.IsZero(), invalid)
	}
}

func TestFormatDateAndLabel(t *testing.T) {
	assert.Equal(t, "2025-01-28", FormatDate(date(2025, 1, 28)))
	assert.Equal(t, "", FormatDate(time.Time{}))
	assert.Equal(t, "Jan 2025", Label(date(2025, 1, 28)))
}

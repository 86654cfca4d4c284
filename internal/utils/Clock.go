package utils

import (
	"time"
	_ "time/tzdata"

	"github.com/klokku/budgetwise/pkg/period"
	log "github.com/sirupsen/logrus"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
}

type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}

// CurrentMonth returns the calendar month the clock is in for the given IANA timezone.
// An empty or unknown timezone means UTC.
func CurrentMonth(clock Clock, timezone string) period.Month {
	location := time.UTC
	if timezone != "" {
		loaded, err := time.LoadLocation(timezone)
		if err != nil {
			log.Warnf("unknown timezone %q, using UTC: %v", timezone, err)
		} else {
			location = loaded
		}
	}
	return period.MonthOf(clock.Now().In(location))
}

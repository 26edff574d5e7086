package util

import (
	"time"

	log "github.com/sirupsen/logrus"
)

const PeriodLayout = "2006-01-02"

// LoadLocation falls back to UTC when name is unknown to the system.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warnf("load location %s failed: %v, using UTC", name, err)
		return time.UTC
	}
	return loc
}

// PeriodOf is the accrual period key of t in loc.
func PeriodOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(PeriodLayout)
}

// AddMonths moves t by n calendar months, clamping the day to the end of
// the target month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

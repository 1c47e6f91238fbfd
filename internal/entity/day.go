package entity

import (
	"fmt"
	"time"
)

// Day is a calendar date expressed as the number of days since 1970-01-01.
type Day int32

const dayLayout = "2006-01-02"

// DayOf returns the calendar date of t in loc. A nil loc means UTC.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return Day(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return 0, fmt.Errorf("parse day %q: %w", s, err)
	}
	return DayOf(t, time.UTC), nil
}

// Time returns midnight UTC of the date.
func (d Day) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

// AddDays returns the date n days later.
func (d Day) AddDays(n int) Day { return d + Day(n) }

func (d Day) String() string {
	return d.Time().Format(dayLayout)
}

package series

import "time"

// Calendar answers whether a date is an exchange trading day. It is an
// optional input to alignment: when the caller has an authoritative
// calendar the aligner marks trading days from it instead of from the
// presence of genuine observations.
type Calendar interface {
	IsTradingDay(date time.Time) bool
}

// WeekdayCalendar is the Mon-Fri fallback used when no authoritative
// calendar is available.
type WeekdayCalendar struct{}

func (WeekdayCalendar) IsTradingDay(date time.Time) bool {
	wd := date.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// DateSetCalendar is an authoritative calendar backed by an explicit
// set of trading dates.
type DateSetCalendar struct {
	dates map[time.Time]struct{}
}

// NewDateSetCalendar builds a calendar from a list of trading dates.
func NewDateSetCalendar(dates []time.Time) *DateSetCalendar {
	set := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		set[DateOnly(d)] = struct{}{}
	}
	return &DateSetCalendar{dates: set}
}

func (c *DateSetCalendar) IsTradingDay(date time.Time) bool {
	_, ok := c.dates[DateOnly(date)]
	return ok
}

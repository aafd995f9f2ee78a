package strategy

import (
	"time"

	"github.com/wonny/fundsim/internal/series"
)

// generateDCA emits invest(amount) signals on the scheduled dates and
// holds everywhere else.
func generateDCA(s *series.AlignedSeries, p *DCAParams) []Signal {
	signals := holdSignals(s.Len())

	var selected []int
	switch {
	case p.IntervalDays > 0:
		selected = dcaIntervalDates(s, p.IntervalDays)
	case p.Frequency == FrequencyMonthly:
		selected = dcaMonthlyDates(s, p.DayOfMonth)
	case p.Frequency == FrequencyWeekly:
		selected = dcaWeeklyDates(s, p.Weekday)
	}

	for _, idx := range selected {
		signals[idx] = Signal{Action: ActionInvest, Amount: p.Amount}
	}

	return signals
}

// dcaMonthlyDates picks, per calendar month, the first trading day on
// or after the configured day-of-month (clamped to the month's day
// count). A month with no such trading day is skipped.
func dcaMonthlyDates(s *series.AlignedSeries, dayOfMonth int) []int {
	var selected []int
	var doneMonth time.Time

	for i, point := range s.Points {
		if !point.IsTradingDay {
			continue
		}

		month := time.Date(point.Date.Year(), point.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		if month.Equal(doneMonth) {
			continue
		}

		target := clampDayOfMonth(month, dayOfMonth)
		if !point.Date.Before(target) {
			selected = append(selected, i)
			doneMonth = month
		}
	}

	return selected
}

// dcaWeeklyDates picks, per Monday-anchored week, the first trading
// day whose weekday is on or after the configured weekday.
func dcaWeeklyDates(s *series.AlignedSeries, weekday time.Weekday) []int {
	var selected []int
	var doneWeek time.Time

	for i, point := range s.Points {
		if !point.IsTradingDay {
			continue
		}

		week := mondayOf(point.Date)
		if week.Equal(doneWeek) {
			continue
		}

		if mondayRank(point.Date.Weekday()) >= mondayRank(weekday) {
			selected = append(selected, i)
			doneWeek = week
		}
	}

	return selected
}

// dcaIntervalDates picks the first trading day, then the first trading
// day at least intervalDays calendar days after the previous pick.
func dcaIntervalDates(s *series.AlignedSeries, intervalDays int) []int {
	var selected []int
	var last time.Time

	for i, point := range s.Points {
		if !point.IsTradingDay {
			continue
		}
		if !last.IsZero() && point.Date.Sub(last) < time.Duration(intervalDays)*24*time.Hour {
			continue
		}
		selected = append(selected, i)
		last = point.Date
	}

	return selected
}

func clampDayOfMonth(month time.Time, day int) time.Time {
	daysInMonth := month.AddDate(0, 1, -1).Day()
	if day > daysInMonth {
		day = daysInMonth
	}
	return time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, time.UTC)
}

func mondayOf(d time.Time) time.Time {
	return d.AddDate(0, 0, -mondayRank(d.Weekday()))
}

// mondayRank maps weekdays to 0..6 starting from Monday.
func mondayRank(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

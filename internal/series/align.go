package series

import (
	"errors"
	"sort"
	"time"
)

// Alignment failures. Both are unrecoverable for the request; the
// caller decides whether to widen the range or give up.
var (
	ErrEmptyInput    = errors.New("series: no observations")
	ErrNoDataInRange = errors.New("series: no observations inside requested range")
)

// Align normalizes raw observations onto a contiguous daily grid over
// [start, end]. Missing values are forward-filled from the most recent
// earlier observation; a leading gap is back-filled from the first
// known observation. A date is a trading day iff it carries a genuine
// observation.
func Align(obs []Observation, start, end time.Time) (*AlignedSeries, error) {
	return align(obs, start, end, nil)
}

// AlignWithCalendar is the calendar-aware variant: trading days are
// taken from the supplied calendar rather than from observation
// presence. A nil calendar falls back to Mon-Fri weekdays.
func AlignWithCalendar(obs []Observation, start, end time.Time, cal Calendar) (*AlignedSeries, error) {
	if cal == nil {
		cal = WeekdayCalendar{}
	}
	return align(obs, start, end, cal)
}

func align(obs []Observation, start, end time.Time, cal Calendar) (*AlignedSeries, error) {
	if len(obs) == 0 {
		return nil, ErrEmptyInput
	}

	start = DateOnly(start)
	end = DateOnly(end)
	if end.Before(start) {
		return nil, ErrNoDataInRange
	}

	// Sort a copy; duplicate dates resolve to the later entry.
	sorted := make([]Observation, len(obs))
	copy(sorted, obs)
	for i := range sorted {
		sorted[i].Date = DateOnly(sorted[i].Date)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	deduped := sorted[:0]
	for _, o := range sorted {
		if len(deduped) > 0 && deduped[len(deduped)-1].Date.Equal(o.Date) {
			deduped[len(deduped)-1] = o
			continue
		}
		deduped = append(deduped, o)
	}

	inRange := false
	for _, o := range deduped {
		if !o.Date.Before(start) && !o.Date.After(end) {
			inRange = true
			break
		}
	}
	if !inRange {
		return nil, ErrNoDataInRange
	}

	days := int(end.Sub(start).Hours()/24) + 1
	points := make([]PricePoint, 0, days)

	// Walk the grid with a cursor over the sorted observations.
	cursor := 0
	var lastValue float64
	var lastObsDate time.Time

	// Observations strictly before the grid seed the fill state.
	for cursor < len(deduped) && deduped[cursor].Date.Before(start) {
		lastValue = deduped[cursor].Value
		lastObsDate = deduped[cursor].Date
		cursor++
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		observed := false
		if cursor < len(deduped) && deduped[cursor].Date.Equal(d) {
			lastValue = deduped[cursor].Value
			lastObsDate = deduped[cursor].Date
			observed = true
			cursor++
		}

		trading := observed
		if cal != nil {
			trading = cal.IsTradingDay(d)
		}

		points = append(points, PricePoint{
			Date:            d,
			IsTradingDay:    trading,
			Value:           lastValue,
			LastTradingDate: lastObsDate,
		})
	}

	// Back-fill the leading gap from the first genuine observation.
	first := firstObservationOnOrAfter(deduped, start)
	for i := range points {
		if !points[i].LastTradingDate.IsZero() {
			break
		}
		points[i].Value = first.Value
		points[i].LastTradingDate = first.Date
	}

	return &AlignedSeries{Points: points}, nil
}

func firstObservationOnOrAfter(sorted []Observation, start time.Time) Observation {
	for _, o := range sorted {
		if !o.Date.Before(start) {
			return o
		}
	}
	return sorted[len(sorted)-1]
}

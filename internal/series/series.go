package series

import (
	"time"
)

// Observation is a single raw (date, value) pair from a data provider.
// Callers may pass them unsorted, duplicated or sparse.
type Observation struct {
	Date  time.Time
	Value float64
}

// PricePoint is one day on the aligned grid. Value carries the closing
// valuation for the date, filled forward from the most recent genuine
// observation on non-trading days. LastTradingDate is the most recent
// date with a genuine observation, which is what lookback computations
// count over.
type PricePoint struct {
	Date            time.Time `json:"date"`
	Value           float64   `json:"value"`
	IsTradingDay    bool      `json:"is_trading_day"`
	LastTradingDate time.Time `json:"last_trading_date"`
}

// AlignedSeries is an ordered sequence of PricePoint over a contiguous
// daily range: one entry per calendar date, strictly increasing, no
// gaps. It is immutable once built and owned by a single run.
type AlignedSeries struct {
	Points []PricePoint
}

// Len returns the number of days on the grid.
func (s *AlignedSeries) Len() int {
	return len(s.Points)
}

// Values returns the closing values in date order.
func (s *AlignedSeries) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// TradingDayIndexes returns the grid indexes of genuine trading days,
// in date order.
func (s *AlignedSeries) TradingDayIndexes() []int {
	var idx []int
	for i, p := range s.Points {
		if p.IsTradingDay {
			idx = append(idx, i)
		}
	}
	return idx
}

// IndexOf returns the grid index of the given date.
func (s *AlignedSeries) IndexOf(date time.Time) (int, bool) {
	if len(s.Points) == 0 {
		return 0, false
	}
	d := DateOnly(date)
	offset := int(d.Sub(s.Points[0].Date).Hours() / 24)
	if offset < 0 || offset >= len(s.Points) {
		return 0, false
	}
	return offset, true
}

// DateOnly truncates a timestamp to midnight UTC. Every date on the
// grid is stored in this form.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

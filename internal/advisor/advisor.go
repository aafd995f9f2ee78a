package advisor

import (
	"time"

	"github.com/wonny/fundsim/internal/series"
	"github.com/wonny/fundsim/internal/strategy"
)

// Advice is a single-date threshold classification plus the exact
// reference values it was computed from, so the caller can render why.
type Advice struct {
	Action         strategy.Action `json:"action"`
	EstimatedValue float64         `json:"estimated_value"`
	LookbackReturn float64         `json:"lookback_return"`
	ReferenceValue float64         `json:"reference_value"`
	ReferenceDate  time.Time       `json:"reference_date"`
}

// Evaluate classifies a live estimated price against the recorded
// series. The reference sits exactly LookbackDays recorded trading
// days in the past, found by walking trading days backward rather
// than subtracting calendar days. The comparator is shared with the
// backtest signal generator, so advice on a historical date matches
// what a backtest would have produced there.
func Evaluate(s *series.AlignedSeries, estimatedValue float64, p *strategy.ThresholdParams) (*Advice, error) {
	// Only the comparator fields matter here; advice carries no trade
	// amount, so a caller need not set one.
	if err := strategy.ValidateThresholdComparator(p); err != nil {
		return nil, err
	}

	tradingIdx := s.TradingDayIndexes()
	if len(tradingIdx) < p.LookbackDays {
		return nil, strategy.ErrInsufficientHistory
	}

	ref := s.Points[tradingIdx[len(tradingIdx)-p.LookbackDays]]
	lookbackReturn := (estimatedValue/ref.Value - 1) * 100

	return &Advice{
		Action:         strategy.Classify(lookbackReturn, p),
		EstimatedValue: estimatedValue,
		LookbackReturn: lookbackReturn,
		ReferenceValue: ref.Value,
		ReferenceDate:  ref.Date,
	}, nil
}

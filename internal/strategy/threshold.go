package strategy

import (
	"github.com/wonny/fundsim/internal/series"
)

// generateThreshold emits buy/sell signals from the lookback return on
// each trading day. The reference value sits exactly LookbackDays
// trading days earlier; counting calendar days instead would stretch
// the window across weekends and holidays.
//
// The sell condition is checked before the buy condition. With
// buy_pct < 0 < sell_pct both cannot fire on the same day, but in the
// degenerate case sell-over-buy is the documented priority.
func generateThreshold(s *series.AlignedSeries, p *ThresholdParams) []Signal {
	signals := holdSignals(s.Len())
	tradingIdx := s.TradingDayIndexes()

	for t, gridIdx := range tradingIdx {
		refT := t - p.LookbackDays
		if refT < 0 {
			// Insufficient history, stay on hold
			continue
		}

		refPoint := s.Points[tradingIdx[refT]]
		point := s.Points[gridIdx]
		lookbackReturn := (point.Value/refPoint.Value - 1) * 100

		sig := Signal{
			Action:         Classify(lookbackReturn, p),
			LookbackReturn: lookbackReturn,
			ReferenceValue: refPoint.Value,
			ReferenceDate:  refPoint.Date,
		}
		if sig.Action == ActionBuy {
			sig.Amount = p.Amount
		}

		signals[gridIdx] = sig
	}

	return signals
}

// Classify applies the threshold comparator to a single lookback
// return. The backtest and the advisory evaluator both go through
// this function so the two can never drift apart.
func Classify(lookbackReturn float64, p *ThresholdParams) Action {
	if lookbackReturn >= p.SellPct {
		return ActionSell
	}
	if lookbackReturn <= p.BuyPct {
		return ActionBuy
	}
	return ActionHold
}

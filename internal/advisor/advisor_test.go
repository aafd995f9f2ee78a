package advisor

import (
	"errors"
	"testing"
	"time"

	"github.com/wonny/fundsim/internal/series"
	"github.com/wonny/fundsim/internal/strategy"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dailySeries(t *testing.T, start time.Time, values []float64) *series.AlignedSeries {
	t.Helper()
	obs := make([]series.Observation, len(values))
	for i, v := range values {
		obs[i] = series.Observation{Date: start.AddDate(0, 0, i), Value: v}
	}
	s, err := series.Align(obs, start, start.AddDate(0, 0, len(values)-1))
	if err != nil {
		t.Fatalf("Align() failed: %v", err)
	}
	return s
}

func TestEvaluate(t *testing.T) {
	s := dailySeries(t, date(2024, 1, 1), []float64{1.0, 1.0, 1.0})
	p := &strategy.ThresholdParams{BuyPct: -5, SellPct: 10, LookbackDays: 3, Amount: 1000}

	tests := []struct {
		name      string
		estimated float64
		want      strategy.Action
	}{
		{"deep drop triggers buy", 0.9, strategy.ActionBuy},
		{"flat holds", 1.0, strategy.ActionHold},
		{"strong rise triggers sell", 1.15, strategy.ActionSell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advice, err := Evaluate(s, tt.estimated, p)
			if err != nil {
				t.Fatalf("Evaluate() failed: %v", err)
			}
			if advice.Action != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, advice.Action)
			}
			// Lookback of 3 over 3 recorded trading days references
			// the earliest one
			if !advice.ReferenceDate.Equal(date(2024, 1, 1)) {
				t.Errorf("Expected reference date Jan 1, got %v", advice.ReferenceDate)
			}
			if advice.ReferenceValue != 1.0 {
				t.Errorf("Expected reference value 1.0, got %v", advice.ReferenceValue)
			}
		})
	}
}

func TestEvaluateInsufficientHistory(t *testing.T) {
	s := dailySeries(t, date(2024, 1, 1), []float64{1.0, 1.0})
	p := &strategy.ThresholdParams{BuyPct: -5, SellPct: 10, LookbackDays: 5, Amount: 1000}

	_, err := Evaluate(s, 1.0, p)
	if !errors.Is(err, strategy.ErrInsufficientHistory) {
		t.Errorf("Expected ErrInsufficientHistory, got %v", err)
	}
}

func TestEvaluateInvalidParams(t *testing.T) {
	s := dailySeries(t, date(2024, 1, 1), []float64{1.0, 1.0})
	p := &strategy.ThresholdParams{BuyPct: 5, SellPct: 10, LookbackDays: 1, Amount: 1000}

	var vErr strategy.ValidationError
	_, err := Evaluate(s, 1.0, p)
	if !errors.As(err, &vErr) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

// TestEvaluateWithoutAmount verifies that advice needs no trade
// amount; the HTTP and CLI advisory callers never set one.
func TestEvaluateWithoutAmount(t *testing.T) {
	s := dailySeries(t, date(2024, 1, 1), []float64{1.0, 1.0, 1.0})
	p := &strategy.ThresholdParams{BuyPct: -5, SellPct: 10, LookbackDays: 3}

	advice, err := Evaluate(s, 0.9, p)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if advice.Action != strategy.ActionBuy {
		t.Errorf("Expected buy, got %v", advice.Action)
	}
}

// TestEvaluateMatchesBacktest feeds the advisor the same inputs the
// backtest classifier saw on each historical trading day and requires
// identical classifications.
func TestEvaluateMatchesBacktest(t *testing.T) {
	values := []float64{1.00, 0.97, 0.93, 0.90, 0.95, 1.02, 1.08, 1.01, 0.94, 0.99}
	start := date(2024, 1, 1)
	s := dailySeries(t, start, values)
	p := &strategy.ThresholdParams{BuyPct: -5, SellPct: 5, LookbackDays: 3, Amount: 1000}

	signals, err := strategy.Generate(s, &strategy.Config{
		Kind: strategy.KindThreshold, Threshold: p,
	})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	for d := p.LookbackDays; d < len(values); d++ {
		// Recorded history strictly before day d
		history := dailySeries(t, start, values[:d])

		advice, err := Evaluate(history, values[d], p)
		if err != nil {
			t.Fatalf("Evaluate() failed at day %d: %v", d, err)
		}

		if advice.Action != signals[d].Action {
			t.Errorf("Day %d: advisor says %v, backtest says %v",
				d, advice.Action, signals[d].Action)
		}
		if !advice.ReferenceDate.Equal(signals[d].ReferenceDate) {
			t.Errorf("Day %d: advisor reference %v, backtest reference %v",
				d, advice.ReferenceDate, signals[d].ReferenceDate)
		}
	}
}

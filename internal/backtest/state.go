package backtest

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// State is the single cash/shares balance a simulation mutates, once
// per date and strictly in date order. ExternalCapital accumulates
// only cash injected from outside the strategy; proceeds recycled from
// the strategy's own sales never count.
type State struct {
	Cash            decimal.Decimal `json:"cash"`
	Shares          decimal.Decimal `json:"shares"`
	ExternalCapital decimal.Decimal `json:"external_capital"`
}

// ValuePoint is the daily valuation snapshot.
type ValuePoint struct {
	Date          time.Time       `json:"date"`
	Cash          decimal.Decimal `json:"cash"`
	Shares        decimal.Decimal `json:"shares"`
	HoldingsValue decimal.Decimal `json:"holdings_value"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// InvariantViolationError reports a negative cash or share balance.
// It marks a logic defect, never bad input, and always aborts the run.
type InvariantViolationError struct {
	Date  time.Time
	Field string
	Value decimal.Decimal
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation on %s: %s = %s",
		e.Date.Format("2006-01-02"), e.Field, e.Value.String())
}

func (s *State) check(date time.Time) error {
	if s.Cash.IsNegative() {
		return &InvariantViolationError{Date: date, Field: "cash", Value: s.Cash}
	}
	if s.Shares.IsNegative() {
		return &InvariantViolationError{Date: date, Field: "shares", Value: s.Shares}
	}
	return nil
}

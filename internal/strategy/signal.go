package strategy

import (
	"errors"
	"time"
)

// ErrInsufficientHistory marks a date where a lookback or indicator
// window cannot be computed yet. Inside signal generation it degrades
// to hold; the advisory path surfaces it to the caller.
var ErrInsufficientHistory = errors.New("strategy: insufficient history")

// Action is a per-date decision.
type Action string

const (
	ActionHold Action = "hold"

	// Threshold strategy
	ActionBuy  Action = "buy"  // buy a fixed amount
	ActionSell Action = "sell" // liquidate all shares

	// DCA
	ActionInvest Action = "invest"

	// Position-based variants
	ActionEnterLong Action = "enter_long"
	ActionExitLong  Action = "exit_long"
)

// Signal is the decision for one date on the aligned grid. For
// threshold signals the reference fields carry the comparison inputs
// so the caller can render why the decision fired.
type Signal struct {
	Action Action  `json:"action"`
	Amount float64 `json:"amount,omitempty"`

	LookbackReturn float64   `json:"lookback_return,omitempty"` // percent
	ReferenceValue float64   `json:"reference_value,omitempty"`
	ReferenceDate  time.Time `json:"reference_date,omitempty"`
}

func holdSignals(n int) []Signal {
	signals := make([]Signal, n)
	for i := range signals {
		signals[i].Action = ActionHold
	}
	return signals
}

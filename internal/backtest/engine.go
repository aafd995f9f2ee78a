package backtest

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wonny/fundsim/internal/series"
	"github.com/wonny/fundsim/internal/strategy"
)

// Result is the full outcome of one engine run.
type Result struct {
	Values       []ValuePoint  `json:"values"`
	Transactions []Transaction `json:"transactions"`
	Final        State         `json:"final"`

	// TotalInvested is the cumulative external capital: initial cash
	// plus every top-up drawn during the run.
	TotalInvested decimal.Decimal `json:"total_invested"`
}

// Run applies the signal sequence to a fresh state in strict date
// order. Trades execute at the day's closing value; an unfundable buy
// is silently downgraded to hold. The fold is sequential because each
// day's outcome depends on the prior day's cash and shares.
func Run(s *series.AlignedSeries, signals []strategy.Signal, params Params) (*Result, error) {
	if s.Len() != len(signals) {
		return nil, fmt.Errorf("backtest: %d signals for %d dates", len(signals), s.Len())
	}

	state := State{
		Cash:            params.InitialCash,
		Shares:          decimal.Zero,
		ExternalCapital: params.InitialCash,
	}

	result := &Result{
		Values: make([]ValuePoint, 0, s.Len()),
	}

	for i, point := range s.Points {
		price := decimal.NewFromFloat(point.Value)
		sig := signals[i]

		var err error
		switch sig.Action {
		case strategy.ActionSell, strategy.ActionExitLong:
			err = executeSell(&state, result, point, price, params, string(sig.Action))
		case strategy.ActionBuy, strategy.ActionInvest, strategy.ActionEnterLong:
			err = executeBuy(&state, result, point, price, params, sig)
		case strategy.ActionHold:
			// Nothing to do
		}
		if err != nil {
			return nil, err
		}

		if params.FinalLiquidation && i == s.Len()-1 && state.Shares.IsPositive() {
			if err := executeSell(&state, result, point, price, params, "final_liquidation"); err != nil {
				return nil, err
			}
		}

		holdings := state.Shares.Mul(price)
		result.Values = append(result.Values, ValuePoint{
			Date:          point.Date,
			Cash:          state.Cash,
			Shares:        state.Shares,
			HoldingsValue: holdings,
			TotalValue:    state.Cash.Add(holdings),
		})
	}

	result.Final = state
	result.TotalInvested = state.ExternalCapital
	return result, nil
}

// executeBuy funds and executes a buy-side signal under the run's
// policy. Commission is deducted from the traded amount before shares
// are bought.
func executeBuy(state *State, result *Result, point series.PricePoint, price decimal.Decimal, params Params, sig strategy.Signal) error {
	amount := decimal.NewFromFloat(sig.Amount)
	if amount.IsZero() {
		amount = params.FixedAmount
	}

	switch params.Policy {
	case PolicyFullAllocation:
		amount = state.Cash
	case PolicyFixedAmount:
		if state.Cash.LessThan(amount) {
			// Unfundable, downgrade to hold
			return nil
		}
	case PolicyExternalTopUp:
		if shortfall := amount.Sub(state.Cash); shortfall.IsPositive() {
			state.Cash = state.Cash.Add(shortfall)
			state.ExternalCapital = state.ExternalCapital.Add(shortfall)
		}
	}

	if !amount.IsPositive() {
		return nil
	}

	commission := amount.Mul(params.CommissionRate)
	shares := amount.Sub(commission).Div(price)

	state.Cash = state.Cash.Sub(amount)
	state.Shares = state.Shares.Add(shares)
	if err := state.check(point.Date); err != nil {
		return err
	}

	result.Transactions = append(result.Transactions, Transaction{
		Date:           point.Date,
		Type:           TransactionBuy,
		Price:          price,
		Shares:         shares,
		Amount:         amount,
		Commission:     commission,
		Reason:         string(sig.Action),
		ReferencePrice: decimal.NewFromFloat(sig.ReferenceValue),
		ReferenceDate:  sig.ReferenceDate,
	})
	return nil
}

// executeSell liquidates all shares. A sell with nothing to sell is a
// no-op, not an error.
func executeSell(state *State, result *Result, point series.PricePoint, price decimal.Decimal, params Params, reason string) error {
	if !state.Shares.IsPositive() {
		return nil
	}

	shares := state.Shares
	gross := shares.Mul(price)
	commission := gross.Mul(params.CommissionRate)

	state.Cash = state.Cash.Add(gross).Sub(commission)
	state.Shares = decimal.Zero
	if err := state.check(point.Date); err != nil {
		return err
	}

	result.Transactions = append(result.Transactions, Transaction{
		Date:       point.Date,
		Type:       TransactionSell,
		Price:      price,
		Shares:     shares,
		Amount:     gross.Sub(commission),
		Commission: commission,
		Reason:     reason,
	})
	return nil
}

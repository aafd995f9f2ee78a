package backtest

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/fundsim/internal/strategy"
)

// Policy selects how a buy-side signal is funded.
type Policy string

const (
	// PolicyFullAllocation invests 100% of available cash on entry
	// and liquidates 100% of shares on exit.
	PolicyFullAllocation Policy = "full_allocation"

	// PolicyFixedAmount invests a configured constant amount; a buy
	// that cash cannot cover is downgraded to hold.
	PolicyFixedAmount Policy = "fixed_amount"

	// PolicyExternalTopUp funds each buy at the signal's amount,
	// drawing any shortfall from an uncapped external capital source.
	// Only the drawn shortfall counts as invested capital.
	PolicyExternalTopUp Policy = "external_top_up"
)

// Params configures one engine run.
type Params struct {
	Policy         Policy
	InitialCash    decimal.Decimal
	FixedAmount    decimal.Decimal // PolicyFixedAmount only
	CommissionRate decimal.Decimal // flat rate applied to both sides, 0 disables

	// FinalLiquidation forces one sell of all remaining shares on the
	// last date, so accumulation strategies report a comparable final
	// value.
	FinalLiquidation bool
}

// DefaultParamsFor maps a strategy variant onto its natural execution
// policy: threshold and DCA runs are funded externally per signal, the
// position-based variants run a lump sum at full allocation.
func DefaultParamsFor(cfg *strategy.Config, initialCash, commissionRate decimal.Decimal) Params {
	switch cfg.Kind {
	case strategy.KindThreshold:
		return Params{
			Policy:         PolicyExternalTopUp,
			CommissionRate: commissionRate,
		}
	case strategy.KindDCA:
		return Params{
			Policy:           PolicyExternalTopUp,
			CommissionRate:   commissionRate,
			FinalLiquidation: true,
		}
	default:
		return Params{
			Policy:         PolicyFullAllocation,
			InitialCash:    initialCash,
			CommissionRate: commissionRate,
		}
	}
}

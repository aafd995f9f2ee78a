package perf

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"github.com/wonny/fundsim/internal/backtest"
)

// Trading periods per year used for annualization.
const periodsPerYear = 252

// DefaultRiskFreeRate is the annual risk-free rate used for the
// Sharpe ratio when the caller does not configure one.
const DefaultRiskFreeRate = 0.03

// Report holds the derived performance metrics of one run. It is
// recomputed fresh per run and never mutated in place.
type Report struct {
	TotalReturnPct          float64         `json:"total_return_pct"`
	AnnualizedReturnPct     float64         `json:"annualized_return_pct"`
	AnnualizedVolatilityPct float64         `json:"annualized_volatility_pct"`
	SharpeRatio             float64         `json:"sharpe_ratio"`
	MaxDrawdownPct          float64         `json:"max_drawdown_pct"`
	FinalValue              decimal.Decimal `json:"final_value"`
	TotalInvested           decimal.Decimal `json:"total_invested"`
}

// Analyzer computes performance metrics from a value series. All
// metrics degrade to 0 on empty or degenerate input; a run that never
// trades is a valid outcome, not an error.
type Analyzer struct {
	riskFreeRate float64
}

// NewAnalyzer creates an analyzer with the given annual risk-free
// rate. Pass DefaultRiskFreeRate when no override is configured.
func NewAnalyzer(riskFreeRate float64) *Analyzer {
	return &Analyzer{riskFreeRate: riskFreeRate}
}

// Analyze derives the full report from an engine result.
func (a *Analyzer) Analyze(result *backtest.Result) Report {
	values := make([]float64, len(result.Values))
	for i, v := range result.Values {
		values[i], _ = v.TotalValue.Float64()
	}

	report := Report{
		TotalInvested:  result.TotalInvested,
		MaxDrawdownPct: MaxDrawdown(values),
	}
	if len(result.Values) > 0 {
		report.FinalValue = result.Values[len(result.Values)-1].TotalValue
	} else {
		report.FinalValue = decimal.Zero
	}

	// Total return is measured against external capital; a run with
	// zero external capital has undefined return and reports 0.
	if result.TotalInvested.IsPositive() {
		ratio := report.FinalValue.Div(result.TotalInvested)
		f, _ := ratio.Float64()
		report.TotalReturnPct = (f - 1) * 100
	}

	// Annualization is over return periods, one fewer than values.
	report.AnnualizedReturnPct = annualizedReturn(report.TotalReturnPct/100, len(values)-1)
	report.AnnualizedVolatilityPct = annualizedVolatility(values)

	if report.AnnualizedVolatilityPct != 0 {
		report.SharpeRatio = (report.AnnualizedReturnPct/100 - a.riskFreeRate) /
			(report.AnnualizedVolatilityPct / 100)
	}

	return report
}

// MaxDrawdown returns the worst peak-to-trough decline of a value
// series as a negative percentage, 0 for empty or flat input.
func MaxDrawdown(values []float64) float64 {
	maxDrawdown := 0.0
	runningMax := math.Inf(-1)

	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v > runningMax {
			runningMax = v
		}
		if runningMax <= 0 {
			continue
		}
		drawdown := (v - runningMax) / runningMax * 100
		if drawdown < maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown
}

func annualizedReturn(totalReturn float64, periods int) float64 {
	if periods <= 0 || totalReturn <= -1 {
		return 0
	}
	years := float64(periods) / periodsPerYear
	if years == 0 {
		return 0
	}
	return (math.Pow(1+totalReturn, 1/years) - 1) * 100
}

// annualizedVolatility is the standard deviation of daily percentage
// changes scaled by sqrt(252).
func annualizedVolatility(values []float64) float64 {
	returns := dailyReturns(values)
	if len(returns) < 2 {
		return 0
	}

	sd, err := stats.StandardDeviationSample(stats.Float64Data(returns))
	if err != nil {
		return 0
	}
	return sd * math.Sqrt(periodsPerYear) * 100
}

func dailyReturns(values []float64) []float64 {
	var returns []float64
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 || math.IsNaN(values[i-1]) || math.IsNaN(values[i]) {
			continue
		}
		returns = append(returns, values[i]/values[i-1]-1)
	}
	return returns
}

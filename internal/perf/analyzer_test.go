package perf

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/fundsim/internal/backtest"
)

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{
			name:   "peak to trough decline",
			values: []float64{100, 120, 90, 95},
			want:   -25.0, // (90-120)/120 * 100
		},
		{
			name:   "monotonic rise has no drawdown",
			values: []float64{100, 110, 120},
			want:   0,
		},
		{
			name:   "empty series",
			values: nil,
			want:   0,
		},
		{
			name:   "all NaN",
			values: []float64{math.NaN(), math.NaN()},
			want:   0,
		},
		{
			name:   "flat series",
			values: []float64{100, 100, 100},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxDrawdown(tt.values)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("MaxDrawdown(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func resultFromValues(totalInvested float64, values []float64) *backtest.Result {
	result := &backtest.Result{
		TotalInvested: decimal.NewFromFloat(totalInvested),
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		result.Values = append(result.Values, backtest.ValuePoint{
			Date:       start.AddDate(0, 0, i),
			TotalValue: decimal.NewFromFloat(v),
		})
	}
	return result
}

func TestAnalyzeTotalReturn(t *testing.T) {
	a := NewAnalyzer(DefaultRiskFreeRate)

	report := a.Analyze(resultFromValues(1000, []float64{1000, 1050, 1100}))

	if math.Abs(report.TotalReturnPct-10.0) > 1e-9 {
		t.Errorf("Expected total return 10%%, got %v", report.TotalReturnPct)
	}

	want := decimal.NewFromFloat(1100)
	if !report.FinalValue.Equal(want) {
		t.Errorf("Expected final value 1100, got %v", report.FinalValue)
	}
}

func TestAnalyzeZeroInvestedReportsZero(t *testing.T) {
	a := NewAnalyzer(DefaultRiskFreeRate)

	// A strategy that never trades has zero external capital; return
	// must be 0, not NaN or an error.
	report := a.Analyze(resultFromValues(0, []float64{0, 0, 0}))

	if report.TotalReturnPct != 0 {
		t.Errorf("Expected total return 0, got %v", report.TotalReturnPct)
	}
	if math.IsNaN(report.SharpeRatio) {
		t.Error("Sharpe ratio must not be NaN")
	}
}

func TestAnalyzeEmptyResult(t *testing.T) {
	a := NewAnalyzer(DefaultRiskFreeRate)

	report := a.Analyze(&backtest.Result{TotalInvested: decimal.Zero})

	if report.TotalReturnPct != 0 || report.AnnualizedReturnPct != 0 ||
		report.AnnualizedVolatilityPct != 0 || report.SharpeRatio != 0 ||
		report.MaxDrawdownPct != 0 {
		t.Errorf("Expected all-zero report for empty input, got %+v", report)
	}
}

func TestAnalyzeAnnualization(t *testing.T) {
	a := NewAnalyzer(DefaultRiskFreeRate)

	// 252 daily returns (253 values) with a 10% total gain annualizes
	// to exactly 10%
	values := make([]float64, 253)
	for i := range values {
		values[i] = 1000 + 100*float64(i)/252
	}
	report := a.Analyze(resultFromValues(1000, values))

	if math.Abs(report.AnnualizedReturnPct-10.0) > 0.01 {
		t.Errorf("Expected annualized return ~10%%, got %v", report.AnnualizedReturnPct)
	}

	if report.AnnualizedVolatilityPct <= 0 {
		t.Errorf("Expected positive volatility, got %v", report.AnnualizedVolatilityPct)
	}

	if report.SharpeRatio == 0 {
		t.Error("Expected nonzero Sharpe ratio")
	}
}

func TestAnalyzeAnnualizationUsesReturnPeriods(t *testing.T) {
	a := NewAnalyzer(DefaultRiskFreeRate)

	// Two values span one return period, so a 0.1% gain compounds over
	// 252 periods, not 126.
	report := a.Analyze(resultFromValues(1000, []float64{1000, 1001}))

	want := (math.Pow(1.001, 252) - 1) * 100
	if math.Abs(report.AnnualizedReturnPct-want) > 1e-9 {
		t.Errorf("Expected annualized return %v, got %v", want, report.AnnualizedReturnPct)
	}
}

func TestAnalyzeFlatSeriesHasZeroVolatility(t *testing.T) {
	a := NewAnalyzer(DefaultRiskFreeRate)

	report := a.Analyze(resultFromValues(1000, []float64{1000, 1000, 1000, 1000}))

	if report.AnnualizedVolatilityPct != 0 {
		t.Errorf("Expected zero volatility, got %v", report.AnnualizedVolatilityPct)
	}
	// Sharpe is undefined at zero volatility and reports 0
	if report.SharpeRatio != 0 {
		t.Errorf("Expected zero Sharpe at zero volatility, got %v", report.SharpeRatio)
	}
}

package backtest

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

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

func holdAll(n int) []strategy.Signal {
	signals := make([]strategy.Signal, n)
	for i := range signals {
		signals[i].Action = strategy.ActionHold
	}
	return signals
}

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestRunTotalValueIdentity(t *testing.T) {
	s := dailySeries(t, date(2024, 1, 1), []float64{10, 11, 9, 12, 8})
	signals := holdAll(s.Len())
	signals[0] = strategy.Signal{Action: strategy.ActionBuy, Amount: 1000}
	signals[2] = strategy.Signal{Action: strategy.ActionSell}
	signals[3] = strategy.Signal{Action: strategy.ActionBuy, Amount: 500}

	result, err := Run(s, signals, Params{Policy: PolicyExternalTopUp})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	for i, v := range result.Values {
		price := dec(s.Points[i].Value)
		want := v.Cash.Add(v.Shares.Mul(price))
		if !v.TotalValue.Equal(want) {
			t.Errorf("Date %d: total_value %s != cash + shares*price %s",
				i, v.TotalValue, want)
		}
		if v.Cash.IsNegative() {
			t.Errorf("Date %d: negative cash %s", i, v.Cash)
		}
		if v.Shares.IsNegative() {
			t.Errorf("Date %d: negative shares %s", i, v.Shares)
		}
	}
}

func TestRunExternalTopUp(t *testing.T) {
	s := dailySeries(t, date(2024, 1, 1), []float64{10, 10, 10})
	signals := holdAll(s.Len())
	signals[0] = strategy.Signal{Action: strategy.ActionBuy, Amount: 1000}
	signals[1] = strategy.Signal{Action: strategy.ActionBuy, Amount: 1000}

	result, err := Run(s, signals, Params{Policy: PolicyExternalTopUp})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	// Both buys are fully externally funded
	if !result.TotalInvested.Equal(dec(2000)) {
		t.Errorf("Expected total invested 2000, got %s", result.TotalInvested)
	}
	if len(result.Transactions) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(result.Transactions))
	}
	if !result.Final.Shares.Equal(dec(200)) {
		t.Errorf("Expected 200 shares, got %s", result.Final.Shares)
	}
}

func TestRunExternalTopUpOnlyShortfallCounts(t *testing.T) {
	// Buy, sell at a profit, buy again: the second buy is funded from
	// the sale proceeds, so no fresh external capital is drawn.
	s := dailySeries(t, date(2024, 1, 1), []float64{10, 20, 20})
	signals := holdAll(s.Len())
	signals[0] = strategy.Signal{Action: strategy.ActionBuy, Amount: 1000}
	signals[1] = strategy.Signal{Action: strategy.ActionSell}
	signals[2] = strategy.Signal{Action: strategy.ActionBuy, Amount: 1000}

	result, err := Run(s, signals, Params{Policy: PolicyExternalTopUp})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	// Sale yields 2000 cash; the second 1000 buy recycles it
	if !result.TotalInvested.Equal(dec(1000)) {
		t.Errorf("Expected total invested 1000, got %s", result.TotalInvested)
	}
	if !result.Final.Cash.Equal(dec(1000)) {
		t.Errorf("Expected 1000 cash left, got %s", result.Final.Cash)
	}
}

func TestRunFullAllocation(t *testing.T) {
	s := dailySeries(t, date(2024, 1, 1), []float64{10, 10, 20})
	signals := holdAll(s.Len())
	signals[0] = strategy.Signal{Action: strategy.ActionEnterLong}
	signals[2] = strategy.Signal{Action: strategy.ActionExitLong}

	result, err := Run(s, signals, Params{
		Policy:      PolicyFullAllocation,
		InitialCash: dec(1000),
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(result.Transactions) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(result.Transactions))
	}

	// 1000 cash buys 100 shares at 10, sold at 20 for 2000
	if !result.Final.Cash.Equal(dec(2000)) {
		t.Errorf("Expected final cash 2000, got %s", result.Final.Cash)
	}
	if !result.Final.Shares.Equal(decimal.Zero) {
		t.Errorf("Expected zero shares after exit, got %s", result.Final.Shares)
	}
	if !result.TotalInvested.Equal(dec(1000)) {
		t.Errorf("Expected total invested 1000, got %s", result.TotalInvested)
	}
}

func TestRunFixedAmountUnfundableBuyIsHeld(t *testing.T) {
	s := dailySeries(t, date(2024, 1, 1), []float64{10, 10})
	signals := holdAll(s.Len())
	signals[0] = strategy.Signal{Action: strategy.ActionBuy}
	signals[1] = strategy.Signal{Action: strategy.ActionBuy}

	result, err := Run(s, signals, Params{
		Policy:      PolicyFixedAmount,
		InitialCash: dec(150),
		FixedAmount: dec(100),
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	// First buy spends 100 of 150; the second cannot be funded and is
	// downgraded to hold with no transaction
	if len(result.Transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(result.Transactions))
	}
	if !result.Final.Cash.Equal(dec(50)) {
		t.Errorf("Expected 50 cash left, got %s", result.Final.Cash)
	}
}

func TestRunSellWithoutSharesIsNoOp(t *testing.T) {
	s := dailySeries(t, date(2024, 1, 1), []float64{10, 10})
	signals := holdAll(s.Len())
	signals[0] = strategy.Signal{Action: strategy.ActionSell}

	result, err := Run(s, signals, Params{Policy: PolicyExternalTopUp})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(result.Transactions) != 0 {
		t.Errorf("Expected no transactions, got %d", len(result.Transactions))
	}
}

func TestRunCommissionBothSides(t *testing.T) {
	s := dailySeries(t, date(2024, 1, 1), []float64{10, 10})
	signals := holdAll(s.Len())
	signals[0] = strategy.Signal{Action: strategy.ActionBuy, Amount: 1000}
	signals[1] = strategy.Signal{Action: strategy.ActionSell}

	result, err := Run(s, signals, Params{
		Policy:         PolicyExternalTopUp,
		CommissionRate: dec(0.001),
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(result.Transactions) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(result.Transactions))
	}

	buy := result.Transactions[0]
	if !buy.Commission.Equal(dec(1)) {
		t.Errorf("Expected buy commission 1, got %s", buy.Commission)
	}
	// 999 net of commission buys 99.9 shares at 10
	if !buy.Shares.Equal(dec(99.9)) {
		t.Errorf("Expected 99.9 shares, got %s", buy.Shares)
	}

	sell := result.Transactions[1]
	// Gross 999, commission 0.999
	if !sell.Commission.Equal(dec(0.999)) {
		t.Errorf("Expected sell commission 0.999, got %s", sell.Commission)
	}
	if !result.Final.Cash.Equal(dec(998.001)) {
		t.Errorf("Expected final cash 998.001, got %s", result.Final.Cash)
	}
}

func TestRunDCAFinalLiquidation(t *testing.T) {
	s := dailySeries(t, date(2024, 1, 1), []float64{10, 10, 12})
	signals := holdAll(s.Len())
	signals[0] = strategy.Signal{Action: strategy.ActionInvest, Amount: 600}
	signals[1] = strategy.Signal{Action: strategy.ActionInvest, Amount: 600}

	result, err := Run(s, signals, Params{
		Policy:           PolicyExternalTopUp,
		FinalLiquidation: true,
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(result.Transactions) != 3 {
		t.Fatalf("Expected 3 transactions, got %d", len(result.Transactions))
	}

	last := result.Transactions[2]
	if last.Type != TransactionSell {
		t.Errorf("Expected final transaction to be a sell, got %v", last.Type)
	}
	if last.Reason != "final_liquidation" {
		t.Errorf("Expected reason final_liquidation, got %q", last.Reason)
	}
	if !last.Date.Equal(date(2024, 1, 3)) {
		t.Errorf("Expected liquidation on the last date, got %v", last.Date)
	}

	if !result.Final.Shares.Equal(decimal.Zero) {
		t.Errorf("Expected zero shares after liquidation, got %s", result.Final.Shares)
	}
	// 120 shares sold at 12
	if !result.Final.Cash.Equal(dec(1440)) {
		t.Errorf("Expected final cash 1440, got %s", result.Final.Cash)
	}

	// The last value point reflects the post-liquidation state
	lastValue := result.Values[len(result.Values)-1]
	if !lastValue.TotalValue.Equal(dec(1440)) {
		t.Errorf("Expected last total value 1440, got %s", lastValue.TotalValue)
	}
}

func TestRunIdempotent(t *testing.T) {
	s := dailySeries(t, date(2024, 1, 1), []float64{10, 12, 9, 15, 11})
	cfg := &strategy.Config{Kind: strategy.KindThreshold, Threshold: &strategy.ThresholdParams{
		BuyPct: -5, SellPct: 10, LookbackDays: 1, Amount: 1000,
	}}

	run := func() *Result {
		signals, err := strategy.Generate(s, cfg)
		if err != nil {
			t.Fatalf("Generate() failed: %v", err)
		}
		result, err := Run(s, signals, DefaultParamsFor(cfg, decimal.Zero, decimal.Zero))
		if err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		return result
	}

	first := run()
	second := run()

	if !reflect.DeepEqual(first.Transactions, second.Transactions) {
		t.Error("Expected identical transaction logs across runs")
	}
	if !reflect.DeepEqual(first.Values, second.Values) {
		t.Error("Expected identical value series across runs")
	}
	if !first.TotalInvested.Equal(second.TotalInvested) {
		t.Error("Expected identical total invested across runs")
	}
}

func TestRunSignalLengthMismatch(t *testing.T) {
	s := dailySeries(t, date(2024, 1, 1), []float64{10, 10})

	_, err := Run(s, holdAll(1), Params{Policy: PolicyExternalTopUp})
	if err == nil {
		t.Error("Expected error on signal/series length mismatch")
	}
}

package strategy

import "time"

// Kind tags the strategy variant. Dispatch over Kind is a closed
// switch; an unknown tag is rejected at validation time.
type Kind string

const (
	KindThreshold   Kind = "threshold"
	KindDCA         Kind = "dca"
	KindMACrossover Kind = "ma_crossover"
	KindRSI         Kind = "rsi"
	KindBollinger   Kind = "bollinger"
	KindMACD        Kind = "macd"
)

// Frequency selects the DCA investment cadence.
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyWeekly  Frequency = "weekly"
)

// Config is the tagged strategy variant. Exactly one of the parameter
// blocks matching Kind must be set.
type Config struct {
	Kind Kind `json:"kind"`

	Threshold   *ThresholdParams   `json:"threshold,omitempty"`
	DCA         *DCAParams         `json:"dca,omitempty"`
	MACrossover *MACrossoverParams `json:"ma_crossover,omitempty"`
	RSI         *RSIParams         `json:"rsi,omitempty"`
	Bollinger   *BollingerParams   `json:"bollinger,omitempty"`
	MACD        *MACDParams        `json:"macd,omitempty"`
}

// ThresholdParams drives the lookback-return threshold strategy. The
// lookback shifts by trading-day count, not calendar days. BuyPct and
// SellPct are percentages; a drop past BuyPct (negative) triggers a
// buy of Amount, a rise past SellPct (positive) triggers a full sell.
type ThresholdParams struct {
	BuyPct       float64 `json:"buy_pct"`
	SellPct      float64 `json:"sell_pct"`
	LookbackDays int     `json:"lookback_days"`
	Amount       float64 `json:"amount"`
}

// DCAParams drives periodic fixed-amount investment. Either
// IntervalDays or (Frequency, day selector) must be set.
type DCAParams struct {
	Amount float64 `json:"amount"`

	// Interval form: invest on the first trading day at least
	// IntervalDays calendar days after the previous investment.
	IntervalDays int `json:"interval_days,omitempty"`

	// Calendar form
	Frequency  Frequency    `json:"frequency,omitempty"`
	DayOfMonth int          `json:"day_of_month,omitempty"` // monthly, clamped to month length
	Weekday    time.Weekday `json:"weekday,omitempty"`      // weekly, Monday-anchored weeks
}

// MACrossoverParams: fully invested while the short moving average is
// above the long one.
type MACrossoverParams struct {
	ShortWindow int `json:"short_window"`
	LongWindow  int `json:"long_window"`
}

// RSIParams: enter on an upward crossing of the oversold level, exit
// on a downward crossing of the overbought level.
type RSIParams struct {
	Period     int     `json:"period"`
	Oversold   float64 `json:"oversold"`
	Overbought float64 `json:"overbought"`
}

// BollingerParams: enter on an upward crossing of the lower band, exit
// on a downward crossing of the upper band.
type BollingerParams struct {
	Window        int     `json:"window"`
	StdMultiplier float64 `json:"std_multiplier"`
}

// MACDParams: enter when the MACD line crosses above its signal line,
// exit on the reverse crossing.
type MACDParams struct {
	Fast   int `json:"fast"`
	Slow   int `json:"slow"`
	Signal int `json:"signal"`
}

package strategy

import (
	"fmt"
	"time"
)

// ValidationError reports a malformed strategy parameter. Simulation
// is rejected before it starts.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateThresholdComparator checks the fields the threshold
// comparator reads. Amount is not checked here; the advisory path
// classifies without sizing a trade.
func ValidateThresholdComparator(p *ThresholdParams) error {
	if p == nil {
		return ValidationError{"threshold", "required"}
	}
	if p.BuyPct >= 0 {
		return ValidationError{"threshold.buy_pct", "must be < 0"}
	}
	if p.SellPct <= 0 {
		return ValidationError{"threshold.sell_pct", "must be > 0"}
	}
	if p.LookbackDays <= 0 {
		return ValidationError{"threshold.lookback_days", "must be > 0"}
	}
	return nil
}

// Validate checks all required constraints on a strategy config.
func Validate(cfg *Config) error {
	if cfg == nil {
		return ValidationError{"config", "required"}
	}

	switch cfg.Kind {
	case KindThreshold:
		p := cfg.Threshold
		if p == nil {
			return ValidationError{"threshold", "required for kind=threshold"}
		}
		if err := ValidateThresholdComparator(p); err != nil {
			return err
		}
		if p.Amount <= 0 {
			return ValidationError{"threshold.amount", "must be > 0"}
		}

	case KindDCA:
		p := cfg.DCA
		if p == nil {
			return ValidationError{"dca", "required for kind=dca"}
		}
		if p.Amount <= 0 {
			return ValidationError{"dca.amount", "must be > 0"}
		}
		if p.IntervalDays > 0 {
			if p.Frequency != "" {
				return ValidationError{"dca", "interval_days and frequency are mutually exclusive"}
			}
			break
		}
		switch p.Frequency {
		case FrequencyMonthly:
			if p.DayOfMonth < 1 || p.DayOfMonth > 31 {
				return ValidationError{"dca.day_of_month", "must be in [1, 31]"}
			}
		case FrequencyWeekly:
			if p.Weekday < time.Sunday || p.Weekday > time.Saturday {
				return ValidationError{"dca.weekday", "must be a valid weekday"}
			}
		default:
			return ValidationError{"dca.frequency", "must be monthly or weekly when interval_days is unset"}
		}

	case KindMACrossover:
		p := cfg.MACrossover
		if p == nil {
			return ValidationError{"ma_crossover", "required for kind=ma_crossover"}
		}
		if p.ShortWindow <= 0 {
			return ValidationError{"ma_crossover.short_window", "must be > 0"}
		}
		if p.LongWindow <= 0 {
			return ValidationError{"ma_crossover.long_window", "must be > 0"}
		}
		if p.ShortWindow >= p.LongWindow {
			return ValidationError{"ma_crossover", "short_window must be < long_window"}
		}

	case KindRSI:
		p := cfg.RSI
		if p == nil {
			return ValidationError{"rsi", "required for kind=rsi"}
		}
		if p.Period <= 0 {
			return ValidationError{"rsi.period", "must be > 0"}
		}
		if p.Oversold <= 0 || p.Oversold >= 100 {
			return ValidationError{"rsi.oversold", "must be in (0, 100)"}
		}
		if p.Overbought <= 0 || p.Overbought >= 100 {
			return ValidationError{"rsi.overbought", "must be in (0, 100)"}
		}
		if p.Oversold >= p.Overbought {
			return ValidationError{"rsi", "oversold must be < overbought"}
		}

	case KindBollinger:
		p := cfg.Bollinger
		if p == nil {
			return ValidationError{"bollinger", "required for kind=bollinger"}
		}
		if p.Window <= 0 {
			return ValidationError{"bollinger.window", "must be > 0"}
		}
		if p.StdMultiplier <= 0 {
			return ValidationError{"bollinger.std_multiplier", "must be > 0"}
		}

	case KindMACD:
		p := cfg.MACD
		if p == nil {
			return ValidationError{"macd", "required for kind=macd"}
		}
		if p.Fast <= 0 {
			return ValidationError{"macd.fast", "must be > 0"}
		}
		if p.Slow <= 0 {
			return ValidationError{"macd.slow", "must be > 0"}
		}
		if p.Fast >= p.Slow {
			return ValidationError{"macd", "fast must be < slow"}
		}
		if p.Signal <= 0 {
			return ValidationError{"macd.signal", "must be > 0"}
		}

	default:
		return ValidationError{"kind", fmt.Sprintf("unknown strategy kind %q", cfg.Kind)}
	}

	return nil
}

package strategy

import (
	"math"

	"github.com/wonny/fundsim/internal/series"
)

// Indicator variants operate over the sequence of trading-day values:
// filled weekend values carry no information and must not shift the
// windows. Crossing detection carries the realized position forward so
// a rule does not re-trigger every day its condition stays true.

// tradingValues returns the closing values of genuine trading days and
// their grid indexes.
func tradingValues(s *series.AlignedSeries) ([]float64, []int) {
	idx := s.TradingDayIndexes()
	values := make([]float64, len(idx))
	for i, gridIdx := range idx {
		values[i] = s.Points[gridIdx].Value
	}
	return values, idx
}

// emitPositionSignals folds a carried position over per-day enter/exit
// events. enter and exit report whether the variant's crossing fired
// at trading-day index t given the current position.
func emitPositionSignals(n int, tradingIdx []int, enter, exit func(t int) bool) []Signal {
	signals := holdSignals(n)

	position := 0
	for t, gridIdx := range tradingIdx {
		switch {
		case position == 0 && enter(t):
			position = 1
			signals[gridIdx] = Signal{Action: ActionEnterLong}
		case position == 1 && exit(t):
			position = 0
			signals[gridIdx] = Signal{Action: ActionExitLong}
		}
	}

	return signals
}

func generateMACrossover(s *series.AlignedSeries, p *MACrossoverParams) []Signal {
	values, tradingIdx := tradingValues(s)
	short := rollingMean(values, p.ShortWindow)
	long := rollingMean(values, p.LongWindow)

	// Target position is short MA above long MA; the day-over-day
	// change in target yields the signal.
	above := func(t int) bool {
		return !math.IsNaN(long[t]) && short[t] > long[t]
	}
	return emitPositionSignals(s.Len(), tradingIdx,
		func(t int) bool { return above(t) },
		func(t int) bool { return !above(t) && !math.IsNaN(long[t]) },
	)
}

func generateRSI(s *series.AlignedSeries, p *RSIParams) []Signal {
	values, tradingIdx := tradingValues(s)
	rsi := relativeStrength(values, p.Period)

	defined := func(t int) bool {
		return t >= 1 && !math.IsNaN(rsi[t]) && !math.IsNaN(rsi[t-1])
	}
	return emitPositionSignals(s.Len(), tradingIdx,
		func(t int) bool {
			return defined(t) && rsi[t-1] < p.Oversold && rsi[t] >= p.Oversold
		},
		func(t int) bool {
			return defined(t) && rsi[t-1] > p.Overbought && rsi[t] <= p.Overbought
		},
	)
}

func generateBollinger(s *series.AlignedSeries, p *BollingerParams) []Signal {
	values, tradingIdx := tradingValues(s)
	mid := rollingMean(values, p.Window)
	std := rollingStd(values, p.Window)

	lower := func(t int) float64 { return mid[t] - p.StdMultiplier*std[t] }
	upper := func(t int) float64 { return mid[t] + p.StdMultiplier*std[t] }
	defined := func(t int) bool {
		return t >= 1 && !math.IsNaN(mid[t]) && !math.IsNaN(mid[t-1])
	}

	return emitPositionSignals(s.Len(), tradingIdx,
		func(t int) bool {
			return defined(t) && values[t-1] < lower(t-1) && values[t] >= lower(t)
		},
		func(t int) bool {
			return defined(t) && values[t-1] > upper(t-1) && values[t] <= upper(t)
		},
	)
}

func generateMACD(s *series.AlignedSeries, p *MACDParams) []Signal {
	values, tradingIdx := tradingValues(s)

	fast := ema(values, p.Fast)
	slow := ema(values, p.Slow)
	macd := make([]float64, len(values))
	for i := range values {
		macd[i] = fast[i] - slow[i]
	}
	signalLine := ema(macd, p.Signal)

	return emitPositionSignals(s.Len(), tradingIdx,
		func(t int) bool {
			return t >= 1 && macd[t-1] <= signalLine[t-1] && macd[t] > signalLine[t]
		},
		func(t int) bool {
			return t >= 1 && macd[t-1] >= signalLine[t-1] && macd[t] < signalLine[t]
		},
	)
}

// rollingMean computes a simple moving average; entries before the
// window fills are NaN.
func rollingMean(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// rollingStd computes the rolling sample standard deviation.
func rollingStd(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 1 || len(values) < window {
		return out
	}

	for i := window - 1; i < len(values); i++ {
		mean := 0.0
		for j := i - window + 1; j <= i; j++ {
			mean += values[j]
		}
		mean /= float64(window)

		variance := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := values[j] - mean
			variance += d * d
		}
		out[i] = math.Sqrt(variance / float64(window-1))
	}
	return out
}

// ema computes an exponential moving average seeded with the first
// value, alpha = 2/(span+1).
func ema(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// relativeStrength computes RSI from simple moving averages of gains
// and losses; entries before the first full period are NaN.
func relativeStrength(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if len(values) <= period {
		return out
	}

	gains := make([]float64, len(values))
	losses := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	for i := period; i < len(values); i++ {
		avgGain := 0.0
		avgLoss := 0.0
		for j := i - period + 1; j <= i; j++ {
			avgGain += gains[j]
			avgLoss += losses[j]
		}
		avgGain /= float64(period)
		avgLoss /= float64(period)

		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

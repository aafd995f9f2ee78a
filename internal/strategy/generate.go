package strategy

import (
	"github.com/wonny/fundsim/internal/series"
)

// Generate converts an aligned series plus a strategy config into one
// Signal per grid date. A signal for date d depends only on data at or
// before d. Dates where a window cannot be computed yet are held.
func Generate(s *series.AlignedSeries, cfg *Config) ([]Signal, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	switch cfg.Kind {
	case KindThreshold:
		return generateThreshold(s, cfg.Threshold), nil
	case KindDCA:
		return generateDCA(s, cfg.DCA), nil
	case KindMACrossover:
		return generateMACrossover(s, cfg.MACrossover), nil
	case KindRSI:
		return generateRSI(s, cfg.RSI), nil
	case KindBollinger:
		return generateBollinger(s, cfg.Bollinger), nil
	case KindMACD:
		return generateMACD(s, cfg.MACD), nil
	}

	// Unreachable: Validate rejects unknown kinds.
	return nil, ValidationError{"kind", "unknown strategy kind"}
}

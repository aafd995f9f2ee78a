package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/fundsim/internal/advisor"
	"github.com/wonny/fundsim/internal/quote"
	"github.com/wonny/fundsim/internal/series"
	"github.com/wonny/fundsim/internal/store"
	"github.com/wonny/fundsim/internal/strategy"
	"github.com/wonny/fundsim/pkg/logger"
)

// WatchSource lists the funds to evaluate.
type WatchSource interface {
	ListEnabled(ctx context.Context) ([]store.Watch, error)
}

// QuoteSource provides live estimates and NAV history.
type QuoteSource interface {
	FetchEstimate(ctx context.Context, fundCode string) (*quote.Estimate, error)
	FetchHistory(ctx context.Context, fundCode string, from, to time.Time) ([]quote.NavRecord, error)
}

// Monitor evaluates every watched fund against its live estimate and
// notifies on non-hold advice. It implements scheduler.Job.
type Monitor struct {
	watches  WatchSource
	quotes   QuoteSource
	notifier Notifier
	logger   *logger.Logger
	schedule string

	// now is overridable in tests
	now func() time.Time
}

// New creates a monitor with the given cron schedule.
func New(watches WatchSource, quotes QuoteSource, notifier Notifier, log *logger.Logger, schedule string) *Monitor {
	return &Monitor{
		watches:  watches,
		quotes:   quotes,
		notifier: notifier,
		logger:   log,
		schedule: schedule,
		now:      time.Now,
	}
}

// Name implements scheduler.Job.
func (m *Monitor) Name() string { return "fund-monitor" }

// Schedule implements scheduler.Job.
func (m *Monitor) Schedule() string { return m.schedule }

// Run evaluates all watched funds once. A failing fund does not stop
// the others; the first error is reported after the sweep.
func (m *Monitor) Run(ctx context.Context) error {
	watches, err := m.watches.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("list watches failed: %w", err)
	}

	var firstErr error
	for _, w := range watches {
		if err := m.evaluate(ctx, w); err != nil {
			m.logger.WithFields(map[string]interface{}{
				"fund_code": w.FundCode,
				"error":     err.Error(),
			}).Error("Fund evaluation failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m *Monitor) evaluate(ctx context.Context, w store.Watch) error {
	params := w.ThresholdParams()
	today := series.DateOnly(m.now())

	// Fetch enough history to cover the lookback in trading days,
	// with headroom for weekends and holidays.
	from := today.AddDate(0, 0, -(params.LookbackDays*2 + 30))
	records, err := m.quotes.FetchHistory(ctx, w.FundCode, from, today.AddDate(0, 0, -1))
	if err != nil {
		return fmt.Errorf("fetch history failed: %w", err)
	}

	aligned, err := series.Align(quote.Observations(records), from, today.AddDate(0, 0, -1))
	if err != nil {
		return fmt.Errorf("align history failed: %w", err)
	}

	estimate, err := m.quotes.FetchEstimate(ctx, w.FundCode)
	if err != nil {
		return fmt.Errorf("fetch estimate failed: %w", err)
	}

	advice, err := advisor.Evaluate(aligned, estimate.EstimatedNav, params)
	if err != nil {
		if errors.Is(err, strategy.ErrInsufficientHistory) {
			m.logger.WithField("fund_code", w.FundCode).Warn("Not enough history to advise yet")
			return nil
		}
		return fmt.Errorf("evaluate failed: %w", err)
	}

	m.logger.WithFields(map[string]interface{}{
		"fund_code":       w.FundCode,
		"action":          advice.Action,
		"lookback_return": advice.LookbackReturn,
	}).Info("Fund evaluated")

	if advice.Action == strategy.ActionHold {
		return nil
	}

	key := KeyFor(w.FundCode, advice.Action, today)
	notification := Notification{
		FundCode: w.FundCode,
		FundName: w.Name,
		Advice:   advice,
	}
	if err := m.notifier.Notify(ctx, key, notification); err != nil {
		return fmt.Errorf("notify failed: %w", err)
	}
	return nil
}

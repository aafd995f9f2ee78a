package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/fundsim/internal/advisor"
	"github.com/wonny/fundsim/internal/strategy"
	"github.com/wonny/fundsim/pkg/logger"
)

// Notification is one piece of advice worth telling the user about.
type Notification struct {
	FundCode string
	FundName string
	Advice   *advisor.Advice
}

// Key identifies a notification for deduplication. One notification
// is sent per (fund, action, day); repeated evaluations on the same
// day produce the same key and are dropped.
type Key string

// KeyFor builds the idempotency key for a notification.
func KeyFor(fundCode string, action strategy.Action, day time.Time) Key {
	return Key(fmt.Sprintf("%s:%s:%s", fundCode, action, day.Format("2006-01-02")))
}

// Notifier delivers notifications. Implementations may assume the
// caller deduplicates by key, or wrap themselves with Dedup.
type Notifier interface {
	Notify(ctx context.Context, key Key, n Notification) error
}

// LogNotifier writes notifications to the log. It is the fallback
// delivery channel when mail is not configured.
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

// Notify implements Notifier.
func (l *LogNotifier) Notify(ctx context.Context, key Key, n Notification) error {
	l.logger.WithFields(map[string]interface{}{
		"key":             string(key),
		"fund_code":       n.FundCode,
		"fund_name":       n.FundName,
		"action":          n.Advice.Action,
		"estimated_value": n.Advice.EstimatedValue,
		"lookback_return": n.Advice.LookbackReturn,
	}).Info("Advice notification")
	return nil
}

// dedupRetention is how long a delivered key is remembered. Keys
// embed the day, so anything older than two days can never recur and
// is safe to forget.
const dedupRetention = 48 * time.Hour

// Dedup wraps a Notifier and drops keys it has already delivered.
type Dedup struct {
	inner Notifier

	mu   sync.Mutex
	seen map[Key]time.Time

	// now is overridable in tests
	now func() time.Time
}

// NewDedup wraps a notifier with idempotency-key deduplication.
func NewDedup(inner Notifier) *Dedup {
	return &Dedup{
		inner: inner,
		seen:  make(map[Key]time.Time),
		now:   time.Now,
	}
}

// Notify delivers the notification unless its key was already sent.
func (d *Dedup) Notify(ctx context.Context, key Key, n Notification) error {
	d.mu.Lock()
	d.prune()
	if _, dup := d.seen[key]; dup {
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()

	if err := d.inner.Notify(ctx, key, n); err != nil {
		return err
	}

	d.mu.Lock()
	d.seen[key] = d.now()
	d.mu.Unlock()
	return nil
}

// prune forgets expired keys so a long-running monitor does not grow
// the set forever. Caller holds the lock.
func (d *Dedup) prune() {
	cutoff := d.now().Add(-dedupRetention)
	for key, deliveredAt := range d.seen {
		if deliveredAt.Before(cutoff) {
			delete(d.seen, key)
		}
	}
}

package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/fundsim/internal/strategy"
)

// Watch is one fund the monitor evaluates on schedule, with its
// threshold parameters.
type Watch struct {
	ID           int64   `json:"id"`
	FundCode     string  `json:"fund_code"`
	Name         string  `json:"name"`
	BuyPct       float64 `json:"buy_pct"`
	SellPct      float64 `json:"sell_pct"`
	LookbackDays int     `json:"lookback_days"`
	Amount       float64 `json:"amount"`
	Enabled      bool    `json:"enabled"`
}

// ThresholdParams converts the watch row to strategy parameters.
func (w *Watch) ThresholdParams() *strategy.ThresholdParams {
	return &strategy.ThresholdParams{
		BuyPct:       w.BuyPct,
		SellPct:      w.SellPct,
		LookbackDays: w.LookbackDays,
		Amount:       w.Amount,
	}
}

// WatchRepository stores the funds watched by the monitor.
type WatchRepository struct {
	pool *pgxpool.Pool
}

// NewWatchRepository creates a new watch repository
func NewWatchRepository(pool *pgxpool.Pool) *WatchRepository {
	return &WatchRepository{pool: pool}
}

// ListEnabled retrieves all enabled watches.
func (r *WatchRepository) ListEnabled(ctx context.Context) ([]Watch, error) {
	query := `
		SELECT id, fund_code, name, buy_pct, sell_pct, lookback_days, amount, enabled
		FROM fund_watches
		WHERE enabled
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var watches []Watch
	for rows.Next() {
		var w Watch
		if err := rows.Scan(&w.ID, &w.FundCode, &w.Name, &w.BuyPct,
			&w.SellPct, &w.LookbackDays, &w.Amount, &w.Enabled); err != nil {
			return nil, err
		}
		watches = append(watches, w)
	}
	return watches, rows.Err()
}

// Add inserts a new watch and returns its id.
func (r *WatchRepository) Add(ctx context.Context, w Watch) (int64, error) {
	query := `
		INSERT INTO fund_watches (fund_code, name, buy_pct, sell_pct, lookback_days, amount, enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query, w.FundCode, w.Name, w.BuyPct,
		w.SellPct, w.LookbackDays, w.Amount, w.Enabled).Scan(&id)
	return id, err
}

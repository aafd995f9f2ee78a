package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/fundsim/internal/quote"
	"github.com/wonny/fundsim/internal/series"
)

// NavRepository stores historical NAV observations. It feeds the
// aligner with range queries.
type NavRepository struct {
	pool *pgxpool.Pool
}

// NewNavRepository creates a new NAV repository
func NewNavRepository(pool *pgxpool.Pool) *NavRepository {
	return &NavRepository{pool: pool}
}

// Upsert saves NAV records, replacing existing rows per (fund, date).
func (r *NavRepository) Upsert(ctx context.Context, fundCode string, records []quote.NavRecord) error {
	query := `
		INSERT INTO fund_navs (fund_code, nav_date, nav, cumulative_nav)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (fund_code, nav_date)
		DO UPDATE SET nav = EXCLUDED.nav, cumulative_nav = EXCLUDED.cumulative_nav
	`

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(query, fundCode, rec.Date, rec.Nav, rec.CumulativeNav)
	}

	return r.pool.SendBatch(ctx, batch).Close()
}

// GetRange retrieves observations for a fund within a date range, in
// date order.
func (r *NavRepository) GetRange(ctx context.Context, fundCode string, from, to time.Time) ([]series.Observation, error) {
	query := `
		SELECT nav_date, nav
		FROM fund_navs
		WHERE fund_code = $1 AND nav_date BETWEEN $2 AND $3
		ORDER BY nav_date ASC
	`

	rows, err := r.pool.Query(ctx, query, fundCode, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var obs []series.Observation
	for rows.Next() {
		var o series.Observation
		if err := rows.Scan(&o.Date, &o.Value); err != nil {
			return nil, err
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

// LatestDate returns the most recent stored NAV date for a fund, or
// the zero time when none exists.
func (r *NavRepository) LatestDate(ctx context.Context, fundCode string) (time.Time, error) {
	query := `
		SELECT nav_date
		FROM fund_navs
		WHERE fund_code = $1
		ORDER BY nav_date DESC
		LIMIT 1
	`

	var d time.Time
	err := r.pool.QueryRow(ctx, query, fundCode).Scan(&d)
	if err == pgx.ErrNoRows {
		return time.Time{}, nil
	}
	return d, err
}

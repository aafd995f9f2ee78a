package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/fundsim/internal/backtest"
)

// TransactionRepository persists executed-transaction logs per
// (fund, strategy) run.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Save appends the transactions of one run.
func (r *TransactionRepository) Save(ctx context.Context, fundCode, strategyName string, txns []backtest.Transaction) error {
	query := `
		INSERT INTO fund_transactions
			(fund_code, strategy, trade_date, trade_type, price, shares, amount, commission, reason, reference_price, reference_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	batch := &pgx.Batch{}
	for _, txn := range txns {
		var refDate *time.Time
		if !txn.ReferenceDate.IsZero() {
			refDate = &txn.ReferenceDate
		}
		batch.Queue(query, fundCode, strategyName, txn.Date, string(txn.Type),
			txn.Price, txn.Shares, txn.Amount, txn.Commission, txn.Reason,
			txn.ReferencePrice, refDate)
	}

	return r.pool.SendBatch(ctx, batch).Close()
}

// ListByFund retrieves the stored transactions of a fund in date
// order.
func (r *TransactionRepository) ListByFund(ctx context.Context, fundCode string) ([]backtest.Transaction, error) {
	query := `
		SELECT trade_date, trade_type, price, shares, amount, commission, reason,
		       COALESCE(reference_price, 0), COALESCE(reference_date, '0001-01-01')
		FROM fund_transactions
		WHERE fund_code = $1
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, fundCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []backtest.Transaction
	for rows.Next() {
		var txn backtest.Transaction
		var tradeType string
		if err := rows.Scan(&txn.Date, &tradeType, &txn.Price, &txn.Shares,
			&txn.Amount, &txn.Commission, &txn.Reason,
			&txn.ReferencePrice, &txn.ReferenceDate); err != nil {
			return nil, err
		}
		txn.Type = backtest.TransactionType(tradeType)
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

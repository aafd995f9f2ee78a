package backtest

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes the two trade directions.
type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// Transaction is one executed trade. The log is append-only; entries
// are created only when a signal yields a feasible non-hold action.
// Reference fields carry the comparison inputs of threshold signals so
// callers can render why the trade fired.
type Transaction struct {
	Date           time.Time       `json:"date"`
	Type           TransactionType `json:"type"`
	Price          decimal.Decimal `json:"price"`
	Shares         decimal.Decimal `json:"shares"`
	Amount         decimal.Decimal `json:"amount"`
	Commission     decimal.Decimal `json:"commission"`
	Reason         string          `json:"reason"`
	ReferencePrice decimal.Decimal `json:"reference_price,omitempty"`
	ReferenceDate  time.Time       `json:"reference_date,omitempty"`
}

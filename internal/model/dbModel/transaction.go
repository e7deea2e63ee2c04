package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	TransactionID   int64           `db:"transaction_id"`
	CategoryID      int64           `db:"category_id"`
	CategoryName    string          `db:"category_name"`
	Type            string          `db:"type"`
	Quantity        decimal.Decimal `db:"quantity"`
	Price           decimal.Decimal `db:"price"`
	Amount          decimal.Decimal `db:"amount"`
	TransactionDate time.Time       `db:"transaction_date"`
	Notes           string          `db:"notes"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

type LedgerTotals struct {
	BuyQuantity  decimal.Decimal `db:"buy_quantity"`
	SellQuantity decimal.Decimal `db:"sell_quantity"`
	BuyAmount    decimal.Decimal `db:"buy_amount"`
	SellAmount   decimal.Decimal `db:"sell_amount"`
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionTypeBuy  = "buy"
	TransactionTypeSell = "sell"
)

type Transaction struct {
	TransactionID   int64           `json:"id"`
	CategoryID      int64           `json:"categoryId"`
	CategoryName    string          `json:"categoryName,omitempty"`
	Type            string          `json:"type"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate Date            `json:"transactionDate"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// TransactionChanges carries the fields of an update request; nil means keep
// the stored value.
type TransactionChanges struct {
	CategoryID      *int64
	Type            *string
	Quantity        *decimal.Decimal
	Price           *decimal.Decimal
	TransactionDate *Date
	Notes           *string
}

// LedgerTotals is the buy/sell partition sums of one category's ledger.
type LedgerTotals struct {
	BuyQuantity  decimal.Decimal
	SellQuantity decimal.Decimal
	BuyAmount    decimal.Decimal
	SellAmount   decimal.Decimal
}

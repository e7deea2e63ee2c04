package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type MonthlyExpense struct {
	ExpenseID   int64           `json:"id"`
	UserID      int64           `json:"-"`
	Month       string          `json:"month"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Notes       string          `json:"notes"`
	Items       []ExpenseItem   `json:"items,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ExpenseItem struct {
	ItemID    int64           `json:"id"`
	ExpenseID int64           `json:"expenseId"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Notes     string          `json:"notes"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ExpenseItemChanges carries the fields of an item update request; nil means
// keep the stored value.
type ExpenseItemChanges struct {
	Name   *string
	Amount *decimal.Decimal
	Notes  *string
}

// ExpenseTrendPoint is one month of total spend.
type ExpenseTrendPoint struct {
	Month       string          `json:"month"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// ItemTrendPoint is one month of spend for a single item name.
type ItemTrendPoint struct {
	Month  string          `json:"month"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

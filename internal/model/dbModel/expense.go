package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type MonthlyExpense struct {
	ExpenseID   int64           `db:"expense_id"`
	UserID      int64           `db:"user_id"`
	Month       string          `db:"month"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	Notes       string          `db:"notes"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

type ExpenseItem struct {
	ItemID    int64           `db:"item_id"`
	ExpenseID int64           `db:"expense_id"`
	Name      string          `db:"name"`
	Amount    decimal.Decimal `db:"amount"`
	Notes     string          `db:"notes"`
	CreatedAt time.Time       `db:"created_at"`
}

type ExpenseTrendPoint struct {
	Month       string          `db:"month"`
	TotalAmount decimal.Decimal `db:"total_amount"`
}

type ItemTrendPoint struct {
	Month  string          `db:"month"`
	Name   string          `db:"name"`
	Amount decimal.Decimal `db:"amount"`
}

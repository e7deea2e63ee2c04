package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Holding struct {
	HoldingID     int64           `db:"holding_id"`
	CategoryID    int64           `db:"category_id"`
	Quantity      decimal.Decimal `db:"quantity"`
	AveragePrice  decimal.Decimal `db:"average_price"`
	TotalInvested decimal.Decimal `db:"total_invested"`
	CurrentValue  decimal.Decimal `db:"current_value"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// PortfolioPosition is a holding row joined with its category, pnl computed
// in SQL.
type PortfolioPosition struct {
	CategoryID    int64           `db:"category_id"`
	CategoryName  string          `db:"category_name"`
	Color         string          `db:"color"`
	Quantity      decimal.Decimal `db:"quantity"`
	AveragePrice  decimal.Decimal `db:"average_price"`
	TotalInvested decimal.Decimal `db:"total_invested"`
	CurrentValue  decimal.Decimal `db:"current_value"`
	Pnl           decimal.Decimal `db:"pnl"`
	PnlPercentage decimal.Decimal `db:"pnl_percentage"`
}

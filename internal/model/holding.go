package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Holding struct {
	HoldingID     int64           `json:"id"`
	CategoryID    int64           `json:"categoryId"`
	Quantity      decimal.Decimal `json:"quantity"`
	AveragePrice  decimal.Decimal `json:"averagePrice"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	CurrentValue  decimal.Decimal `json:"currentValue"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// HoldingPosition is the ledger-derived part of a holding. Valuation
// (current_value) is not part of it.
type HoldingPosition struct {
	CategoryID    int64
	Quantity      decimal.Decimal
	AveragePrice  decimal.Decimal
	TotalInvested decimal.Decimal
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Snapshot struct {
	SnapshotID    int64           `json:"id"`
	CategoryID    int64           `json:"categoryId"`
	SnapshotDate  Date            `json:"snapshotDate"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	Pnl           decimal.Decimal `json:"pnl"`
	PnlPercentage decimal.Decimal `json:"pnlPercentage"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// HistoryPoint is one day of aggregated snapshot data across a user's
// categories.
type HistoryPoint struct {
	Date             Date            `json:"date"`
	TotalValue       decimal.Decimal `json:"totalValue"`
	TotalInvested    decimal.Decimal `json:"totalInvested"`
	Pnl              decimal.Decimal `json:"pnl"`
	AvgPnlPercentage decimal.Decimal `json:"avgPnlPercentage"`
}

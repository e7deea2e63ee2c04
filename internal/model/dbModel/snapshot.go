package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Snapshot struct {
	SnapshotID    int64           `db:"snapshot_id"`
	CategoryID    int64           `db:"category_id"`
	SnapshotDate  time.Time       `db:"snapshot_date"`
	TotalValue    decimal.Decimal `db:"total_value"`
	TotalInvested decimal.Decimal `db:"total_invested"`
	Pnl           decimal.Decimal `db:"pnl"`
	PnlPercentage decimal.Decimal `db:"pnl_percentage"`
	CreatedAt     time.Time       `db:"created_at"`
}

type HistoryPoint struct {
	SnapshotDate     time.Time       `db:"snapshot_date"`
	TotalValue       decimal.Decimal `db:"total_value"`
	TotalInvested    decimal.Decimal `db:"total_invested"`
	Pnl              decimal.Decimal `db:"pnl"`
	AvgPnlPercentage decimal.Decimal `db:"avg_pnl_percentage"`
}

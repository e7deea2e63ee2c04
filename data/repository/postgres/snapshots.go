package postgres

import (
	"context"
	"log/slog"

	"github.com/tuanvm/investfolio/internal/converter/dbConverter"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/internal/model/dbModel"
	"github.com/tuanvm/investfolio/utils"
)

// UpsertSnapshot keeps one row per (category, date); repeated runs on the same
// day overwrite the values.
func (r *Postgres) UpsertSnapshot(ctx context.Context, snapshot model.Snapshot) (result model.Snapshot, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpsertSnapshot"
	query := `
		INSERT INTO portfolio_snapshots(category_id, snapshot_date, total_value, total_invested, pnl, pnl_percentage)
		VALUES($1, $2, $3, $4, $5, $6)
		ON CONFLICT (category_id, snapshot_date) DO UPDATE
		SET
			total_value = EXCLUDED.total_value,
			total_invested = EXCLUDED.total_invested,
			pnl = EXCLUDED.pnl,
			pnl_percentage = EXCLUDED.pnl_percentage
		RETURNING snapshot_id, category_id, snapshot_date, total_value, total_invested, pnl, pnl_percentage, created_at
	`

	slog.Debug("UpsertSnapshot start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpsertSnapshot failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpsertSnapshot completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbSnapshot := dbModel.Snapshot{}
	err = r.txOrDb(ctx).QueryRowxContext(
		ctx,
		query,
		snapshot.CategoryID,
		snapshot.SnapshotDate,
		snapshot.TotalValue,
		snapshot.TotalInvested,
		snapshot.Pnl,
		snapshot.PnlPercentage,
	).StructScan(&dbSnapshot)
	if err != nil {
		return model.Snapshot{}, err
	}

	return dbConverter.ConvertSnapshot(dbSnapshot), nil
}

// GetHistory aggregates snapshots across the user's categories into one point
// per day.
func (r *Postgres) GetHistory(ctx context.Context, userID int64, from model.Date) (points []model.HistoryPoint, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetHistory"
	query := `
		SELECT
			s.snapshot_date,
			COALESCE(SUM(s.total_value), 0) AS total_value,
			COALESCE(SUM(s.total_invested), 0) AS total_invested,
			COALESCE(SUM(s.pnl), 0) AS pnl,
			COALESCE(AVG(s.pnl_percentage), 0) AS avg_pnl_percentage
		FROM portfolio_snapshots s
		JOIN categories c USING(category_id)
		WHERE c.user_id = $1
		AND s.snapshot_date >= $2
		GROUP BY s.snapshot_date
		ORDER BY s.snapshot_date
	`

	slog.Debug("GetHistory start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetHistory failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetHistory completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID, from)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbPoint dbModel.HistoryPoint
		err = rows.StructScan(&dbPoint)
		if err != nil {
			return nil, err
		}
		points = append(points, dbConverter.ConvertHistoryPoint(dbPoint))
	}

	return points, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/tuanvm/investfolio/data/repository"
	"github.com/tuanvm/investfolio/internal/converter/dbConverter"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/internal/model/dbModel"
	"github.com/tuanvm/investfolio/utils"
)

func (r *Postgres) InsertHolding(ctx context.Context, categoryID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertHolding"
	query := `
		INSERT INTO holdings(category_id)
		VALUES($1)
		ON CONFLICT (category_id) DO NOTHING
	`

	slog.Debug("InsertHolding start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertHolding failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertHolding completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, categoryID)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) getHoldingByCategory(ctx context.Context, op, query string, categoryID int64) (holding model.Holding, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("getHoldingByCategory start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("getHoldingByCategory failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("getHoldingByCategory completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbHolding := dbModel.Holding{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, categoryID).StructScan(&dbHolding)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Holding{}, repository.ErrNotFound
		}
		return model.Holding{}, err
	}

	return dbConverter.ConvertHolding(dbHolding), nil
}

func (r *Postgres) GetHoldingByCategory(ctx context.Context, categoryID int64) (model.Holding, error) {
	query := `
		SELECT holding_id, category_id, quantity, average_price, total_invested, current_value, updated_at
		FROM holdings
		WHERE category_id = $1
	`

	return r.getHoldingByCategory(ctx, "Postgres.GetHoldingByCategory", query, categoryID)
}

// GetHoldingByCategoryForUpdate locks the holding row for the rest of the
// surrounding transaction, serializing ledger writes per category.
func (r *Postgres) GetHoldingByCategoryForUpdate(ctx context.Context, categoryID int64) (model.Holding, error) {
	query := `
		SELECT holding_id, category_id, quantity, average_price, total_invested, current_value, updated_at
		FROM holdings
		WHERE category_id = $1
		FOR UPDATE
	`

	return r.getHoldingByCategory(ctx, "Postgres.GetHoldingByCategoryForUpdate", query, categoryID)
}

// UpsertHoldingPosition writes the ledger-derived columns only; current_value
// is owned by the valuation updater.
func (r *Postgres) UpsertHoldingPosition(ctx context.Context, position model.HoldingPosition) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpsertHoldingPosition"
	query := `
		INSERT INTO holdings(category_id, quantity, average_price, total_invested)
		VALUES($1, $2, $3, $4)
		ON CONFLICT (category_id) DO UPDATE
		SET
			quantity = EXCLUDED.quantity,
			average_price = EXCLUDED.average_price,
			total_invested = EXCLUDED.total_invested,
			updated_at = now()
	`

	slog.Debug("UpsertHoldingPosition start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpsertHoldingPosition failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpsertHoldingPosition completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(
		ctx,
		query,
		position.CategoryID,
		position.Quantity,
		position.AveragePrice,
		position.TotalInvested,
	)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) UpdateHoldingCurrentValue(ctx context.Context, categoryID int64, value decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpdateHoldingCurrentValue"
	query := `
		UPDATE holdings
		SET current_value = $1, updated_at = now()
		WHERE category_id = $2
	`

	slog.Debug("UpdateHoldingCurrentValue start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("UpdateHoldingCurrentValue failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateHoldingCurrentValue completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, value, categoryID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *Postgres) GetPositions(ctx context.Context, userID int64) (positions []model.PortfolioPosition, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetPositions"
	query := `
		SELECT
			c.category_id,
			c.name AS category_name,
			c.color,
			h.quantity,
			h.average_price,
			h.total_invested,
			h.current_value,
			h.current_value - h.total_invested AS pnl,
			CASE WHEN h.total_invested > 0
				THEN (h.current_value - h.total_invested) / h.total_invested * 100
				ELSE 0
			END AS pnl_percentage
		FROM holdings h
		JOIN categories c USING(category_id)
		WHERE c.user_id = $1
		ORDER BY c.name
	`

	slog.Debug("GetPositions start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPositions failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPositions completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbPosition dbModel.PortfolioPosition
		err = rows.StructScan(&dbPosition)
		if err != nil {
			return nil, err
		}
		positions = append(positions, dbConverter.ConvertPosition(dbPosition))
	}

	return positions, nil
}

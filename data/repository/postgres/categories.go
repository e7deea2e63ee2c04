package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tuanvm/investfolio/data/repository"
	"github.com/tuanvm/investfolio/internal/converter/dbConverter"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/internal/model/dbModel"
	"github.com/tuanvm/investfolio/utils"
)

func (r *Postgres) InsertCategory(ctx context.Context, userID int64, name, description, color string) (categoryID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertCategory"
	query := `
		INSERT INTO categories(user_id, name, description, color)
		VALUES($1, $2, $3, $4)
		RETURNING category_id
	`

	slog.Debug("InsertCategory start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertCategory failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertCategory completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, userID, name, description, color).Scan(&categoryID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return 0, repository.ErrAlreadyExists
			}
		}
		return 0, err
	}

	return categoryID, nil
}

func (r *Postgres) GetCategory(ctx context.Context, categoryID, userID int64) (category model.Category, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetCategory"
	query := `
		SELECT category_id, user_id, name, description, color, created_at, updated_at
		FROM categories
		WHERE category_id = $1
		AND user_id = $2
	`

	slog.Debug("GetCategory start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("GetCategory failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetCategory completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbCategory := dbModel.Category{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, categoryID, userID).StructScan(&dbCategory)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, repository.ErrNotFound
		}
		return model.Category{}, err
	}

	return dbConverter.ConvertCategory(dbCategory), nil
}

func (r *Postgres) GetCategories(ctx context.Context, userID int64) (categories []model.Category, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetCategories"
	query := `
		SELECT category_id, user_id, name, description, color, created_at, updated_at
		FROM categories
		WHERE user_id = $1
		ORDER BY name
	`

	slog.Debug("GetCategories start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetCategories failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetCategories completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbCategory dbModel.Category
		err = rows.StructScan(&dbCategory)
		if err != nil {
			return nil, err
		}
		categories = append(categories, dbConverter.ConvertCategory(dbCategory))
	}

	return categories, nil
}

func (r *Postgres) UpdateCategory(ctx context.Context, categoryID, userID int64, changes model.CategoryChanges) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpdateCategory"
	query := `
		UPDATE categories
		SET
			name = COALESCE($1, name),
			description = COALESCE($2, description),
			color = COALESCE($3, color),
			updated_at = now()
		WHERE category_id = $4
		AND user_id = $5
	`

	slog.Debug("UpdateCategory start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("UpdateCategory failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateCategory completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, changes.Name, changes.Description, changes.Color, categoryID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return repository.ErrAlreadyExists
			}
		}
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

func (r *Postgres) DeleteCategory(ctx context.Context, categoryID, userID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.DeleteCategory"

	// cascades to transactions, holdings and snapshots
	query := `
		DELETE FROM categories
		WHERE category_id = $1
		AND user_id = $2
	`

	slog.Debug("DeleteCategory start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("DeleteCategory failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteCategory completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, categoryID, userID)
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

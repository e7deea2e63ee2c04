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

func (r *Postgres) InsertExpense(ctx context.Context, userID int64, month, notes string) (expenseID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertExpense"
	query := `
		INSERT INTO monthly_expenses(user_id, month, notes)
		VALUES($1, $2, $3)
		RETURNING expense_id
	`

	slog.Debug("InsertExpense start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertExpense failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertExpense completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, userID, month, notes).Scan(&expenseID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return 0, repository.ErrAlreadyExists
			}
		}
		return 0, err
	}

	return expenseID, nil
}

func (r *Postgres) GetExpenseByMonth(ctx context.Context, userID int64, month string) (expense model.MonthlyExpense, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetExpenseByMonth"
	query := `
		SELECT expense_id, user_id, month, total_amount, notes, created_at, updated_at
		FROM monthly_expenses
		WHERE user_id = $1
		AND month = $2
	`

	slog.Debug("GetExpenseByMonth start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("GetExpenseByMonth failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetExpenseByMonth completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbExpense := dbModel.MonthlyExpense{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, userID, month).StructScan(&dbExpense)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.MonthlyExpense{}, repository.ErrNotFound
		}
		return model.MonthlyExpense{}, err
	}

	return dbConverter.ConvertExpense(dbExpense), nil
}

func (r *Postgres) GetExpenseForUser(ctx context.Context, expenseID, userID int64) (expense model.MonthlyExpense, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetExpenseForUser"
	query := `
		SELECT expense_id, user_id, month, total_amount, notes, created_at, updated_at
		FROM monthly_expenses
		WHERE expense_id = $1
		AND user_id = $2
	`

	slog.Debug("GetExpenseForUser start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("GetExpenseForUser failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetExpenseForUser completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbExpense := dbModel.MonthlyExpense{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, expenseID, userID).StructScan(&dbExpense)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.MonthlyExpense{}, repository.ErrNotFound
		}
		return model.MonthlyExpense{}, err
	}

	return dbConverter.ConvertExpense(dbExpense), nil
}

func (r *Postgres) GetExpenses(ctx context.Context, userID int64) (expenses []model.MonthlyExpense, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetExpenses"
	query := `
		SELECT expense_id, user_id, month, total_amount, notes, created_at, updated_at
		FROM monthly_expenses
		WHERE user_id = $1
		ORDER BY month DESC
	`

	slog.Debug("GetExpenses start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetExpenses failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetExpenses completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbExpense dbModel.MonthlyExpense
		err = rows.StructScan(&dbExpense)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, dbConverter.ConvertExpense(dbExpense))
	}

	return expenses, nil
}

func (r *Postgres) DeleteExpense(ctx context.Context, expenseID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.DeleteExpense"

	// cascades to expense_items
	query := `DELETE FROM monthly_expenses WHERE expense_id = $1`

	slog.Debug("DeleteExpense start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeleteExpense failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteExpense completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, expenseID)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) GetExpenseItems(ctx context.Context, expenseID int64) (items []model.ExpenseItem, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetExpenseItems"
	query := `
		SELECT item_id, expense_id, name, amount, notes, created_at
		FROM expense_items
		WHERE expense_id = $1
		ORDER BY name
	`

	slog.Debug("GetExpenseItems start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetExpenseItems failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetExpenseItems completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, expenseID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbItem dbModel.ExpenseItem
		err = rows.StructScan(&dbItem)
		if err != nil {
			return nil, err
		}
		items = append(items, dbConverter.ConvertExpenseItem(dbItem))
	}

	return items, nil
}

func (r *Postgres) GetExpenseItemForUser(ctx context.Context, itemID, userID int64) (item model.ExpenseItem, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetExpenseItemForUser"
	query := `
		SELECT i.item_id, i.expense_id, i.name, i.amount, i.notes, i.created_at
		FROM expense_items i
		JOIN monthly_expenses e USING(expense_id)
		WHERE i.item_id = $1
		AND e.user_id = $2
	`

	slog.Debug("GetExpenseItemForUser start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("GetExpenseItemForUser failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetExpenseItemForUser completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbItem := dbModel.ExpenseItem{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, itemID, userID).StructScan(&dbItem)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ExpenseItem{}, repository.ErrNotFound
		}
		return model.ExpenseItem{}, err
	}

	return dbConverter.ConvertExpenseItem(dbItem), nil
}

func (r *Postgres) InsertExpenseItem(ctx context.Context, item model.ExpenseItem) (itemID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertExpenseItem"
	query := `
		INSERT INTO expense_items(expense_id, name, amount, notes)
		VALUES($1, $2, $3, $4)
		RETURNING item_id
	`

	slog.Debug("InsertExpenseItem start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertExpenseItem failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertExpenseItem completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, item.ExpenseID, item.Name, item.Amount, item.Notes).Scan(&itemID)
	if err != nil {
		return 0, err
	}

	return itemID, nil
}

func (r *Postgres) UpdateExpenseItem(ctx context.Context, item model.ExpenseItem) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpdateExpenseItem"
	query := `
		UPDATE expense_items
		SET name = $1, amount = $2, notes = $3
		WHERE item_id = $4
	`

	slog.Debug("UpdateExpenseItem start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpdateExpenseItem failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateExpenseItem completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, item.Name, item.Amount, item.Notes, item.ItemID)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) DeleteExpenseItem(ctx context.Context, itemID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.DeleteExpenseItem"
	query := `DELETE FROM expense_items WHERE item_id = $1`

	slog.Debug("DeleteExpenseItem start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeleteExpenseItem failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteExpenseItem completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, itemID)
	if err != nil {
		return err
	}

	return nil
}

// RefreshExpenseTotal recomputes total_amount from the item rows.
func (r *Postgres) RefreshExpenseTotal(ctx context.Context, expenseID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.RefreshExpenseTotal"
	query := `
		UPDATE monthly_expenses
		SET
			total_amount = (
				SELECT COALESCE(SUM(amount), 0)
				FROM expense_items
				WHERE expense_id = $1
			),
			updated_at = now()
		WHERE expense_id = $1
	`

	slog.Debug("RefreshExpenseTotal start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("RefreshExpenseTotal failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("RefreshExpenseTotal completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, expenseID)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) CopyExpenseItems(ctx context.Context, fromExpenseID, toExpenseID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.CopyExpenseItems"
	query := `
		INSERT INTO expense_items(expense_id, name, amount, notes)
		SELECT $2, name, amount, notes
		FROM expense_items
		WHERE expense_id = $1
	`

	slog.Debug("CopyExpenseItems start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("CopyExpenseItems failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("CopyExpenseItems completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, fromExpenseID, toExpenseID)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) GetExpenseTrend(ctx context.Context, userID int64, months int) (points []model.ExpenseTrendPoint, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetExpenseTrend"
	query := `
		SELECT month, total_amount
		FROM monthly_expenses
		WHERE user_id = $1
		ORDER BY month DESC
		LIMIT $2
	`

	slog.Debug("GetExpenseTrend start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetExpenseTrend failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetExpenseTrend completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID, months)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbPoint dbModel.ExpenseTrendPoint
		err = rows.StructScan(&dbPoint)
		if err != nil {
			return nil, err
		}
		points = append(points, dbConverter.ConvertExpenseTrendPoint(dbPoint))
	}

	return points, nil
}

func (r *Postgres) GetItemsTrend(ctx context.Context, userID int64, names []string, months int) (points []model.ItemTrendPoint, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetItemsTrend"
	query := `
		WITH recent_months AS (
			SELECT expense_id, month
			FROM monthly_expenses
			WHERE user_id = $1
			ORDER BY month DESC
			LIMIT $3
		)
		SELECT m.month, i.name, COALESCE(SUM(i.amount), 0) AS amount
		FROM recent_months m
		JOIN expense_items i USING(expense_id)
		WHERE i.name = ANY($2::text[])
		GROUP BY m.month, i.name
		ORDER BY m.month, i.name
	`

	slog.Debug("GetItemsTrend start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetItemsTrend failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetItemsTrend completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID, names, months)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbPoint dbModel.ItemTrendPoint
		err = rows.StructScan(&dbPoint)
		if err != nil {
			return nil, err
		}
		points = append(points, dbConverter.ConvertItemTrendPoint(dbPoint))
	}

	return points, nil
}

func (r *Postgres) GetExpenseItemNames(ctx context.Context, userID int64) (names []string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetExpenseItemNames"
	query := `
		SELECT DISTINCT i.name
		FROM expense_items i
		JOIN monthly_expenses e USING(expense_id)
		WHERE e.user_id = $1
		ORDER BY i.name
	`

	slog.Debug("GetExpenseItemNames start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetExpenseItemNames failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetExpenseItemNames completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = r.txOrDb(ctx).SelectContext(ctx, &names, query, userID)
	if err != nil {
		return nil, err
	}

	return names, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/tuanvm/investfolio/data/repository"
	"github.com/tuanvm/investfolio/internal/converter/dbConverter"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/internal/model/dbModel"
	"github.com/tuanvm/investfolio/utils"
)

func (r *Postgres) InsertTransaction(ctx context.Context, transaction model.Transaction) (transactionID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertTransaction"
	query := `
		INSERT INTO transactions(category_id, type, quantity, price, amount, transaction_date, notes)
		VALUES($1, $2, $3, $4, $5, $6, $7)
		RETURNING transaction_id
	`

	slog.Debug("InsertTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertTransaction failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertTransaction completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(
		ctx,
		query,
		transaction.CategoryID,
		transaction.Type,
		transaction.Quantity,
		transaction.Price,
		transaction.Amount,
		transaction.TransactionDate,
		transaction.Notes,
	).Scan(&transactionID)
	if err != nil {
		return 0, err
	}

	return transactionID, nil
}

// GetTransactionForUser resolves a transaction through its owning category, so
// a row belonging to another user comes back as not found.
func (r *Postgres) GetTransactionForUser(ctx context.Context, transactionID, userID int64) (transaction model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetTransactionForUser"
	query := `
		SELECT t.transaction_id, t.category_id, c.name AS category_name, t.type, t.quantity, t.price,
			t.amount, t.transaction_date, t.notes, t.created_at, t.updated_at
		FROM transactions t
		JOIN categories c USING(category_id)
		WHERE t.transaction_id = $1
		AND c.user_id = $2
	`

	slog.Debug("GetTransactionForUser start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("GetTransactionForUser failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTransactionForUser completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbTransaction := dbModel.Transaction{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, transactionID, userID).StructScan(&dbTransaction)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Transaction{}, repository.ErrNotFound
		}
		return model.Transaction{}, err
	}

	return dbConverter.ConvertTransaction(dbTransaction), nil
}

func (r *Postgres) UpdateTransaction(ctx context.Context, transaction model.Transaction) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpdateTransaction"
	query := `
		UPDATE transactions
		SET
			category_id = $1,
			type = $2,
			quantity = $3,
			price = $4,
			amount = $5,
			transaction_date = $6,
			notes = $7,
			updated_at = now()
		WHERE transaction_id = $8
	`

	slog.Debug("UpdateTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpdateTransaction failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateTransaction completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(
		ctx,
		query,
		transaction.CategoryID,
		transaction.Type,
		transaction.Quantity,
		transaction.Price,
		transaction.Amount,
		transaction.TransactionDate,
		transaction.Notes,
		transaction.TransactionID,
	)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) DeleteTransaction(ctx context.Context, transactionID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.DeleteTransaction"
	query := `DELETE FROM transactions WHERE transaction_id = $1`

	slog.Debug("DeleteTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeleteTransaction failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteTransaction completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, transactionID)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) getTransactions(ctx context.Context, op, query string, args ...any) (transactions []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("getTransactions start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("getTransactions failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("getTransactions completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbTransaction dbModel.Transaction
		err = rows.StructScan(&dbTransaction)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, dbConverter.ConvertTransaction(dbTransaction))
	}

	return transactions, nil
}

func (r *Postgres) GetTransactions(ctx context.Context, userID int64, limit int) ([]model.Transaction, error) {
	query := `
		SELECT t.transaction_id, t.category_id, c.name AS category_name, t.type, t.quantity, t.price,
			t.amount, t.transaction_date, t.notes, t.created_at, t.updated_at
		FROM transactions t
		JOIN categories c USING(category_id)
		WHERE c.user_id = $1
		ORDER BY t.transaction_date DESC, t.transaction_id DESC
		LIMIT $2
	`

	return r.getTransactions(ctx, "Postgres.GetTransactions", query, userID, limit)
}

func (r *Postgres) GetTransactionsByCategory(ctx context.Context, categoryID int64) ([]model.Transaction, error) {
	query := `
		SELECT t.transaction_id, t.category_id, c.name AS category_name, t.type, t.quantity, t.price,
			t.amount, t.transaction_date, t.notes, t.created_at, t.updated_at
		FROM transactions t
		JOIN categories c USING(category_id)
		WHERE t.category_id = $1
		ORDER BY t.transaction_date DESC, t.transaction_id DESC
	`

	return r.getTransactions(ctx, "Postgres.GetTransactionsByCategory", query, categoryID)
}

func (r *Postgres) GetRecentTransactions(ctx context.Context, userID int64, days int) ([]model.Transaction, error) {
	query := `
		SELECT t.transaction_id, t.category_id, c.name AS category_name, t.type, t.quantity, t.price,
			t.amount, t.transaction_date, t.notes, t.created_at, t.updated_at
		FROM transactions t
		JOIN categories c USING(category_id)
		WHERE c.user_id = $1
		AND t.transaction_date >= CURRENT_DATE - $2::int
		ORDER BY t.transaction_date DESC, t.transaction_id DESC
	`

	return r.getTransactions(ctx, "Postgres.GetRecentTransactions", query, userID, days)
}

func (r *Postgres) GetTransactionsByDateRange(ctx context.Context, userID int64, from, to model.Date) ([]model.Transaction, error) {
	query := `
		SELECT t.transaction_id, t.category_id, c.name AS category_name, t.type, t.quantity, t.price,
			t.amount, t.transaction_date, t.notes, t.created_at, t.updated_at
		FROM transactions t
		JOIN categories c USING(category_id)
		WHERE c.user_id = $1
		AND t.transaction_date BETWEEN $2 AND $3
		ORDER BY t.transaction_date DESC, t.transaction_id DESC
	`

	return r.getTransactions(ctx, "Postgres.GetTransactionsByDateRange", query, userID, from, to)
}

// GetLedgerTotals sums the buy and sell partitions of one category's ledger.
func (r *Postgres) GetLedgerTotals(ctx context.Context, categoryID int64) (totals model.LedgerTotals, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetLedgerTotals"
	query := `
		SELECT
			COALESCE(SUM(quantity) FILTER (WHERE type = 'buy'), 0) AS buy_quantity,
			COALESCE(SUM(quantity) FILTER (WHERE type = 'sell'), 0) AS sell_quantity,
			COALESCE(SUM(amount) FILTER (WHERE type = 'buy'), 0) AS buy_amount,
			COALESCE(SUM(amount) FILTER (WHERE type = 'sell'), 0) AS sell_amount
		FROM transactions
		WHERE category_id = $1
	`

	slog.Debug("GetLedgerTotals start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetLedgerTotals failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetLedgerTotals completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbTotals := dbModel.LedgerTotals{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, categoryID).StructScan(&dbTotals)
	if err != nil {
		return model.LedgerTotals{}, err
	}

	return dbConverter.ConvertLedgerTotals(dbTotals), nil
}

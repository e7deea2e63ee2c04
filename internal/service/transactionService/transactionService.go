package transactionService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/tuanvm/investfolio/data/repository"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/internal/service"
	"github.com/tuanvm/investfolio/utils"
)

type Repository interface {
	GetCategory(ctx context.Context, categoryID, userID int64) (model.Category, error)
	InsertTransaction(ctx context.Context, transaction model.Transaction) (transactionID int64, err error)
	GetTransactionForUser(ctx context.Context, transactionID, userID int64) (model.Transaction, error)
	UpdateTransaction(ctx context.Context, transaction model.Transaction) error
	DeleteTransaction(ctx context.Context, transactionID int64) error
	GetTransactions(ctx context.Context, userID int64, limit int) ([]model.Transaction, error)
	GetTransactionsByCategory(ctx context.Context, categoryID int64) ([]model.Transaction, error)
	GetRecentTransactions(ctx context.Context, userID int64, days int) ([]model.Transaction, error)
	GetTransactionsByDateRange(ctx context.Context, userID int64, from, to model.Date) ([]model.Transaction, error)
	GetLedgerTotals(ctx context.Context, categoryID int64) (model.LedgerTotals, error)
	GetHoldingByCategoryForUpdate(ctx context.Context, categoryID int64) (model.Holding, error)
	UpsertHoldingPosition(ctx context.Context, position model.HoldingPosition) error
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
}

type TransactionService struct {
	repo Repository
}

func New(repo Repository) *TransactionService {
	return &TransactionService{repo: repo}
}

// CreateTransaction validates and persists a ledger entry, then derives the
// category's holding from the full ledger. The holding row is locked for the
// duration of the write, so concurrent entries for one category apply one at
// a time.
func (s *TransactionService) CreateTransaction(ctx context.Context, userID int64, transaction model.Transaction) (created model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TransactionService.CreateTransaction"

	slog.Debug("CreateTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.Int64("categoryID", transaction.CategoryID))
	defer func() {
		slog.Debug("CreateTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	if err := validate(transaction); err != nil {
		return model.Transaction{}, err
	}

	if transaction.TransactionDate.IsZero() {
		transaction.TransactionDate = model.Today()
	}

	// amount is always derived, never taken from the client
	transaction.Amount = transaction.Quantity.Mul(transaction.Price)

	_, err = s.repo.GetCategory(ctx, transaction.CategoryID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Transaction{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetCategory", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	var transactionID int64
	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		available := decimal.Zero
		holding, err := s.repo.GetHoldingByCategoryForUpdate(ctx, transaction.CategoryID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err == nil {
			available = holding.Quantity
		}

		if transaction.Type == model.TransactionTypeSell && available.LessThan(transaction.Quantity) {
			return service.ErrInsufficientHoldings
		}

		transactionID, err = s.repo.InsertTransaction(ctx, transaction)
		if err != nil {
			return err
		}

		return s.recalculate(ctx, transaction.CategoryID)
	})
	if err != nil {
		if !errors.Is(err, service.ErrInsufficientHoldings) {
			slog.Error("can't create transaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		return model.Transaction{}, err
	}

	return s.repo.GetTransactionForUser(ctx, transactionID, userID)
}

// UpdateTransaction applies partial changes to a ledger entry. Sell
// availability is checked against the holding with the original entry's own
// effect undone, so editing a sell does not double count it.
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, transactionID int64, changes model.TransactionChanges) (updated model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TransactionService.UpdateTransaction"

	slog.Debug("UpdateTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.Int64("transactionID", transactionID))
	defer func() {
		slog.Debug("UpdateTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	existing, err := s.repo.GetTransactionForUser(ctx, transactionID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Transaction{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetTransactionForUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	effective := applyChanges(existing, changes)

	if err := validate(effective); err != nil {
		return model.Transaction{}, err
	}

	// amount is recomputed unconditionally from the effective values
	effective.Amount = effective.Quantity.Mul(effective.Price)

	if effective.CategoryID != existing.CategoryID {
		_, err = s.repo.GetCategory(ctx, effective.CategoryID, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return model.Transaction{}, service.ErrNotFound
			}
			slog.Error("got error from repo.GetCategory", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return model.Transaction{}, err
		}
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		// lock in a fixed order when two categories are involved
		for _, categoryID := range lockOrder(effective.CategoryID, existing.CategoryID) {
			if _, err := s.repo.GetHoldingByCategoryForUpdate(ctx, categoryID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}

		if effective.Type == model.TransactionTypeSell {
			available := decimal.Zero
			holding, err := s.repo.GetHoldingByCategoryForUpdate(ctx, effective.CategoryID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			if err == nil {
				available = holding.Quantity
			}

			// undo the original entry's effect before checking
			if existing.CategoryID == effective.CategoryID {
				if existing.Type == model.TransactionTypeSell {
					available = available.Add(existing.Quantity)
				} else {
					available = available.Sub(existing.Quantity)
				}
			}

			if available.LessThan(effective.Quantity) {
				return service.ErrInsufficientHoldings
			}
		}

		if err := s.repo.UpdateTransaction(ctx, effective); err != nil {
			return err
		}

		if err := s.recalculate(ctx, effective.CategoryID); err != nil {
			return err
		}

		if existing.CategoryID != effective.CategoryID {
			return s.recalculate(ctx, existing.CategoryID)
		}

		return nil
	})
	if err != nil {
		if !errors.Is(err, service.ErrInsufficientHoldings) {
			slog.Error("can't update transaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		return model.Transaction{}, err
	}

	return s.repo.GetTransactionForUser(ctx, transactionID, userID)
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, transactionID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TransactionService.DeleteTransaction"

	slog.Debug("DeleteTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.Int64("transactionID", transactionID))
	defer func() {
		slog.Debug("DeleteTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	existing, err := s.repo.GetTransactionForUser(ctx, transactionID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.GetTransactionForUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetHoldingByCategoryForUpdate(ctx, existing.CategoryID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if err := s.repo.DeleteTransaction(ctx, transactionID); err != nil {
			return err
		}

		return s.recalculate(ctx, existing.CategoryID)
	})
	if err != nil {
		slog.Error("can't delete transaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *TransactionService) GetTransactions(ctx context.Context, userID int64, limit int) ([]model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TransactionService.GetTransactions"

	slog.Debug("GetTransactions start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetTransactions finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	if limit <= 0 {
		limit = 50
	}

	transactions, err := s.repo.GetTransactions(ctx, userID, limit)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return transactions, nil
}

func (s *TransactionService) GetTransactionsByCategory(ctx context.Context, userID, categoryID int64) ([]model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TransactionService.GetTransactionsByCategory"

	slog.Debug("GetTransactionsByCategory start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("categoryID", categoryID))
	defer func() {
		slog.Debug("GetTransactionsByCategory finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("categoryID", categoryID))
	}()

	_, err := s.repo.GetCategory(ctx, categoryID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, service.ErrNotFound
		}
		slog.Error("got error from repo.GetCategory", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	transactions, err := s.repo.GetTransactionsByCategory(ctx, categoryID)
	if err != nil {
		slog.Error("got error from repo.GetTransactionsByCategory", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return transactions, nil
}

func (s *TransactionService) GetRecentTransactions(ctx context.Context, userID int64, days int) ([]model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TransactionService.GetRecentTransactions"

	slog.Debug("GetRecentTransactions start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetRecentTransactions finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	if days <= 0 {
		days = 7
	}

	transactions, err := s.repo.GetRecentTransactions(ctx, userID, days)
	if err != nil {
		slog.Error("got error from repo.GetRecentTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return transactions, nil
}

func (s *TransactionService) GetTransactionsByDateRange(ctx context.Context, userID int64, from, to model.Date) ([]model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TransactionService.GetTransactionsByDateRange"

	slog.Debug("GetTransactionsByDateRange start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetTransactionsByDateRange finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: startDate and endDate are required", service.ErrValidation)
	}
	if to.Before(from.Time) {
		return nil, fmt.Errorf("%w: endDate is before startDate", service.ErrValidation)
	}

	transactions, err := s.repo.GetTransactionsByDateRange(ctx, userID, from, to)
	if err != nil {
		slog.Error("got error from repo.GetTransactionsByDateRange", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return transactions, nil
}

// recalculate derives the holding position from the category's full ledger.
// It runs inside the caller's transaction and never touches current_value.
func (s *TransactionService) recalculate(ctx context.Context, categoryID int64) error {
	totals, err := s.repo.GetLedgerTotals(ctx, categoryID)
	if err != nil {
		return err
	}

	quantity := totals.BuyQuantity.Sub(totals.SellQuantity)
	invested := totals.BuyAmount.Sub(totals.SellAmount)

	averagePrice := decimal.Zero
	if quantity.IsPositive() {
		averagePrice = invested.Div(quantity)
	}

	return s.repo.UpsertHoldingPosition(ctx, model.HoldingPosition{
		CategoryID:    categoryID,
		Quantity:      quantity,
		AveragePrice:  averagePrice,
		TotalInvested: invested,
	})
}

func validate(transaction model.Transaction) error {
	if transaction.Type != model.TransactionTypeBuy && transaction.Type != model.TransactionTypeSell {
		return fmt.Errorf("%w: type must be buy or sell", service.ErrValidation)
	}
	if !transaction.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive", service.ErrValidation)
	}
	if transaction.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", service.ErrValidation)
	}
	return nil
}

func applyChanges(existing model.Transaction, changes model.TransactionChanges) model.Transaction {
	effective := existing

	if changes.CategoryID != nil {
		effective.CategoryID = *changes.CategoryID
	}
	if changes.Type != nil {
		effective.Type = *changes.Type
	}
	if changes.Quantity != nil {
		effective.Quantity = *changes.Quantity
	}
	if changes.Price != nil {
		effective.Price = *changes.Price
	}
	if changes.TransactionDate != nil {
		effective.TransactionDate = *changes.TransactionDate
	}
	if changes.Notes != nil {
		effective.Notes = *changes.Notes
	}

	return effective
}

func lockOrder(a, b int64) []int64 {
	if a == b {
		return []int64{a}
	}
	if a < b {
		return []int64{a, b}
	}
	return []int64{b, a}
}

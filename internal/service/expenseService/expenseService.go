package expenseService

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tuanvm/investfolio/data/repository"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/internal/service"
	"github.com/tuanvm/investfolio/utils"
)

const trackedItemsSettingKey = "tracked_expense_items"

type Repository interface {
	InsertExpense(ctx context.Context, userID int64, month, notes string) (expenseID int64, err error)
	GetExpenseByMonth(ctx context.Context, userID int64, month string) (model.MonthlyExpense, error)
	GetExpenseForUser(ctx context.Context, expenseID, userID int64) (model.MonthlyExpense, error)
	GetExpenses(ctx context.Context, userID int64) ([]model.MonthlyExpense, error)
	DeleteExpense(ctx context.Context, expenseID int64) error
	GetExpenseItems(ctx context.Context, expenseID int64) ([]model.ExpenseItem, error)
	GetExpenseItemForUser(ctx context.Context, itemID, userID int64) (model.ExpenseItem, error)
	InsertExpenseItem(ctx context.Context, item model.ExpenseItem) (itemID int64, err error)
	UpdateExpenseItem(ctx context.Context, item model.ExpenseItem) error
	DeleteExpenseItem(ctx context.Context, itemID int64) error
	RefreshExpenseTotal(ctx context.Context, expenseID int64) error
	CopyExpenseItems(ctx context.Context, fromExpenseID, toExpenseID int64) error
	GetExpenseTrend(ctx context.Context, userID int64, months int) ([]model.ExpenseTrendPoint, error)
	GetItemsTrend(ctx context.Context, userID int64, names []string, months int) ([]model.ItemTrendPoint, error)
	GetExpenseItemNames(ctx context.Context, userID int64) ([]string, error)
	GetSetting(ctx context.Context, userID int64, key string) (json.RawMessage, error)
	SaveSetting(ctx context.Context, userID int64, key string, value json.RawMessage) error
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
}

type ExpenseService struct {
	repo Repository
}

func New(repo Repository) *ExpenseService {
	return &ExpenseService{repo: repo}
}

// CreateExpense opens a month with an optional initial item list. Item names
// must be unique within the month; the stored total is the item sum.
func (s *ExpenseService) CreateExpense(ctx context.Context, userID int64, month, notes string, items []model.ExpenseItem) (expense model.MonthlyExpense, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExpenseService.CreateExpense"

	slog.Debug("CreateExpense start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.String("month", month))
	defer func() {
		slog.Debug("CreateExpense finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	if err := validateMonth(month); err != nil {
		return model.MonthlyExpense{}, err
	}

	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return model.MonthlyExpense{}, fmt.Errorf("%w: item name is required", service.ErrValidation)
		}
		if item.Amount.IsNegative() {
			return model.MonthlyExpense{}, fmt.Errorf("%w: item amount must not be negative", service.ErrValidation)
		}
		if _, ok := seen[name]; ok {
			return model.MonthlyExpense{}, fmt.Errorf("%w: duplicate item name %q", service.ErrValidation, name)
		}
		seen[name] = struct{}{}
		items[i].Name = name
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		expenseID, err := s.repo.InsertExpense(ctx, userID, month, notes)
		if err != nil {
			return err
		}

		for _, item := range items {
			item.ExpenseID = expenseID
			if _, err := s.repo.InsertExpenseItem(ctx, item); err != nil {
				return err
			}
		}

		return s.repo.RefreshExpenseTotal(ctx, expenseID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return model.MonthlyExpense{}, service.ErrAlreadyExists
		}
		slog.Error("can't create expense", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.MonthlyExpense{}, err
	}

	return s.GetExpenseByMonth(ctx, userID, month)
}

func (s *ExpenseService) GetExpenses(ctx context.Context, userID int64) ([]model.MonthlyExpense, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExpenseService.GetExpenses"

	slog.Debug("GetExpenses start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetExpenses finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	expenses, err := s.repo.GetExpenses(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetExpenses", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return expenses, nil
}

func (s *ExpenseService) GetExpenseByMonth(ctx context.Context, userID int64, month string) (model.MonthlyExpense, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExpenseService.GetExpenseByMonth"

	slog.Debug("GetExpenseByMonth start", slog.String("rqID", rqID), slog.String("op", op), slog.String("month", month))
	defer func() {
		slog.Debug("GetExpenseByMonth finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("month", month))
	}()

	if err := validateMonth(month); err != nil {
		return model.MonthlyExpense{}, err
	}

	expense, err := s.repo.GetExpenseByMonth(ctx, userID, month)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.MonthlyExpense{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetExpenseByMonth", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.MonthlyExpense{}, err
	}

	items, err := s.repo.GetExpenseItems(ctx, expense.ExpenseID)
	if err != nil {
		slog.Error("got error from repo.GetExpenseItems", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.MonthlyExpense{}, err
	}
	expense.Items = items

	return expense, nil
}

func (s *ExpenseService) DeleteExpenseByMonth(ctx context.Context, userID int64, month string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExpenseService.DeleteExpenseByMonth"

	slog.Debug("DeleteExpenseByMonth start", slog.String("rqID", rqID), slog.String("op", op), slog.String("month", month))
	defer func() {
		slog.Debug("DeleteExpenseByMonth finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("month", month))
	}()

	expense, err := s.repo.GetExpenseByMonth(ctx, userID, month)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.GetExpenseByMonth", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	err = s.repo.DeleteExpense(ctx, expense.ExpenseID)
	if err != nil {
		slog.Error("got error from repo.DeleteExpense", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *ExpenseService) AddItem(ctx context.Context, userID, expenseID int64, item model.ExpenseItem) (model.ExpenseItem, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExpenseService.AddItem"

	slog.Debug("AddItem start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("expenseID", expenseID))
	defer func() {
		slog.Debug("AddItem finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("expenseID", expenseID))
	}()

	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return model.ExpenseItem{}, fmt.Errorf("%w: item name is required", service.ErrValidation)
	}
	if item.Amount.IsNegative() {
		return model.ExpenseItem{}, fmt.Errorf("%w: item amount must not be negative", service.ErrValidation)
	}

	_, err := s.repo.GetExpenseForUser(ctx, expenseID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ExpenseItem{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetExpenseForUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.ExpenseItem{}, err
	}

	items, err := s.repo.GetExpenseItems(ctx, expenseID)
	if err != nil {
		slog.Error("got error from repo.GetExpenseItems", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.ExpenseItem{}, err
	}
	for _, existing := range items {
		if existing.Name == item.Name {
			return model.ExpenseItem{}, fmt.Errorf("%w: item %q already exists in this month", service.ErrAlreadyExists, item.Name)
		}
	}

	item.ExpenseID = expenseID

	var itemID int64
	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		itemID, err = s.repo.InsertExpenseItem(ctx, item)
		if err != nil {
			return err
		}
		return s.repo.RefreshExpenseTotal(ctx, expenseID)
	})
	if err != nil {
		slog.Error("can't add expense item", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.ExpenseItem{}, err
	}

	item.ItemID = itemID

	return item, nil
}

func (s *ExpenseService) UpdateItem(ctx context.Context, userID, itemID int64, changes model.ExpenseItemChanges) (model.ExpenseItem, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExpenseService.UpdateItem"

	slog.Debug("UpdateItem start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("itemID", itemID))
	defer func() {
		slog.Debug("UpdateItem finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("itemID", itemID))
	}()

	item, err := s.repo.GetExpenseItemForUser(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ExpenseItem{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetExpenseItemForUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.ExpenseItem{}, err
	}

	if changes.Name != nil {
		name := strings.TrimSpace(*changes.Name)
		if name == "" {
			return model.ExpenseItem{}, fmt.Errorf("%w: item name is required", service.ErrValidation)
		}
		if name != item.Name {
			items, err := s.repo.GetExpenseItems(ctx, item.ExpenseID)
			if err != nil {
				slog.Error("got error from repo.GetExpenseItems", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
				return model.ExpenseItem{}, err
			}
			for _, existing := range items {
				if existing.Name == name {
					return model.ExpenseItem{}, fmt.Errorf("%w: item %q already exists in this month", service.ErrAlreadyExists, name)
				}
			}
		}
		item.Name = name
	}
	if changes.Amount != nil {
		if changes.Amount.IsNegative() {
			return model.ExpenseItem{}, fmt.Errorf("%w: item amount must not be negative", service.ErrValidation)
		}
		item.Amount = *changes.Amount
	}
	if changes.Notes != nil {
		item.Notes = *changes.Notes
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateExpenseItem(ctx, item); err != nil {
			return err
		}
		return s.repo.RefreshExpenseTotal(ctx, item.ExpenseID)
	})
	if err != nil {
		slog.Error("can't update expense item", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.ExpenseItem{}, err
	}

	return item, nil
}

func (s *ExpenseService) DeleteItem(ctx context.Context, userID, itemID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExpenseService.DeleteItem"

	slog.Debug("DeleteItem start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("itemID", itemID))
	defer func() {
		slog.Debug("DeleteItem finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("itemID", itemID))
	}()

	item, err := s.repo.GetExpenseItemForUser(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.GetExpenseItemForUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.DeleteExpenseItem(ctx, itemID); err != nil {
			return err
		}
		return s.repo.RefreshExpenseTotal(ctx, item.ExpenseID)
	})
	if err != nil {
		slog.Error("can't delete expense item", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// CopyFromMonth opens the target month with a copy of the source month's
// items. The target must not exist yet.
func (s *ExpenseService) CopyFromMonth(ctx context.Context, userID int64, fromMonth, toMonth string) (model.MonthlyExpense, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExpenseService.CopyFromMonth"

	slog.Debug("CopyFromMonth start", slog.String("rqID", rqID), slog.String("op", op), slog.String("fromMonth", fromMonth), slog.String("toMonth", toMonth))
	defer func() {
		slog.Debug("CopyFromMonth finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("toMonth", toMonth))
	}()

	if err := validateMonth(fromMonth); err != nil {
		return model.MonthlyExpense{}, err
	}
	if err := validateMonth(toMonth); err != nil {
		return model.MonthlyExpense{}, err
	}
	if fromMonth == toMonth {
		return model.MonthlyExpense{}, fmt.Errorf("%w: source and target months are the same", service.ErrValidation)
	}

	source, err := s.repo.GetExpenseByMonth(ctx, userID, fromMonth)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.MonthlyExpense{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetExpenseByMonth", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.MonthlyExpense{}, err
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		expenseID, err := s.repo.InsertExpense(ctx, userID, toMonth, source.Notes)
		if err != nil {
			return err
		}

		if err := s.repo.CopyExpenseItems(ctx, source.ExpenseID, expenseID); err != nil {
			return err
		}

		return s.repo.RefreshExpenseTotal(ctx, expenseID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return model.MonthlyExpense{}, service.ErrAlreadyExists
		}
		slog.Error("can't copy expense month", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.MonthlyExpense{}, err
	}

	return s.GetExpenseByMonth(ctx, userID, toMonth)
}

func (s *ExpenseService) GetTrend(ctx context.Context, userID int64, months int) ([]model.ExpenseTrendPoint, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExpenseService.GetTrend"

	slog.Debug("GetTrend start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetTrend finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	if months <= 0 {
		months = 12
	}

	points, err := s.repo.GetExpenseTrend(ctx, userID, months)
	if err != nil {
		slog.Error("got error from repo.GetExpenseTrend", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return points, nil
}

func (s *ExpenseService) GetItemTrend(ctx context.Context, userID int64, name string, months int) ([]model.ItemTrendPoint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: item name is required", service.ErrValidation)
	}

	return s.GetItemsTrend(ctx, userID, []string{name}, months)
}

func (s *ExpenseService) GetItemsTrend(ctx context.Context, userID int64, names []string, months int) ([]model.ItemTrendPoint, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExpenseService.GetItemsTrend"

	slog.Debug("GetItemsTrend start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.Any("names", names))
	defer func() {
		slog.Debug("GetItemsTrend finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one item name is required", service.ErrValidation)
	}
	if months <= 0 {
		months = 12
	}

	points, err := s.repo.GetItemsTrend(ctx, userID, names, months)
	if err != nil {
		slog.Error("got error from repo.GetItemsTrend", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return points, nil
}

func (s *ExpenseService) GetItemNames(ctx context.Context, userID int64) ([]string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExpenseService.GetItemNames"

	slog.Debug("GetItemNames start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetItemNames finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	names, err := s.repo.GetExpenseItemNames(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetExpenseItemNames", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return names, nil
}

func (s *ExpenseService) GetTrackedItems(ctx context.Context, userID int64) ([]string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExpenseService.GetTrackedItems"

	slog.Debug("GetTrackedItems start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetTrackedItems finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	raw, err := s.repo.GetSetting(ctx, userID, trackedItemsSettingKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []string{}, nil
		}
		slog.Error("got error from repo.GetSetting", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		slog.Error("can't unmarshall tracked items setting", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return names, nil
}

func (s *ExpenseService) SetTrackedItems(ctx context.Context, userID int64, names []string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExpenseService.SetTrackedItems"

	slog.Debug("SetTrackedItems start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.Any("names", names))
	defer func() {
		slog.Debug("SetTrackedItems finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	if names == nil {
		names = []string{}
	}

	raw, err := json.Marshal(names)
	if err != nil {
		return err
	}

	err = s.repo.SaveSetting(ctx, userID, trackedItemsSettingKey, raw)
	if err != nil {
		slog.Error("got error from repo.SaveSetting", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func validateMonth(month string) error {
	if _, err := time.Parse("2006-01", month); err != nil {
		return fmt.Errorf("%w: month must be formatted YYYY-MM", service.ErrValidation)
	}
	return nil
}

package expenseService

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tuanvm/investfolio/data/repository"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/internal/service"
)

type fakeRepo struct {
	expenses   map[int64]model.MonthlyExpense
	items      map[int64]model.ExpenseItem
	settings   map[string]json.RawMessage
	nextID     int64
	nextItemID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		expenses:   make(map[int64]model.MonthlyExpense),
		items:      make(map[int64]model.ExpenseItem),
		settings:   make(map[string]json.RawMessage),
		nextID:     1,
		nextItemID: 1,
	}
}

func (r *fakeRepo) InsertExpense(_ context.Context, userID int64, month, notes string) (int64, error) {
	for _, expense := range r.expenses {
		if expense.UserID == userID && expense.Month == month {
			return 0, repository.ErrAlreadyExists
		}
	}
	expenseID := r.nextID
	r.nextID++
	r.expenses[expenseID] = model.MonthlyExpense{ExpenseID: expenseID, UserID: userID, Month: month, Notes: notes}
	return expenseID, nil
}

func (r *fakeRepo) GetExpenseByMonth(_ context.Context, userID int64, month string) (model.MonthlyExpense, error) {
	for _, expense := range r.expenses {
		if expense.UserID == userID && expense.Month == month {
			return expense, nil
		}
	}
	return model.MonthlyExpense{}, repository.ErrNotFound
}

func (r *fakeRepo) GetExpenseForUser(_ context.Context, expenseID, userID int64) (model.MonthlyExpense, error) {
	expense, ok := r.expenses[expenseID]
	if !ok || expense.UserID != userID {
		return model.MonthlyExpense{}, repository.ErrNotFound
	}
	return expense, nil
}

func (r *fakeRepo) GetExpenses(_ context.Context, userID int64) ([]model.MonthlyExpense, error) {
	out := make([]model.MonthlyExpense, 0)
	for _, expense := range r.expenses {
		if expense.UserID == userID {
			out = append(out, expense)
		}
	}
	return out, nil
}

func (r *fakeRepo) DeleteExpense(_ context.Context, expenseID int64) error {
	if _, ok := r.expenses[expenseID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.expenses, expenseID)
	for itemID, item := range r.items {
		if item.ExpenseID == expenseID {
			delete(r.items, itemID)
		}
	}
	return nil
}

func (r *fakeRepo) GetExpenseItems(_ context.Context, expenseID int64) ([]model.ExpenseItem, error) {
	out := make([]model.ExpenseItem, 0)
	for _, item := range r.items {
		if item.ExpenseID == expenseID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetExpenseItemForUser(_ context.Context, itemID, userID int64) (model.ExpenseItem, error) {
	item, ok := r.items[itemID]
	if !ok {
		return model.ExpenseItem{}, repository.ErrNotFound
	}
	expense, ok := r.expenses[item.ExpenseID]
	if !ok || expense.UserID != userID {
		return model.ExpenseItem{}, repository.ErrNotFound
	}
	return item, nil
}

func (r *fakeRepo) InsertExpenseItem(_ context.Context, item model.ExpenseItem) (int64, error) {
	item.ItemID = r.nextItemID
	r.nextItemID++
	r.items[item.ItemID] = item
	return item.ItemID, nil
}

func (r *fakeRepo) UpdateExpenseItem(_ context.Context, item model.ExpenseItem) error {
	if _, ok := r.items[item.ItemID]; !ok {
		return repository.ErrNotFound
	}
	r.items[item.ItemID] = item
	return nil
}

func (r *fakeRepo) DeleteExpenseItem(_ context.Context, itemID int64) error {
	if _, ok := r.items[itemID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, itemID)
	return nil
}

func (r *fakeRepo) RefreshExpenseTotal(_ context.Context, expenseID int64) error {
	expense, ok := r.expenses[expenseID]
	if !ok {
		return repository.ErrNotFound
	}
	total := decimal.Zero
	for _, item := range r.items {
		if item.ExpenseID == expenseID {
			total = total.Add(item.Amount)
		}
	}
	expense.TotalAmount = total
	r.expenses[expenseID] = expense
	return nil
}

func (r *fakeRepo) CopyExpenseItems(_ context.Context, fromExpenseID, toExpenseID int64) error {
	for _, item := range r.items {
		if item.ExpenseID != fromExpenseID {
			continue
		}
		copied := item
		copied.ItemID = r.nextItemID
		copied.ExpenseID = toExpenseID
		r.nextItemID++
		r.items[copied.ItemID] = copied
	}
	return nil
}

func (r *fakeRepo) GetExpenseTrend(_ context.Context, userID int64, _ int) ([]model.ExpenseTrendPoint, error) {
	out := make([]model.ExpenseTrendPoint, 0)
	for _, expense := range r.expenses {
		if expense.UserID == userID {
			out = append(out, model.ExpenseTrendPoint{Month: expense.Month, TotalAmount: expense.TotalAmount})
		}
	}
	return out, nil
}

func (r *fakeRepo) GetItemsTrend(_ context.Context, userID int64, names []string, _ int) ([]model.ItemTrendPoint, error) {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}
	out := make([]model.ItemTrendPoint, 0)
	for _, item := range r.items {
		expense, ok := r.expenses[item.ExpenseID]
		if !ok || expense.UserID != userID || !wanted[item.Name] {
			continue
		}
		out = append(out, model.ItemTrendPoint{Month: expense.Month, Name: item.Name, Amount: item.Amount})
	}
	return out, nil
}

func (r *fakeRepo) GetExpenseItemNames(_ context.Context, userID int64) ([]string, error) {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, item := range r.items {
		expense, ok := r.expenses[item.ExpenseID]
		if !ok || expense.UserID != userID || seen[item.Name] {
			continue
		}
		seen[item.Name] = true
		out = append(out, item.Name)
	}
	return out, nil
}

func (r *fakeRepo) GetSetting(_ context.Context, userID int64, key string) (json.RawMessage, error) {
	value, ok := r.settings[settingKey(userID, key)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return value, nil
}

func (r *fakeRepo) SaveSetting(_ context.Context, userID int64, key string, value json.RawMessage) error {
	r.settings[settingKey(userID, key)] = value
	return nil
}

func settingKey(userID int64, key string) string {
	return fmt.Sprintf("%d#%s", userID, key)
}

func (r *fakeRepo) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	return tFunc(ctx)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(name, amount string) model.ExpenseItem {
	return model.ExpenseItem{Name: name, Amount: dec(amount)}
}

func TestCreateExpense_TotalIsItemSum(t *testing.T) {
	srv := New(newFakeRepo())

	expense, err := srv.CreateExpense(context.Background(), 10, "2026-08", "", []model.ExpenseItem{
		item("rent", "1200"),
		item("groceries", "350.50"),
	})
	if err != nil {
		t.Fatalf("CreateExpense() failed: %v", err)
	}

	if !expense.TotalAmount.Equal(dec("1550.50")) {
		t.Errorf("totalAmount = %s, want 1550.50", expense.TotalAmount)
	}
}

func TestCreateExpense_Validation(t *testing.T) {
	srv := New(newFakeRepo())

	testCases := []struct {
		name    string
		month   string
		items   []model.ExpenseItem
		wantErr error
	}{
		{name: "bad month format", month: "08-2026", wantErr: service.ErrValidation},
		{name: "month with day", month: "2026-08-01", wantErr: service.ErrValidation},
		{name: "empty item name", month: "2026-08", items: []model.ExpenseItem{item("  ", "5")}, wantErr: service.ErrValidation},
		{name: "negative amount", month: "2026-08", items: []model.ExpenseItem{item("rent", "-1")}, wantErr: service.ErrValidation},
		{name: "duplicate item names", month: "2026-08", items: []model.ExpenseItem{item("rent", "5"), item("rent", "7")}, wantErr: service.ErrValidation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := srv.CreateExpense(context.Background(), 10, tc.month, "", tc.items)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateExpense_DuplicateMonth(t *testing.T) {
	srv := New(newFakeRepo())

	if _, err := srv.CreateExpense(context.Background(), 10, "2026-08", "", nil); err != nil {
		t.Fatalf("CreateExpense() failed: %v", err)
	}

	_, err := srv.CreateExpense(context.Background(), 10, "2026-08", "", nil)
	if !errors.Is(err, service.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestItemMutationsKeepTotalInSync(t *testing.T) {
	repo := newFakeRepo()
	srv := New(repo)
	ctx := context.Background()

	expense, err := srv.CreateExpense(ctx, 10, "2026-08", "", []model.ExpenseItem{item("rent", "1200")})
	if err != nil {
		t.Fatalf("CreateExpense() failed: %v", err)
	}

	added, err := srv.AddItem(ctx, 10, expense.ExpenseID, item("groceries", "300"))
	if err != nil {
		t.Fatalf("AddItem() failed: %v", err)
	}
	got, _ := srv.GetExpenseByMonth(ctx, 10, "2026-08")
	if !got.TotalAmount.Equal(dec("1500")) {
		t.Fatalf("total after add = %s, want 1500", got.TotalAmount)
	}

	amount := dec("450")
	if _, err := srv.UpdateItem(ctx, 10, added.ItemID, model.ExpenseItemChanges{Amount: &amount}); err != nil {
		t.Fatalf("UpdateItem() failed: %v", err)
	}
	got, _ = srv.GetExpenseByMonth(ctx, 10, "2026-08")
	if !got.TotalAmount.Equal(dec("1650")) {
		t.Fatalf("total after update = %s, want 1650", got.TotalAmount)
	}

	if err := srv.DeleteItem(ctx, 10, added.ItemID); err != nil {
		t.Fatalf("DeleteItem() failed: %v", err)
	}
	got, _ = srv.GetExpenseByMonth(ctx, 10, "2026-08")
	if !got.TotalAmount.Equal(dec("1200")) {
		t.Fatalf("total after delete = %s, want 1200", got.TotalAmount)
	}
}

func TestAddItem_DuplicateNameWithinMonth(t *testing.T) {
	srv := New(newFakeRepo())
	ctx := context.Background()

	expense, err := srv.CreateExpense(ctx, 10, "2026-08", "", []model.ExpenseItem{item("rent", "1200")})
	if err != nil {
		t.Fatalf("CreateExpense() failed: %v", err)
	}

	_, err = srv.AddItem(ctx, 10, expense.ExpenseID, item("rent", "100"))
	if !errors.Is(err, service.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestAddItem_ForeignExpenseIsNotFound(t *testing.T) {
	srv := New(newFakeRepo())
	ctx := context.Background()

	expense, err := srv.CreateExpense(ctx, 10, "2026-08", "", nil)
	if err != nil {
		t.Fatalf("CreateExpense() failed: %v", err)
	}

	_, err = srv.AddItem(ctx, 99, expense.ExpenseID, item("rent", "100"))
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCopyFromMonth(t *testing.T) {
	srv := New(newFakeRepo())
	ctx := context.Background()

	_, err := srv.CreateExpense(ctx, 10, "2026-07", "july", []model.ExpenseItem{
		item("rent", "1200"),
		item("groceries", "300"),
	})
	if err != nil {
		t.Fatalf("CreateExpense() failed: %v", err)
	}

	copied, err := srv.CopyFromMonth(ctx, 10, "2026-07", "2026-08")
	if err != nil {
		t.Fatalf("CopyFromMonth() failed: %v", err)
	}

	if copied.Month != "2026-08" {
		t.Errorf("month = %s, want 2026-08", copied.Month)
	}
	if !copied.TotalAmount.Equal(dec("1500")) {
		t.Errorf("totalAmount = %s, want 1500", copied.TotalAmount)
	}

	// copying onto an existing month must fail
	_, err = srv.CopyFromMonth(ctx, 10, "2026-07", "2026-08")
	if !errors.Is(err, service.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}

	// source month must exist
	_, err = srv.CopyFromMonth(ctx, 10, "2026-01", "2026-09")
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	// same month both sides
	_, err = srv.CopyFromMonth(ctx, 10, "2026-07", "2026-07")
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestTrackedItems_RoundTrip(t *testing.T) {
	srv := New(newFakeRepo())
	ctx := context.Background()

	// nothing saved yet reads as an empty list
	names, err := srv.GetTrackedItems(ctx, 10)
	if err != nil {
		t.Fatalf("GetTrackedItems() failed: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("names = %v, want empty", names)
	}

	if err := srv.SetTrackedItems(ctx, 10, []string{"rent", "groceries"}); err != nil {
		t.Fatalf("SetTrackedItems() failed: %v", err)
	}

	names, err = srv.GetTrackedItems(ctx, 10)
	if err != nil {
		t.Fatalf("GetTrackedItems() failed: %v", err)
	}
	if len(names) != 2 || names[0] != "rent" || names[1] != "groceries" {
		t.Fatalf("names = %v, want [rent groceries]", names)
	}
}

func TestGetItemTrend_RequiresName(t *testing.T) {
	srv := New(newFakeRepo())

	_, err := srv.GetItemsTrend(context.Background(), 10, nil, 6)
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

package transactionService

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tuanvm/investfolio/data/repository"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/internal/service"
)

// fakeRepo keeps the ledger and holdings in memory and derives ledger totals
// the same way the SQL aggregate does.
type fakeRepo struct {
	categories   map[int64]model.Category
	transactions map[int64]model.Transaction
	holdings     map[int64]model.Holding
	nextID       int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		categories:   make(map[int64]model.Category),
		transactions: make(map[int64]model.Transaction),
		holdings:     make(map[int64]model.Holding),
		nextID:       1,
	}
}

func (r *fakeRepo) addCategory(categoryID, userID int64, name string) {
	r.categories[categoryID] = model.Category{CategoryID: categoryID, UserID: userID, Name: name}
	r.holdings[categoryID] = model.Holding{CategoryID: categoryID}
}

func (r *fakeRepo) GetCategory(_ context.Context, categoryID, userID int64) (model.Category, error) {
	category, ok := r.categories[categoryID]
	if !ok || category.UserID != userID {
		return model.Category{}, repository.ErrNotFound
	}
	return category, nil
}

func (r *fakeRepo) InsertTransaction(_ context.Context, transaction model.Transaction) (int64, error) {
	transaction.TransactionID = r.nextID
	r.nextID++
	r.transactions[transaction.TransactionID] = transaction
	return transaction.TransactionID, nil
}

func (r *fakeRepo) GetTransactionForUser(_ context.Context, transactionID, userID int64) (model.Transaction, error) {
	transaction, ok := r.transactions[transactionID]
	if !ok {
		return model.Transaction{}, repository.ErrNotFound
	}
	category, ok := r.categories[transaction.CategoryID]
	if !ok || category.UserID != userID {
		return model.Transaction{}, repository.ErrNotFound
	}
	return transaction, nil
}

func (r *fakeRepo) UpdateTransaction(_ context.Context, transaction model.Transaction) error {
	if _, ok := r.transactions[transaction.TransactionID]; !ok {
		return repository.ErrNotFound
	}
	r.transactions[transaction.TransactionID] = transaction
	return nil
}

func (r *fakeRepo) DeleteTransaction(_ context.Context, transactionID int64) error {
	if _, ok := r.transactions[transactionID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.transactions, transactionID)
	return nil
}

func (r *fakeRepo) GetTransactions(_ context.Context, userID int64, limit int) ([]model.Transaction, error) {
	out := make([]model.Transaction, 0)
	for _, transaction := range r.transactions {
		if category, ok := r.categories[transaction.CategoryID]; ok && category.UserID == userID {
			out = append(out, transaction)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeRepo) GetTransactionsByCategory(_ context.Context, categoryID int64) ([]model.Transaction, error) {
	out := make([]model.Transaction, 0)
	for _, transaction := range r.transactions {
		if transaction.CategoryID == categoryID {
			out = append(out, transaction)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetRecentTransactions(_ context.Context, userID int64, _ int) ([]model.Transaction, error) {
	return r.GetTransactions(context.Background(), userID, len(r.transactions))
}

func (r *fakeRepo) GetTransactionsByDateRange(_ context.Context, userID int64, from, to model.Date) ([]model.Transaction, error) {
	out := make([]model.Transaction, 0)
	for _, transaction := range r.transactions {
		category, ok := r.categories[transaction.CategoryID]
		if !ok || category.UserID != userID {
			continue
		}
		if transaction.TransactionDate.Before(from.Time) || transaction.TransactionDate.After(to.Time) {
			continue
		}
		out = append(out, transaction)
	}
	return out, nil
}

func (r *fakeRepo) GetLedgerTotals(_ context.Context, categoryID int64) (model.LedgerTotals, error) {
	totals := model.LedgerTotals{
		BuyQuantity:  decimal.Zero,
		SellQuantity: decimal.Zero,
		BuyAmount:    decimal.Zero,
		SellAmount:   decimal.Zero,
	}
	for _, transaction := range r.transactions {
		if transaction.CategoryID != categoryID {
			continue
		}
		if transaction.Type == model.TransactionTypeBuy {
			totals.BuyQuantity = totals.BuyQuantity.Add(transaction.Quantity)
			totals.BuyAmount = totals.BuyAmount.Add(transaction.Amount)
		} else {
			totals.SellQuantity = totals.SellQuantity.Add(transaction.Quantity)
			totals.SellAmount = totals.SellAmount.Add(transaction.Amount)
		}
	}
	return totals, nil
}

func (r *fakeRepo) GetHoldingByCategoryForUpdate(_ context.Context, categoryID int64) (model.Holding, error) {
	holding, ok := r.holdings[categoryID]
	if !ok {
		return model.Holding{}, repository.ErrNotFound
	}
	return holding, nil
}

func (r *fakeRepo) UpsertHoldingPosition(_ context.Context, position model.HoldingPosition) error {
	holding := r.holdings[position.CategoryID]
	holding.CategoryID = position.CategoryID
	holding.Quantity = position.Quantity
	holding.AveragePrice = position.AveragePrice
	holding.TotalInvested = position.TotalInvested
	r.holdings[position.CategoryID] = holding
	return nil
}

func (r *fakeRepo) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	return tFunc(ctx)
}

func setup(t *testing.T) (*TransactionService, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	repo.addCategory(1, 10, "VN30 ETF")
	repo.addCategory(2, 10, "Gold")
	repo.addCategory(3, 99, "Someone else")
	return New(repo), repo
}

func mustCreate(t *testing.T, srv *TransactionService, userID int64, transaction model.Transaction) model.Transaction {
	t.Helper()
	created, err := srv.CreateTransaction(context.Background(), userID, transaction)
	if err != nil {
		t.Fatalf("CreateTransaction() failed: %v", err)
	}
	return created
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func buy(categoryID int64, quantity, price string) model.Transaction {
	return model.Transaction{CategoryID: categoryID, Type: model.TransactionTypeBuy, Quantity: dec(quantity), Price: dec(price)}
}

func sell(categoryID int64, quantity, price string) model.Transaction {
	return model.Transaction{CategoryID: categoryID, Type: model.TransactionTypeSell, Quantity: dec(quantity), Price: dec(price)}
}

func assertHolding(t *testing.T, repo *fakeRepo, categoryID int64, quantity, averagePrice, invested string) {
	t.Helper()
	holding := repo.holdings[categoryID]
	if !holding.Quantity.Equal(dec(quantity)) {
		t.Errorf("quantity = %s, want %s", holding.Quantity, quantity)
	}
	if !holding.AveragePrice.Equal(dec(averagePrice)) {
		t.Errorf("averagePrice = %s, want %s", holding.AveragePrice, averagePrice)
	}
	if !holding.TotalInvested.Equal(dec(invested)) {
		t.Errorf("totalInvested = %s, want %s", holding.TotalInvested, invested)
	}
}

func TestCreateTransaction_BuySellLifecycle(t *testing.T) {
	srv, repo := setup(t)

	mustCreate(t, srv, 10, buy(1, "10", "100"))
	assertHolding(t, repo, 1, "10", "100", "1000")

	mustCreate(t, srv, 10, buy(1, "5", "200"))
	// 15 units for 2000 total
	assertHolding(t, repo, 1, "15", "133.3333333333333333", "2000")

	// selling more than held must not change anything
	_, err := srv.CreateTransaction(context.Background(), 10, sell(1, "20", "150"))
	if !errors.Is(err, service.ErrInsufficientHoldings) {
		t.Fatalf("err = %v, want ErrInsufficientHoldings", err)
	}
	assertHolding(t, repo, 1, "15", "133.3333333333333333", "2000")
	if len(repo.transactions) != 2 {
		t.Fatalf("ledger has %d entries, want 2", len(repo.transactions))
	}

	mustCreate(t, srv, 10, sell(1, "5", "300"))
	assertHolding(t, repo, 1, "10", "50", "500")
}

func TestCreateTransaction_AmountIsAlwaysDerived(t *testing.T) {
	srv, _ := setup(t)

	transaction := buy(1, "3", "7")
	transaction.Amount = dec("999999")

	created := mustCreate(t, srv, 10, transaction)
	if !created.Amount.Equal(dec("21")) {
		t.Fatalf("amount = %s, want 21", created.Amount)
	}
}

func TestCreateTransaction_DefaultsDateToToday(t *testing.T) {
	srv, _ := setup(t)

	created := mustCreate(t, srv, 10, buy(1, "1", "10"))
	if !created.TransactionDate.Equal(model.Today().Time) {
		t.Fatalf("transactionDate = %s, want today", created.TransactionDate)
	}
}

func TestCreateTransaction_Validation(t *testing.T) {
	srv, _ := setup(t)

	testCases := []struct {
		name        string
		transaction model.Transaction
	}{
		{name: "unknown type", transaction: model.Transaction{CategoryID: 1, Type: "hold", Quantity: dec("1"), Price: dec("1")}},
		{name: "zero quantity", transaction: buy(1, "0", "10")},
		{name: "negative quantity", transaction: buy(1, "-1", "10")},
		{name: "negative price", transaction: buy(1, "1", "-10")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := srv.CreateTransaction(context.Background(), 10, tc.transaction)
			if !errors.Is(err, service.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreateTransaction_ForeignCategoryIsNotFound(t *testing.T) {
	srv, _ := setup(t)

	_, err := srv.CreateTransaction(context.Background(), 10, buy(3, "1", "10"))
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateTransaction_SellEverythingResetsAverage(t *testing.T) {
	srv, repo := setup(t)

	mustCreate(t, srv, 10, buy(1, "10", "100"))
	mustCreate(t, srv, 10, sell(1, "10", "120"))

	// empty position keeps no average price
	holding := repo.holdings[1]
	if !holding.Quantity.IsZero() {
		t.Errorf("quantity = %s, want 0", holding.Quantity)
	}
	if !holding.AveragePrice.IsZero() {
		t.Errorf("averagePrice = %s, want 0", holding.AveragePrice)
	}
	if !holding.TotalInvested.Equal(dec("-200")) {
		t.Errorf("totalInvested = %s, want -200", holding.TotalInvested)
	}
}

func TestUpdateTransaction_RecomputesHolding(t *testing.T) {
	srv, repo := setup(t)

	created := mustCreate(t, srv, 10, buy(1, "10", "100"))

	quantity := dec("20")
	updated, err := srv.UpdateTransaction(context.Background(), 10, created.TransactionID, model.TransactionChanges{Quantity: &quantity})
	if err != nil {
		t.Fatalf("UpdateTransaction() failed: %v", err)
	}

	if !updated.Amount.Equal(dec("2000")) {
		t.Fatalf("amount = %s, want 2000", updated.Amount)
	}
	assertHolding(t, repo, 1, "20", "100", "2000")
}

func TestUpdateTransaction_SellUndoesOwnEffect(t *testing.T) {
	srv, _ := setup(t)

	mustCreate(t, srv, 10, buy(1, "10", "100"))
	created := mustCreate(t, srv, 10, sell(1, "5", "150"))

	// the position holds 5, but editing this sell up to 10 is still solvent
	// because its own 5 come back first
	quantity := dec("10")
	_, err := srv.UpdateTransaction(context.Background(), 10, created.TransactionID, model.TransactionChanges{Quantity: &quantity})
	if err != nil {
		t.Fatalf("UpdateTransaction() failed: %v", err)
	}

	// 11 would overdraw
	quantity = dec("11")
	_, err = srv.UpdateTransaction(context.Background(), 10, created.TransactionID, model.TransactionChanges{Quantity: &quantity})
	if !errors.Is(err, service.ErrInsufficientHoldings) {
		t.Fatalf("err = %v, want ErrInsufficientHoldings", err)
	}
}

func TestUpdateTransaction_MoveBetweenCategories(t *testing.T) {
	srv, repo := setup(t)

	created := mustCreate(t, srv, 10, buy(1, "10", "100"))
	mustCreate(t, srv, 10, buy(2, "2", "50"))

	categoryID := int64(2)
	_, err := srv.UpdateTransaction(context.Background(), 10, created.TransactionID, model.TransactionChanges{CategoryID: &categoryID})
	if err != nil {
		t.Fatalf("UpdateTransaction() failed: %v", err)
	}

	assertHolding(t, repo, 1, "0", "0", "0")
	assertHolding(t, repo, 2, "12", "91.6666666666666667", "1100")
}

func TestUpdateTransaction_ForeignTransactionIsNotFound(t *testing.T) {
	srv, _ := setup(t)

	created := mustCreate(t, srv, 10, buy(1, "10", "100"))

	quantity := dec("1")
	_, err := srv.UpdateTransaction(context.Background(), 99, created.TransactionID, model.TransactionChanges{Quantity: &quantity})
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteTransaction_RecomputesHolding(t *testing.T) {
	srv, repo := setup(t)

	mustCreate(t, srv, 10, buy(1, "10", "100"))
	created := mustCreate(t, srv, 10, buy(1, "5", "200"))

	if err := srv.DeleteTransaction(context.Background(), 10, created.TransactionID); err != nil {
		t.Fatalf("DeleteTransaction() failed: %v", err)
	}

	assertHolding(t, repo, 1, "10", "100", "1000")
}

func TestGetTransactionsByDateRange_Validation(t *testing.T) {
	srv, _ := setup(t)

	_, err := srv.GetTransactionsByDateRange(context.Background(), 10, model.Date{}, model.Today())
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation for missing start", err)
	}

	_, err = srv.GetTransactionsByDateRange(context.Background(), 10, model.Today(), model.Today().AddDays(-1))
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation for inverted range", err)
	}
}

func TestRecalculateIsIdempotent(t *testing.T) {
	srv, repo := setup(t)

	mustCreate(t, srv, 10, buy(1, "10", "100"))
	mustCreate(t, srv, 10, sell(1, "4", "150"))

	before := repo.holdings[1]
	if err := srv.recalculate(context.Background(), 1); err != nil {
		t.Fatalf("recalculate() failed: %v", err)
	}
	after := repo.holdings[1]

	if !before.Quantity.Equal(after.Quantity) || !before.AveragePrice.Equal(after.AveragePrice) || !before.TotalInvested.Equal(after.TotalInvested) {
		t.Fatalf("recalculate changed a settled position: before=%+v after=%+v", before, after)
	}
}

package rest

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tuanvm/investfolio/internal/model"
)

type AuthService interface {
	Register(ctx context.Context, username, password, displayName, email string) (model.AuthResult, error)
	Login(ctx context.Context, username, password string) (model.AuthResult, error)
	GetProfile(ctx context.Context, userID int64) (model.User, error)
	ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
}

type CategoryService interface {
	CreateCategory(ctx context.Context, userID int64, name, description, color string) (model.Category, error)
	GetCategory(ctx context.Context, categoryID, userID int64) (model.Category, error)
	GetCategories(ctx context.Context, userID int64) ([]model.Category, error)
	UpdateCategory(ctx context.Context, categoryID, userID int64, changes model.CategoryChanges) (model.Category, error)
	DeleteCategory(ctx context.Context, categoryID, userID int64) error
}

type TransactionService interface {
	CreateTransaction(ctx context.Context, userID int64, transaction model.Transaction) (model.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID int64, changes model.TransactionChanges) (model.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID int64) error
	GetTransactions(ctx context.Context, userID int64, limit int) ([]model.Transaction, error)
	GetTransactionsByCategory(ctx context.Context, userID, categoryID int64) ([]model.Transaction, error)
	GetRecentTransactions(ctx context.Context, userID int64, days int) ([]model.Transaction, error)
	GetTransactionsByDateRange(ctx context.Context, userID int64, from, to model.Date) ([]model.Transaction, error)
}

type PortfolioService interface {
	GetOverview(ctx context.Context, userID int64) (model.PortfolioOverview, error)
	GetDistribution(ctx context.Context, userID int64) ([]model.DistributionSlice, error)
	GetPnlByCategory(ctx context.Context, userID int64) ([]model.PortfolioPosition, error)
	GetPnlLast7Days(ctx context.Context, userID int64) ([]model.HistoryPoint, error)
	GetHistory(ctx context.Context, userID int64, days int) ([]model.HistoryPoint, error)
	GetDashboard(ctx context.Context, userID int64) (model.Dashboard, error)
	UpdateCurrentValue(ctx context.Context, userID, categoryID int64, value decimal.Decimal) (model.Holding, error)
	CreateDailySnapshot(ctx context.Context, userID int64) ([]model.Snapshot, error)
	ExportReport(ctx context.Context, userID int64) (fileBytes []byte, fileExtension string, err error)
}

type PriceService interface {
	GetQuote(ctx context.Context, code string) (model.Quote, error)
	ApplyQuote(ctx context.Context, userID, categoryID int64, code string) (model.Holding, model.Quote, error)
}

type ExpenseService interface {
	CreateExpense(ctx context.Context, userID int64, month, notes string, items []model.ExpenseItem) (model.MonthlyExpense, error)
	GetExpenses(ctx context.Context, userID int64) ([]model.MonthlyExpense, error)
	GetExpenseByMonth(ctx context.Context, userID int64, month string) (model.MonthlyExpense, error)
	DeleteExpenseByMonth(ctx context.Context, userID int64, month string) error
	AddItem(ctx context.Context, userID, expenseID int64, item model.ExpenseItem) (model.ExpenseItem, error)
	UpdateItem(ctx context.Context, userID, itemID int64, changes model.ExpenseItemChanges) (model.ExpenseItem, error)
	DeleteItem(ctx context.Context, userID, itemID int64) error
	CopyFromMonth(ctx context.Context, userID int64, fromMonth, toMonth string) (model.MonthlyExpense, error)
	GetTrend(ctx context.Context, userID int64, months int) ([]model.ExpenseTrendPoint, error)
	GetItemTrend(ctx context.Context, userID int64, name string, months int) ([]model.ItemTrendPoint, error)
	GetItemsTrend(ctx context.Context, userID int64, names []string, months int) ([]model.ItemTrendPoint, error)
	GetItemNames(ctx context.Context, userID int64) ([]string, error)
	GetTrackedItems(ctx context.Context, userID int64) ([]string, error)
	SetTrackedItems(ctx context.Context, userID int64, names []string) error
}

type Controller struct {
	authService        AuthService
	categoryService    CategoryService
	transactionService TransactionService
	portfolioService   PortfolioService
	priceService       PriceService
	expenseService     ExpenseService
}

func NewController(
	authService AuthService,
	categoryService CategoryService,
	transactionService TransactionService,
	portfolioService PortfolioService,
	priceService PriceService,
	expenseService ExpenseService,
) *Controller {
	return &Controller{
		authService:        authService,
		categoryService:    categoryService,
		transactionService: transactionService,
		portfolioService:   portfolioService,
		priceService:       priceService,
		expenseService:     expenseService,
	}
}

package dbConverter

import (
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/internal/model/dbModel"
)

func ConvertUser(dbUser dbModel.User) model.User {
	return model.User{
		UserID:       dbUser.UserID,
		Username:     dbUser.Username,
		PasswordHash: dbUser.PasswordHash,
		DisplayName:  dbUser.DisplayName,
		Email:        dbUser.Email,
		CreatedAt:    dbUser.CreatedAt,
	}
}

func ConvertCategory(dbCategory dbModel.Category) model.Category {
	return model.Category{
		CategoryID:  dbCategory.CategoryID,
		UserID:      dbCategory.UserID,
		Name:        dbCategory.Name,
		Description: dbCategory.Description,
		Color:       dbCategory.Color,
		CreatedAt:   dbCategory.CreatedAt,
		UpdatedAt:   dbCategory.UpdatedAt,
	}
}

func ConvertTransaction(dbTransaction dbModel.Transaction) model.Transaction {
	return model.Transaction{
		TransactionID:   dbTransaction.TransactionID,
		CategoryID:      dbTransaction.CategoryID,
		CategoryName:    dbTransaction.CategoryName,
		Type:            dbTransaction.Type,
		Quantity:        dbTransaction.Quantity,
		Price:           dbTransaction.Price,
		Amount:          dbTransaction.Amount,
		TransactionDate: model.NewDate(dbTransaction.TransactionDate),
		Notes:           dbTransaction.Notes,
		CreatedAt:       dbTransaction.CreatedAt,
		UpdatedAt:       dbTransaction.UpdatedAt,
	}
}

func ConvertLedgerTotals(dbTotals dbModel.LedgerTotals) model.LedgerTotals {
	return model.LedgerTotals{
		BuyQuantity:  dbTotals.BuyQuantity,
		SellQuantity: dbTotals.SellQuantity,
		BuyAmount:    dbTotals.BuyAmount,
		SellAmount:   dbTotals.SellAmount,
	}
}

func ConvertHolding(dbHolding dbModel.Holding) model.Holding {
	return model.Holding{
		HoldingID:     dbHolding.HoldingID,
		CategoryID:    dbHolding.CategoryID,
		Quantity:      dbHolding.Quantity,
		AveragePrice:  dbHolding.AveragePrice,
		TotalInvested: dbHolding.TotalInvested,
		CurrentValue:  dbHolding.CurrentValue,
		UpdatedAt:     dbHolding.UpdatedAt,
	}
}

func ConvertPosition(dbPosition dbModel.PortfolioPosition) model.PortfolioPosition {
	return model.PortfolioPosition{
		CategoryID:    dbPosition.CategoryID,
		CategoryName:  dbPosition.CategoryName,
		Color:         dbPosition.Color,
		Quantity:      dbPosition.Quantity,
		AveragePrice:  dbPosition.AveragePrice,
		TotalInvested: dbPosition.TotalInvested,
		CurrentValue:  dbPosition.CurrentValue,
		Pnl:           dbPosition.Pnl,
		PnlPercentage: dbPosition.PnlPercentage,
	}
}

func ConvertSnapshot(dbSnapshot dbModel.Snapshot) model.Snapshot {
	return model.Snapshot{
		SnapshotID:    dbSnapshot.SnapshotID,
		CategoryID:    dbSnapshot.CategoryID,
		SnapshotDate:  model.NewDate(dbSnapshot.SnapshotDate),
		TotalValue:    dbSnapshot.TotalValue,
		TotalInvested: dbSnapshot.TotalInvested,
		Pnl:           dbSnapshot.Pnl,
		PnlPercentage: dbSnapshot.PnlPercentage,
		CreatedAt:     dbSnapshot.CreatedAt,
	}
}

func ConvertHistoryPoint(dbPoint dbModel.HistoryPoint) model.HistoryPoint {
	return model.HistoryPoint{
		Date:             model.NewDate(dbPoint.SnapshotDate),
		TotalValue:       dbPoint.TotalValue,
		TotalInvested:    dbPoint.TotalInvested,
		Pnl:              dbPoint.Pnl,
		AvgPnlPercentage: dbPoint.AvgPnlPercentage,
	}
}

func ConvertExpense(dbExpense dbModel.MonthlyExpense) model.MonthlyExpense {
	return model.MonthlyExpense{
		ExpenseID:   dbExpense.ExpenseID,
		UserID:      dbExpense.UserID,
		Month:       dbExpense.Month,
		TotalAmount: dbExpense.TotalAmount,
		Notes:       dbExpense.Notes,
		CreatedAt:   dbExpense.CreatedAt,
		UpdatedAt:   dbExpense.UpdatedAt,
	}
}

func ConvertExpenseItem(dbItem dbModel.ExpenseItem) model.ExpenseItem {
	return model.ExpenseItem{
		ItemID:    dbItem.ItemID,
		ExpenseID: dbItem.ExpenseID,
		Name:      dbItem.Name,
		Amount:    dbItem.Amount,
		Notes:     dbItem.Notes,
		CreatedAt: dbItem.CreatedAt,
	}
}

func ConvertExpenseTrendPoint(dbPoint dbModel.ExpenseTrendPoint) model.ExpenseTrendPoint {
	return model.ExpenseTrendPoint{
		Month:       dbPoint.Month,
		TotalAmount: dbPoint.TotalAmount,
	}
}

func ConvertItemTrendPoint(dbPoint dbModel.ItemTrendPoint) model.ItemTrendPoint {
	return model.ItemTrendPoint{
		Month:  dbPoint.Month,
		Name:   dbPoint.Name,
		Amount: dbPoint.Amount,
	}
}

package xlsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/utils"
	"github.com/xuri/excelize/v2"
)

const (
	holdingsSheet     = "Holdings"
	transactionsSheet = "Transactions"
)

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

func (g *XLSXGenerator) Generate(ctx context.Context, overview model.PortfolioOverview, transactions []model.Transaction) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := g.fillHoldingsSheet(f, overview); err != nil {
		return nil, "", err
	}

	if err := g.fillTransactionsSheet(f, transactions); err != nil {
		return nil, "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) headerStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
}

func (g *XLSXGenerator) fillHoldingsSheet(f *excelize.File, overview model.PortfolioOverview) error {
	_, err := f.NewSheet(holdingsSheet)
	if err != nil {
		return err
	}

	styleID, err := g.headerStyle(f, "#cfe2f3")
	if err != nil {
		return err
	}

	headers := []string{"category", "quantity", "average price", "invested", "current value", "pnl", "pnl %"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		_ = f.SetCellStr(holdingsSheet, cell, header)
		if err := f.SetCellStyle(holdingsSheet, cell, cell, styleID); err != nil {
			return err
		}
	}

	for i, position := range overview.Positions {
		row := i + 2
		_ = f.SetCellStr(holdingsSheet, fmt.Sprintf("A%d", row), position.CategoryName)
		_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("B%d", row), position.Quantity.InexactFloat64())
		_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("C%d", row), position.AveragePrice.InexactFloat64())
		_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("D%d", row), position.TotalInvested.InexactFloat64())
		_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("E%d", row), position.CurrentValue.InexactFloat64())
		_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("F%d", row), position.Pnl.InexactFloat64())
		_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("G%d", row), position.PnlPercentage.InexactFloat64())
	}

	totalsRow := len(overview.Positions) + 3
	_ = f.SetCellStr(holdingsSheet, fmt.Sprintf("A%d", totalsRow), "total")
	_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("D%d", totalsRow), overview.TotalInvested.InexactFloat64())
	_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("E%d", totalsRow), overview.TotalValue.InexactFloat64())
	_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("F%d", totalsRow), overview.TotalPnl.InexactFloat64())
	_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("G%d", totalsRow), overview.TotalPnlPercentage.InexactFloat64())

	return nil
}

func (g *XLSXGenerator) fillTransactionsSheet(f *excelize.File, transactions []model.Transaction) error {
	_, err := f.NewSheet(transactionsSheet)
	if err != nil {
		return err
	}

	styleID, err := g.headerStyle(f, "#d9ead3")
	if err != nil {
		return err
	}

	headers := []string{"date", "category", "type", "quantity", "price", "amount", "notes"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		_ = f.SetCellStr(transactionsSheet, cell, header)
		if err := f.SetCellStyle(transactionsSheet, cell, cell, styleID); err != nil {
			return err
		}
	}

	for i, transaction := range transactions {
		row := i + 2
		_ = f.SetCellStr(transactionsSheet, fmt.Sprintf("A%d", row), transaction.TransactionDate.String())
		_ = f.SetCellStr(transactionsSheet, fmt.Sprintf("B%d", row), transaction.CategoryName)
		_ = f.SetCellStr(transactionsSheet, fmt.Sprintf("C%d", row), transaction.Type)
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("D%d", row), transaction.Quantity.InexactFloat64())
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("E%d", row), transaction.Price.InexactFloat64())
		_ = f.SetCellValue(transactionsSheet, fmt.Sprintf("F%d", row), transaction.Amount.InexactFloat64())
		_ = f.SetCellStr(transactionsSheet, fmt.Sprintf("G%d", row), transaction.Notes)
	}

	return nil
}

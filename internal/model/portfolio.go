package model

import "github.com/shopspring/decimal"

// PortfolioPosition is a holding joined with its category plus derived pnl.
type PortfolioPosition struct {
	CategoryID    int64           `json:"categoryId"`
	CategoryName  string          `json:"categoryName"`
	Color         string          `json:"color"`
	Quantity      decimal.Decimal `json:"quantity"`
	AveragePrice  decimal.Decimal `json:"averagePrice"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	CurrentValue  decimal.Decimal `json:"currentValue"`
	Pnl           decimal.Decimal `json:"pnl"`
	PnlPercentage decimal.Decimal `json:"pnlPercentage"`
}

type PortfolioOverview struct {
	TotalInvested      decimal.Decimal     `json:"totalInvested"`
	TotalValue         decimal.Decimal     `json:"totalValue"`
	TotalPnl           decimal.Decimal     `json:"totalPnl"`
	TotalPnlPercentage decimal.Decimal     `json:"totalPnlPercentage"`
	CategoriesCount    int                 `json:"categoriesCount"`
	Positions          []PortfolioPosition `json:"positions"`
}

type DistributionSlice struct {
	CategoryID   int64           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Color        string          `json:"color"`
	Value        decimal.Decimal `json:"value"`
	Percentage   decimal.Decimal `json:"percentage"`
}

type Dashboard struct {
	Overview           PortfolioOverview   `json:"overview"`
	Distribution       []DistributionSlice `json:"distribution"`
	Pnl                []PortfolioPosition `json:"pnl"`
	PnlLast7Days       []HistoryPoint      `json:"pnlLast7Days"`
	History            []HistoryPoint      `json:"history"`
	RecentTransactions []Transaction       `json:"recentTransactions"`
}

package model

import "github.com/shopspring/decimal"

// Quote is a price fetched from an external source.
type Quote struct {
	Code   string          `json:"code"`
	Price  decimal.Decimal `json:"price"`
	Date   string          `json:"date"`
	Source string          `json:"source"`
}

package models

import "github.com/shopspring/decimal"

// CategorySummary aggregates expenses of one category over a date range
type CategorySummary struct {
	Category     string          `json:"category"`
	ExpenseCount int64           `json:"expense_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

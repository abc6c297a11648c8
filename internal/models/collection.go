package models

import "github.com/shopspring/decimal"

// ExpenseCollection is the client-side view of one fetch: the expenses for
// the active range, ascending by date, plus the derived total. It is
// recomputed wholesale on every fetch and never updated incrementally.
type ExpenseCollection struct {
	Expenses []Expense       `json:"expenses"`
	Total    decimal.Decimal `json:"total"`
}

// NewExpenseCollection derives a collection from a fetched sequence. The
// total is accumulated in slice order, which matches the repository's
// ascending-by-date sort, so repeated fetches produce identical totals.
func NewExpenseCollection(expenses []Expense) ExpenseCollection {
	total := decimal.Zero
	for i := range expenses {
		total = total.Add(expenses[i].Amount)
	}

	return ExpenseCollection{
		Expenses: expenses,
		Total:    total,
	}
}

// Len returns the number of expenses in the collection
func (c ExpenseCollection) Len() int {
	return len(c.Expenses)
}

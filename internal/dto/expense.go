package dto

import (
	"time"

	"expensetrack/internal/models"
	"expensetrack/internal/services"
)

// Expense Request DTOs

// CreateExpenseRequest represents the request payload for adding an expense.
// Amount arrives as user-entered text and is parsed server-side so that
// malformed values fail validation instead of losing precision.
type CreateExpenseRequest struct {
	Date     string `json:"date" validate:"required,expense_date"`
	Category string `json:"category" validate:"required,expense_category"`
	Amount   string `json:"amount" validate:"required,expense_amount"`
	Note     string `json:"note" validate:"max=1000"`
}

// Expense Response DTOs

// ExpenseResponse represents a single expense in API responses
type ExpenseResponse struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Category  string `json:"category"`
	Amount    string `json:"amount"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
}

// NewExpenseResponse maps a model expense onto the wire representation
func NewExpenseResponse(e models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:        e.ID.String(),
		Date:      e.DateString(),
		Category:  e.Category,
		Amount:    e.Amount.StringFixed(2),
		Note:      e.Note,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

// RangeResponse echoes the effective date range a listing was computed over
type RangeResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ListExpensesResponse represents the expense list with its derived total
type ListExpensesResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
	Total    string            `json:"total"`
	Range    RangeResponse     `json:"range"`
	State    string            `json:"state"`
}

// CreateExpenseResponse represents the response after adding an expense
type CreateExpenseResponse struct {
	Expense ExpenseResponse `json:"expense"`
	Message string          `json:"message"`
}

// CategorySummaryListResponse represents per-category totals over a range
type CategorySummaryListResponse struct {
	Summaries []models.CategorySummary `json:"summaries"`
	Range     RangeResponse            `json:"range"`
}

// NotificationResponse represents the transient notification slot
type NotificationResponse struct {
	Notification *services.Notification `json:"notification"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}

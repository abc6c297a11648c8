package repositories

import (
	"time"

	"expensetrack/internal/models"

	"github.com/google/uuid"
)

// ExpenseRepositoryInterface defines the contract for expense store operations.
// The remote store is the sole source of truth: callers re-fetch after every
// mutation instead of patching local state.
type ExpenseRepositoryInterface interface {
	Create(expense *models.Expense) error
	GetByID(id uuid.UUID) (*models.Expense, error)
	GetByDateRange(start, end time.Time) ([]models.Expense, error)
	Delete(id uuid.UUID) error
	GetCategorySummary(start, end time.Time) ([]models.CategorySummary, error)
}

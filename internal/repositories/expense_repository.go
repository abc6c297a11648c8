package repositories

import (
	"errors"
	"fmt"
	"time"

	"expensetrack/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrExpenseNotFound = errors.New("expense not found")
)

// expenseRepository implements ExpenseRepositoryInterface
type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) ExpenseRepositoryInterface {
	return &expenseRepository{
		db: db,
	}
}

// Create persists a new expense. The store assigns the ID and creation
// timestamp in the model's BeforeCreate hook.
func (r *expenseRepository) Create(expense *models.Expense) error {
	if err := r.db.Create(expense).Error; err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetByID retrieves an expense by ID
func (r *expenseRepository) GetByID(id uuid.UUID) (*models.Expense, error) {
	expense := &models.Expense{ID: id}
	if err := r.db.First(expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// GetByDateRange retrieves expenses whose date falls within [start, end]
// inclusive, ascending by date
func (r *expenseRepository) GetByDateRange(start, end time.Time) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := r.db.Where("date >= ? AND date <= ?", start, end).
		Order("date ASC").
		Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("failed to get expenses by date range: %w", err)
	}
	return expenses, nil
}

// Delete removes an expense by ID. Returns ErrExpenseNotFound when no row
// matched; the caller decides how to surface that.
func (r *expenseRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&models.Expense{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete expense: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// GetCategorySummary retrieves expense totals grouped by category within a range
func (r *expenseRepository) GetCategorySummary(start, end time.Time) ([]models.CategorySummary, error) {
	var summaries []models.CategorySummary

	query := `
		SELECT
			category,
			COUNT(*) as expense_count,
			SUM(amount) as total_amount
		FROM expenses
		WHERE date >= ? AND date <= ?
		GROUP BY category
		ORDER BY total_amount DESC
	`

	if err := r.db.Raw(query, start, end).Scan(&summaries).Error; err != nil {
		return nil, fmt.Errorf("failed to get category summary: %w", err)
	}

	return summaries, nil
}

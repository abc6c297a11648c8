package services

import (
	"math/rand"
	"time"

	"expensetrack/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

// ExpenseGeneratorInterface generates realistic expense data for development
// seeding
type ExpenseGeneratorInterface interface {
	GenerateExpenses(start, end time.Time, count int) []*models.Expense
}

type expenseGenerator struct {
	categoryPool []categoryProfile
	rng          *rand.Rand
}

// categoryProfile bounds amounts to values plausible for the category
type categoryProfile struct {
	name      string
	minAmount float64
	maxAmount float64
}

// NewExpenseGenerator creates a new expense generator
func NewExpenseGenerator() ExpenseGeneratorInterface {
	source := rand.NewSource(time.Now().UnixNano())
	return &expenseGenerator{
		categoryPool: []categoryProfile{
			{"Groceries", 5, 180},
			{"Dining", 4, 90},
			{"Transport", 2, 60},
			{"Shopping", 10, 250},
			{"Entertainment", 5, 80},
			{"Bills", 20, 300},
			{"Healthcare", 10, 150},
			{"Travel", 50, 600},
		},
		rng: rand.New(source),
	}
}

// GenerateExpenses produces count expenses with dates spread over the range
func (g *expenseGenerator) GenerateExpenses(start, end time.Time, count int) []*models.Expense {
	if count <= 0 || end.Before(start) {
		return nil
	}

	days := int(end.Sub(start).Hours()/24) + 1
	expenses := make([]*models.Expense, 0, count)
	for i := 0; i < count; i++ {
		profile := g.categoryPool[g.rng.Intn(len(g.categoryPool))]
		amount := decimal.NewFromFloat(gofakeit.Float64Range(profile.minAmount, profile.maxAmount)).Round(2)
		date := start.AddDate(0, 0, g.rng.Intn(days))

		expenses = append(expenses, &models.Expense{
			Date:     time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
			Category: profile.name,
			Amount:   amount,
			Note:     gofakeit.ProductName(),
		})
	}
	return expenses
}

package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseGenerator_GenerateExpenses(t *testing.T) {
	generator := NewExpenseGenerator()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	expenses := generator.GenerateExpenses(start, end, 50)
	require.Len(t, expenses, 50)

	for _, e := range expenses {
		assert.NoError(t, e.Validate())
		assert.False(t, e.Date.Before(start))
		assert.False(t, e.Date.After(end))
		assert.False(t, e.Amount.IsNegative())
		assert.LessOrEqual(t, int(-e.Amount.Exponent()), 2)
	}
}

func TestExpenseGenerator_DegenerateInputs(t *testing.T) {
	generator := NewExpenseGenerator()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Nil(t, generator.GenerateExpenses(start, start.AddDate(0, 0, 7), 0))
	assert.Nil(t, generator.GenerateExpenses(start, start.AddDate(0, 0, -1), 10))

	// Single-day range pins every expense to that day.
	expenses := generator.GenerateExpenses(start, start, 5)
	require.Len(t, expenses, 5)
	for _, e := range expenses {
		assert.True(t, e.Date.Equal(start))
	}
}

package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"expensetrack/internal/models"
	"expensetrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockExpenseRepository is a testify mock of ExpenseRepositoryInterface
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) Create(expense *models.Expense) error {
	args := m.Called(expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) GetByID(id uuid.UUID) (*models.Expense, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Expense), args.Error(1)
}

func (m *MockExpenseRepository) GetByDateRange(start, end time.Time) ([]models.Expense, error) {
	args := m.Called(start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Delete(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockExpenseRepository) GetCategorySummary(start, end time.Time) ([]models.CategorySummary, error) {
	args := m.Called(start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CategorySummary), args.Error(1)
}

// noopMetrics satisfies MetricsRecorderInterface without touching the
// global Prometheus registry
type noopMetrics struct{}

func (noopMetrics) IncrementCounter(string, map[string]string) {}

func (noopMetrics) RecordProcessingTime(string, time.Duration) {}

func (noopMetrics) RecordGauge(string, float64, map[string]string) {}

type TrackerServiceSuite struct {
	suite.Suite
	repo          *MockExpenseRepository
	notifications NotificationCenterInterface
	tracker       *trackerService
	ctx           context.Context
}

func (s *TrackerServiceSuite) SetupTest() {
	s.repo = new(MockExpenseRepository)
	s.notifications = NewNotificationCenter(3 * time.Second)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewTrackerService(s.repo, s.notifications, noopMetrics{}, logger)
	s.tracker = svc.(*trackerService)
	// Fixed clock so the current-month default is deterministic.
	s.tracker.now = func() time.Time {
		return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	}
	s.ctx = context.Background()
}

func (s *TrackerServiceSuite) TearDownTest() {
	s.notifications.Shutdown()
}

func TestTrackerServiceSuite(t *testing.T) {
	suite.Run(t, new(TrackerServiceSuite))
}

func fixtureExpense(date time.Time, category string, amount string) models.Expense {
	amt, _ := decimal.NewFromString(amount)
	return models.Expense{
		ID:       uuid.New(),
		Date:     date,
		Category: category,
		Amount:   amt,
	}
}

func (s *TrackerServiceSuite) marchRange() (time.Time, time.Time) {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
}

func (s *TrackerServiceSuite) TestRefresh_DefaultsToCurrentMonth() {
	start, end := s.marchRange()
	expenses := []models.Expense{
		fixtureExpense(start.AddDate(0, 0, 4), "Food", "10.00"),
		fixtureExpense(start.AddDate(0, 0, 9), "Transport", "5.50"),
	}
	s.repo.On("GetByDateRange", start, end).Return(expenses, nil)

	err := s.tracker.Refresh(s.ctx)
	s.NoError(err)

	snap := s.tracker.Snapshot()
	s.Equal(StateReady, snap.State)
	s.Len(snap.Expenses, 2)
	s.True(snap.Total.Equal(decimal.RequireFromString("15.50")))
	s.repo.AssertExpectations(s.T())
}

func (s *TrackerServiceSuite) TestRefresh_FailureKeepsStaleData() {
	start, end := s.marchRange()
	expenses := []models.Expense{fixtureExpense(start, "Food", "10.00")}

	s.repo.On("GetByDateRange", start, end).Return(expenses, nil).Once()
	s.NoError(s.tracker.Refresh(s.ctx))

	s.repo.On("GetByDateRange", start, end).Return(nil, errors.New("connection refused")).Once()
	err := s.tracker.Refresh(s.ctx)
	s.Error(err)

	snap := s.tracker.Snapshot()
	s.Equal(StateError, snap.State)
	s.Len(snap.Expenses, 1, "stale data should survive a failed refresh")
	s.True(snap.Total.Equal(decimal.RequireFromString("10.00")))

	notification := s.notifications.Current()
	s.Require().NotNil(notification)
	s.Equal(NotificationError, notification.Kind)
}

func (s *TrackerServiceSuite) TestRefresh_StaleResponseDiscarded() {
	start, end := s.marchRange()
	oldList := []models.Expense{fixtureExpense(start, "Food", "1.00")}
	newList := []models.Expense{fixtureExpense(start, "Food", "2.00")}

	started := make(chan struct{})
	release := make(chan struct{})
	s.repo.On("GetByDateRange", start, end).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(oldList, nil).Once()
	s.repo.On("GetByDateRange", start, end).Return(newList, nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.tracker.Refresh(s.ctx)
	}()

	<-started
	s.NoError(s.tracker.Refresh(s.ctx))
	close(release)
	wg.Wait()

	snap := s.tracker.Snapshot()
	s.Equal(StateReady, snap.State)
	s.True(snap.Total.Equal(decimal.RequireFromString("2.00")),
		"the most recently issued refresh should win")
}

func (s *TrackerServiceSuite) TestSubmit_AddsExpenseAndRefreshes() {
	start, end := s.marchRange()
	created := fixtureExpense(start.AddDate(0, 0, 4), "Food", "12.50")

	s.repo.On("Create", mock.AnythingOfType("*models.Expense")).Return(nil).Once()
	s.repo.On("GetByDateRange", start, end).Return([]models.Expense{created}, nil).Once()

	expense, err := s.tracker.Submit(s.ctx, ExpenseInput{
		Date:     "2024-03-05",
		Category: "Food",
		Amount:   "12.50",
		Note:     "lunch",
	})
	s.NoError(err)
	s.Require().NotNil(expense)
	s.Equal("Food", expense.Category)
	s.True(expense.Amount.Equal(decimal.RequireFromString("12.50")))

	snap := s.tracker.Snapshot()
	s.Len(snap.Expenses, 1)
	s.False(snap.Submitting)

	notification := s.notifications.Current()
	s.Require().NotNil(notification)
	s.Equal(NotificationSuccess, notification.Kind)
	s.Equal("Expense added", notification.Message)
	s.repo.AssertExpectations(s.T())
}

func (s *TrackerServiceSuite) TestSubmit_RejectedWhileInFlight() {
	s.tracker.mu.Lock()
	s.tracker.submitting = true
	s.tracker.mu.Unlock()

	_, err := s.tracker.Submit(s.ctx, ExpenseInput{
		Date:     "2024-03-05",
		Category: "Food",
		Amount:   "12.50",
	})
	s.ErrorIs(err, ErrSubmitInFlight)
	s.repo.AssertNotCalled(s.T(), "Create", mock.Anything)
}

func (s *TrackerServiceSuite) TestSubmit_GuardClearedOnFailure() {
	s.repo.On("Create", mock.AnythingOfType("*models.Expense")).
		Return(errors.New("connection refused")).Once()

	_, err := s.tracker.Submit(s.ctx, ExpenseInput{
		Date:     "2024-03-05",
		Category: "Food",
		Amount:   "12.50",
	})
	s.Error(err)
	s.False(s.tracker.Snapshot().Submitting, "guard must clear after a failed submit")

	notification := s.notifications.Current()
	s.Require().NotNil(notification)
	s.Equal(NotificationError, notification.Kind)

	// A second submit goes through once the guard is clear.
	start, end := s.marchRange()
	s.repo.On("Create", mock.AnythingOfType("*models.Expense")).Return(nil).Once()
	s.repo.On("GetByDateRange", start, end).Return([]models.Expense{}, nil).Once()

	_, err = s.tracker.Submit(s.ctx, ExpenseInput{
		Date:     "2024-03-05",
		Category: "Food",
		Amount:   "12.50",
	})
	s.NoError(err)
}

func (s *TrackerServiceSuite) TestSubmit_ValidationErrors() {
	tests := []struct {
		name    string
		input   ExpenseInput
		wantErr error
	}{
		{
			name:    "malformed date",
			input:   ExpenseInput{Date: "03/05/2024", Category: "Food", Amount: "10.00"},
			wantErr: models.ErrInvalidDate,
		},
		{
			name:    "malformed amount",
			input:   ExpenseInput{Date: "2024-03-05", Category: "Food", Amount: "ten"},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "too many fraction digits",
			input:   ExpenseInput{Date: "2024-03-05", Category: "Food", Amount: "10.005"},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			input:   ExpenseInput{Date: "2024-03-05", Category: "Food", Amount: "-1.00"},
			wantErr: models.ErrNegativeAmount,
		},
		{
			name:    "blank category",
			input:   ExpenseInput{Date: "2024-03-05", Category: "   ", Amount: "10.00"},
			wantErr: models.ErrEmptyCategory,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.tracker.Submit(s.ctx, tt.input)
			s.ErrorIs(err, tt.wantErr)
			s.False(s.tracker.Snapshot().Submitting)
		})
	}
	s.repo.AssertNotCalled(s.T(), "Create", mock.Anything)
}

func (s *TrackerServiceSuite) TestSubmit_ZeroAmountAccepted() {
	start, end := s.marchRange()
	s.repo.On("Create", mock.AnythingOfType("*models.Expense")).Return(nil).Once()
	s.repo.On("GetByDateRange", start, end).Return([]models.Expense{}, nil).Once()

	expense, err := s.tracker.Submit(s.ctx, ExpenseInput{
		Date:     "2024-03-05",
		Category: "Food",
		Amount:   "0.00",
	})
	s.NoError(err)
	s.True(expense.Amount.IsZero())
}

func (s *TrackerServiceSuite) TestRequestDelete_RemovesAndRecomputesTotal() {
	start, end := s.marchRange()
	keep := fixtureExpense(start.AddDate(0, 0, 1), "Transport", "5.50")
	remove := fixtureExpense(start, "Food", "10.00")

	s.repo.On("GetByDateRange", start, end).
		Return([]models.Expense{remove, keep}, nil).Once()
	s.NoError(s.tracker.Refresh(s.ctx))
	s.True(s.tracker.Snapshot().Total.Equal(decimal.RequireFromString("15.50")))

	s.repo.On("Delete", remove.ID).Return(nil).Once()
	s.repo.On("GetByDateRange", start, end).
		Return([]models.Expense{keep}, nil).Once()

	err := s.tracker.RequestDelete(s.ctx, remove.ID, ConfirmerFunc(func() bool { return true }))
	s.NoError(err)

	snap := s.tracker.Snapshot()
	s.Len(snap.Expenses, 1)
	s.True(snap.Total.Equal(decimal.RequireFromString("5.50")))

	notification := s.notifications.Current()
	s.Require().NotNil(notification)
	s.Equal("Expense deleted", notification.Message)
	s.repo.AssertExpectations(s.T())
}

func (s *TrackerServiceSuite) TestRequestDelete_DeclinedMakesNoStoreCall() {
	err := s.tracker.RequestDelete(s.ctx, uuid.New(), ConfirmerFunc(func() bool { return false }))
	s.ErrorIs(err, ErrDeleteDeclined)
	s.repo.AssertNotCalled(s.T(), "Delete", mock.Anything)
	s.Nil(s.notifications.Current())
}

func (s *TrackerServiceSuite) TestRequestDelete_NilConfirmerDeclines() {
	err := s.tracker.RequestDelete(s.ctx, uuid.New(), nil)
	s.ErrorIs(err, ErrDeleteDeclined)
	s.repo.AssertNotCalled(s.T(), "Delete", mock.Anything)
}

func (s *TrackerServiceSuite) TestRequestDelete_StoreFailureLeavesListUntouched() {
	start, end := s.marchRange()
	existing := fixtureExpense(start, "Food", "10.00")
	s.repo.On("GetByDateRange", start, end).
		Return([]models.Expense{existing}, nil).Once()
	s.NoError(s.tracker.Refresh(s.ctx))

	s.repo.On("Delete", existing.ID).Return(errors.New("connection refused")).Once()
	err := s.tracker.RequestDelete(s.ctx, existing.ID, ConfirmerFunc(func() bool { return true }))
	s.Error(err)

	snap := s.tracker.Snapshot()
	s.Len(snap.Expenses, 1)

	notification := s.notifications.Current()
	s.Require().NotNil(notification)
	s.Equal(NotificationError, notification.Kind)
}

func (s *TrackerServiceSuite) TestRequestDelete_UnknownID() {
	id := uuid.New()
	s.repo.On("Delete", id).Return(repositories.ErrExpenseNotFound).Once()

	err := s.tracker.RequestDelete(s.ctx, id, ConfirmerFunc(func() bool { return true }))
	s.ErrorIs(err, repositories.ErrExpenseNotFound)
}

func (s *TrackerServiceSuite) TestSetRange_ExplicitBounds() {
	start := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	s.tracker.SetRange(&start, &end)

	s.repo.On("GetByDateRange", start, end).Return([]models.Expense{}, nil).Once()
	s.NoError(s.tracker.Refresh(s.ctx))
	s.repo.AssertExpectations(s.T())
}

func (s *TrackerServiceSuite) TestSetRange_NilBoundPreservesOther() {
	start := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	s.tracker.SetRange(&start, &end)

	// Moving only the end bound must not disturb the start bound.
	newEnd := time.Date(2024, 2, 25, 0, 0, 0, 0, time.UTC)
	s.tracker.SetRange(nil, &newEnd)

	s.repo.On("GetByDateRange", start, newEnd).Return([]models.Expense{}, nil).Once()
	s.NoError(s.tracker.Refresh(s.ctx))
	s.repo.AssertExpectations(s.T())

	snap := s.tracker.Snapshot()
	s.True(snap.Range.Start.Equal(start))
	s.True(snap.Range.End.Equal(newEnd))
}

func (s *TrackerServiceSuite) TestClearRange_ResetsToCurrentMonth() {
	explicitStart := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	explicitEnd := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	s.tracker.SetRange(&explicitStart, &explicitEnd)

	start, end := s.marchRange()
	s.repo.On("GetByDateRange", start, end).Return([]models.Expense{}, nil).Once()

	s.NoError(s.tracker.ClearRange(s.ctx))
	s.True(s.tracker.Snapshot().Range.IsZero())
	s.repo.AssertExpectations(s.T())
}

func (s *TrackerServiceSuite) TestCategorySummary() {
	start, end := s.marchRange()
	summaries := []models.CategorySummary{
		{Category: "Food", ExpenseCount: 2, TotalAmount: decimal.RequireFromString("12.50")},
	}
	s.repo.On("GetCategorySummary", start, end).Return(summaries, nil).Once()

	got, err := s.tracker.CategorySummary(s.ctx)
	s.NoError(err)
	s.Len(got, 1)
	s.Equal("Food", got[0].Category)
}

func (s *TrackerServiceSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.Error(s.tracker.Refresh(ctx))
	_, err := s.tracker.Submit(ctx, ExpenseInput{})
	s.Error(err)
	s.Error(s.tracker.RequestDelete(ctx, uuid.New(), nil))
	s.repo.AssertNotCalled(s.T(), "GetByDateRange", mock.Anything, mock.Anything)
}

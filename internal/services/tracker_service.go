package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"expensetrack/internal/models"
	"expensetrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrSubmitInFlight = errors.New("a submit is already in flight")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrDeleteDeclined = errors.New("delete was not confirmed")
)

// TrackerState describes where the tracker is in its load cycle
type TrackerState string

const (
	StateIdle    TrackerState = "idle"
	StateLoading TrackerState = "loading"
	StateReady   TrackerState = "ready"
	StateError   TrackerState = "error"
)

// ExpenseInput carries user-entered expense fields before validation.
// Amount stays textual until parsed so malformed input fails cleanly.
type ExpenseInput struct {
	Date     string
	Category string
	Amount   string
	Note     string
}

// TrackerSnapshot is an immutable view of the tracker's current state
type TrackerSnapshot struct {
	State      TrackerState
	Expenses   []models.Expense
	Total      decimal.Decimal
	Range      models.DateRange
	Submitting bool
}

// trackerService owns the canonical expense list, the derived running
// total, the active date range, and the load/submit state. Every mutation
// happens through its methods under a single mutex.
type trackerService struct {
	mu            sync.Mutex
	repo          repositories.ExpenseRepositoryInterface
	notifications NotificationCenterInterface
	metrics       MetricsRecorderInterface
	logger        *slog.Logger

	state      TrackerState
	collection models.ExpenseCollection
	dateRange  models.DateRange
	submitting bool

	// refreshSeq orders overlapping refreshes: a response carrying a
	// stale sequence number is discarded, so the most recently issued
	// refresh wins.
	refreshSeq uint64

	now func() time.Time
}

// NewTrackerService creates the tracker with an empty collection in the
// Idle state
func NewTrackerService(
	repo repositories.ExpenseRepositoryInterface,
	notifications NotificationCenterInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) TrackerServiceInterface {
	return &trackerService{
		repo:          repo,
		notifications: notifications,
		metrics:       metrics,
		logger:        logger,
		state:         StateIdle,
		collection:    models.NewExpenseCollection(nil),
		now:           time.Now,
	}
}

// Refresh loads expenses for the effective range and recomputes the total.
// On store failure the previous collection is kept so the user sees stale
// data instead of a blank list.
func (t *trackerService) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	t.state = StateLoading
	t.refreshSeq++
	seq := t.refreshSeq
	start, end := t.dateRange.Effective(t.now())
	t.mu.Unlock()

	began := time.Now()
	expenses, err := t.repo.GetByDateRange(start, end)

	t.mu.Lock()
	defer t.mu.Unlock()

	if seq != t.refreshSeq {
		// Superseded by a later refresh; drop this response.
		return nil
	}

	if err != nil {
		t.state = StateError
		t.metrics.IncrementCounter("tracker.refresh", map[string]string{"status": "failed"})
		t.notify(NotificationError, "Failed to load expenses")
		t.logger.Error("failed to load expenses",
			"error", err,
			"start_date", start.Format(models.DateFormat),
			"end_date", end.Format(models.DateFormat))
		return fmt.Errorf("failed to load expenses: %w", err)
	}

	t.collection = models.NewExpenseCollection(expenses)
	t.state = StateReady
	t.metrics.IncrementCounter("tracker.refresh", map[string]string{"status": "success"})
	t.metrics.RecordProcessingTime("tracker.refresh", time.Since(began))
	t.metrics.RecordGauge("tracker.expenses", float64(t.collection.Len()), nil)
	return nil
}

// Submit validates and persists a new expense, then refreshes the list.
// Only one submit may be in flight at a time; the guard is cleared on
// every exit path so the caller is never stuck disabled.
func (t *trackerService) Submit(ctx context.Context, input ExpenseInput) (*models.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	if t.submitting {
		t.mu.Unlock()
		t.metrics.IncrementCounter("tracker.submit.rejected", nil)
		return nil, ErrSubmitInFlight
	}
	t.submitting = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.submitting = false
		t.mu.Unlock()
	}()

	expense, err := parseExpenseInput(input)
	if err != nil {
		t.notify(NotificationError, "Failed to add expense")
		return nil, err
	}

	began := time.Now()
	if err := t.repo.Create(expense); err != nil {
		t.metrics.IncrementCounter("tracker.submit", map[string]string{"status": "failed"})
		t.notify(NotificationError, "Failed to add expense")
		t.logger.Error("failed to add expense", "error", err, "category", expense.Category)
		return nil, fmt.Errorf("failed to add expense: %w", err)
	}

	t.metrics.IncrementCounter("tracker.submit", map[string]string{"status": "success"})
	t.metrics.RecordProcessingTime("tracker.submit", time.Since(began))
	t.notify(NotificationSuccess, "Expense added")

	if err := t.Refresh(ctx); err != nil {
		t.logger.Warn("refresh after submit failed", "error", err)
	}
	return expense, nil
}

// RequestDelete asks for confirmation before deleting. A declined
// confirmation makes no store call and leaves the list untouched.
func (t *trackerService) RequestDelete(ctx context.Context, id uuid.UUID, confirm Confirmer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if confirm == nil || !confirm.Confirm() {
		return ErrDeleteDeclined
	}

	if err := t.repo.Delete(id); err != nil {
		t.metrics.IncrementCounter("tracker.delete", map[string]string{"status": "failed"})
		t.notify(NotificationError, "Failed to delete expense")
		if errors.Is(err, repositories.ErrExpenseNotFound) {
			return err
		}
		t.logger.Error("failed to delete expense", "error", err, "expense_id", id)
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	t.metrics.IncrementCounter("tracker.delete", map[string]string{"status": "success"})
	t.notify(NotificationSuccess, "Expense deleted")

	if err := t.Refresh(ctx); err != nil {
		t.logger.Warn("refresh after delete failed", "error", err)
	}
	return nil
}

// SetRange updates either bound of the active date range independently.
// A nil bound keeps whatever that bound currently holds; use ClearRange to
// drop back to the current-month default.
func (t *trackerService) SetRange(start, end *time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if start != nil {
		t.dateRange.Start = start
	}
	if end != nil {
		t.dateRange.End = end
	}
}

// ClearRange resets both bounds and refreshes with the current-month default
func (t *trackerService) ClearRange(ctx context.Context) error {
	t.mu.Lock()
	t.dateRange = models.DateRange{}
	t.mu.Unlock()
	return t.Refresh(ctx)
}

// CategorySummary aggregates per-category counts and totals over the
// effective range
func (t *trackerService) CategorySummary(ctx context.Context) ([]models.CategorySummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	start, end := t.dateRange.Effective(t.now())
	t.mu.Unlock()

	summaries, err := t.repo.GetCategorySummary(start, end)
	if err != nil {
		t.logger.Error("failed to summarize expenses", "error", err)
		return nil, fmt.Errorf("failed to summarize expenses: %w", err)
	}
	return summaries, nil
}

// Snapshot copies the current state; the returned slice is detached from
// the tracker's own
func (t *trackerService) Snapshot() TrackerSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	expenses := make([]models.Expense, len(t.collection.Expenses))
	copy(expenses, t.collection.Expenses)

	return TrackerSnapshot{
		State:      t.state,
		Expenses:   expenses,
		Total:      t.collection.Total,
		Range:      t.dateRange,
		Submitting: t.submitting,
	}
}

// notify publishes a notification and counts it
func (t *trackerService) notify(kind NotificationKind, message string) {
	t.notifications.Publish(kind, message)
	t.metrics.IncrementCounter("tracker.notification", map[string]string{"kind": string(kind)})
}

// parseExpenseInput turns user-entered text into a validated expense.
// The amount must be a non-negative decimal with at most two fraction
// digits.
func parseExpenseInput(input ExpenseInput) (*models.Expense, error) {
	date, err := models.ParseDate(input.Date)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(input.Amount))
	if err != nil {
		return nil, ErrInvalidAmount
	}
	if amount.Exponent() < -2 {
		return nil, ErrInvalidAmount
	}

	expense := &models.Expense{
		Date:     date,
		Category: strings.TrimSpace(input.Category),
		Amount:   amount,
		Note:     strings.TrimSpace(input.Note),
	}
	if err := expense.Validate(); err != nil {
		return nil, err
	}
	return expense, nil
}

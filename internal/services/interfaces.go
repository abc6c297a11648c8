package services

import (
	"context"
	"time"

	"expensetrack/internal/models"

	"github.com/google/uuid"
)

// TrackerServiceInterface is the command surface of the expense tracker.
// All state transitions go through it; callers read state via Snapshot.
type TrackerServiceInterface interface {
	// Refresh loads expenses for the effective date range and recomputes
	// the running total. On failure the last known collection is kept.
	Refresh(ctx context.Context) error

	// Submit validates and persists a new expense. A second submit while
	// one is in flight is rejected with ErrSubmitInFlight.
	Submit(ctx context.Context, input ExpenseInput) (*models.Expense, error)

	// RequestDelete asks the Confirmer before touching the store. A
	// declined confirmation makes no store call at all.
	RequestDelete(ctx context.Context, id uuid.UUID, confirm Confirmer) error

	// SetRange updates either bound independently; nil leaves that
	// bound as it is.
	SetRange(start, end *time.Time)

	// ClearRange resets both bounds and refreshes with the defaulted
	// current-month range.
	ClearRange(ctx context.Context) error

	// CategorySummary aggregates per-category counts and totals over the
	// effective date range.
	CategorySummary(ctx context.Context) ([]models.CategorySummary, error)

	// Snapshot returns an immutable copy of the current state.
	Snapshot() TrackerSnapshot
}

// Confirmer answers whether a destructive operation may proceed
type Confirmer interface {
	Confirm() bool
}

// ConfirmerFunc adapts a plain function to the Confirmer interface
type ConfirmerFunc func() bool

func (f ConfirmerFunc) Confirm() bool { return f() }

// NotificationCenterInterface manages the single transient notification slot
type NotificationCenterInterface interface {
	Publish(kind NotificationKind, message string)
	Current() *Notification
	Close()
	Shutdown()
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

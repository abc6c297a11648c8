package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DateFormat is the wire format for expense dates (calendar date, no time component).
const DateFormat = "2006-01-02"

const maxCategoryLength = 100

var (
	ErrInvalidDate     = errors.New("expense date is required and must be a valid calendar date")
	ErrEmptyCategory   = errors.New("expense category must be non-empty")
	ErrCategoryTooLong = errors.New("expense category too long")
	ErrNegativeAmount  = errors.New("expense amount must not be negative")
)

// Expense represents a single recorded expense. Expenses are immutable once
// created; the only correction path is delete-and-recreate.
type Expense struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Date      time.Time       `gorm:"type:date;not null;index" json:"date"`
	Category  string          `gorm:"type:varchar(100);not null" json:"category"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Note      string          `gorm:"type:text;default:''" json:"note"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
}

// BeforeCreate hook for Expense. The store assigns the ID and creation
// timestamp; callers never set them.
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	return e.Validate()
}

// Validate validates the expense fields
func (e *Expense) Validate() error {
	if e.Date.IsZero() {
		return ErrInvalidDate
	}

	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}

	if len(e.Category) > maxCategoryLength {
		return ErrCategoryTooLong
	}

	if e.Amount.IsNegative() {
		return ErrNegativeAmount
	}

	return nil
}

// TableName returns the table name for Expense
func (e *Expense) TableName() string {
	return "expenses"
}

// DateString returns the expense date in wire format
func (e *Expense) DateString() string {
	return e.Date.Format(DateFormat)
}

// ParseDate parses a calendar date in wire format
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// singleton instance of the validator
var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("expense_date", validateExpenseDate)
	_ = v.RegisterValidation("expense_amount", validateExpenseAmount)
	_ = v.RegisterValidation("expense_category", validateExpenseCategory)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Custom validation functions

// validateExpenseDate validates that a date string is in YYYY-MM-DD form
func validateExpenseDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}

	matched := len(value) == 10 && value[4] == '-' && value[7] == '-'
	if !matched {
		return false
	}
	for i, r := range value {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validateExpenseAmount validates that an amount string parses as a
// non-negative decimal with at most 2 fraction digits
func validateExpenseAmount(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return false
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return false
	}
	if amount.IsNegative() {
		return false
	}
	return amount.Exponent() >= -2
}

// validateExpenseCategory validates that a category is non-blank after
// trimming and within the stored length limit
func validateExpenseCategory(fl validator.FieldLevel) bool {
	category := strings.TrimSpace(fl.Field().String())
	return category != "" && len(category) <= 100
}

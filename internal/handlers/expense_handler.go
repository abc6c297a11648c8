package handlers

import (
	stderrors "errors"
	"net/http"
	"time"

	"expensetrack/internal/dto"
	"expensetrack/internal/errors"
	"expensetrack/internal/models"
	"expensetrack/internal/repositories"
	"expensetrack/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ExpenseHandler handles expense-related HTTP requests
type ExpenseHandler struct {
	tracker services.TrackerServiceInterface
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(tracker services.TrackerServiceInterface) *ExpenseHandler {
	return &ExpenseHandler{tracker: tracker}
}

// ListExpenses returns the expense list and derived total for a date range
// @Summary List expenses
// @Description List expenses for a date range with the derived running total; defaults to the current month
// @Tags Expenses
// @Produce json
// @Param start_date query string false "Range start (YYYY-MM-DD)"
// @Param end_date query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} dto.ListExpensesResponse "Expenses with total"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_004 - Malformed date bound"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_002 - Store failure"
// @Router /expenses [get]
func (h *ExpenseHandler) ListExpenses(c echo.Context) error {
	start, end, err := parseRangeParams(c)
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	}

	h.tracker.SetRange(start, end)
	if err := h.tracker.Refresh(c.Request().Context()); err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, buildListResponse(h.tracker.Snapshot(), time.Now()))
}

// CreateExpense adds a new expense
// @Summary Add an expense
// @Description Validate and persist a new expense, then refresh the list
// @Tags Expenses
// @Accept json
// @Produce json
// @Param request body dto.CreateExpenseRequest true "Expense details"
// @Success 201 {object} dto.CreateExpenseResponse "Expense added"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body or validation error"
// @Failure 409 {object} errors.ErrorResponse "EXPENSE_003 - A submit is already in flight"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_002 - Store failure"
// @Router /expenses [post]
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	var req dto.CreateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	expense, err := h.tracker.Submit(c.Request().Context(), services.ExpenseInput{
		Date:     req.Date,
		Category: req.Category,
		Amount:   req.Amount,
		Note:     req.Note,
	})
	if err != nil {
		switch {
		case stderrors.Is(err, services.ErrSubmitInFlight):
			return SendError(c, errors.ExpenseSubmitInFlight)
		case stderrors.Is(err, models.ErrInvalidDate):
			return SendError(c, errors.ValidationInvalidDate)
		case stderrors.Is(err, services.ErrInvalidAmount),
			stderrors.Is(err, models.ErrNegativeAmount):
			return SendError(c, errors.ValidationInvalidAmount)
		case stderrors.Is(err, models.ErrEmptyCategory),
			stderrors.Is(err, models.ErrCategoryTooLong):
			return SendError(c, errors.ValidationRequiredField, errors.WithDetails(err.Error()))
		default:
			return SendSystemError(c, err)
		}
	}

	return c.JSON(http.StatusCreated, dto.CreateExpenseResponse{
		Expense: dto.NewExpenseResponse(*expense),
		Message: "Expense added successfully",
	})
}

// DeleteExpense deletes an expense after explicit confirmation
// @Summary Delete an expense
// @Description Delete an expense; requires confirm=true because deletion is irreversible
// @Tags Expenses
// @Produce json
// @Param expenseId path string true "Expense ID (UUID)"
// @Param confirm query string true "Must be true to confirm the deletion"
// @Success 200 {object} dto.MessageResponse "Expense deleted"
// @Failure 400 {object} errors.ErrorResponse "EXPENSE_002 - Invalid expense ID"
// @Failure 404 {object} errors.ErrorResponse "EXPENSE_001 - Expense not found"
// @Failure 428 {object} errors.ErrorResponse "EXPENSE_004 - Deletion not confirmed"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_002 - Store failure"
// @Router /expenses/{expenseId} [delete]
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	expenseID, err := uuid.Parse(c.Param("expenseId"))
	if err != nil {
		return SendError(c, errors.ExpenseInvalidID, errors.WithDetails("Invalid expense ID"))
	}

	confirmed := c.QueryParam("confirm") == "true"
	err = h.tracker.RequestDelete(c.Request().Context(), expenseID,
		services.ConfirmerFunc(func() bool { return confirmed }))
	if err != nil {
		switch {
		case stderrors.Is(err, services.ErrDeleteDeclined):
			return SendError(c, errors.ExpenseNotConfirmed)
		case stderrors.Is(err, repositories.ErrExpenseNotFound):
			return SendError(c, errors.ExpenseNotFound)
		default:
			return SendSystemError(c, err)
		}
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Expense deleted successfully"})
}

// ClearRange resets the date range to the current-month default
// @Summary Clear the date range
// @Description Reset both range bounds and refresh with the current-month default
// @Tags Expenses
// @Produce json
// @Success 200 {object} dto.ListExpensesResponse "Expenses for the defaulted range"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_002 - Store failure"
// @Router /range/clear [post]
func (h *ExpenseHandler) ClearRange(c echo.Context) error {
	if err := h.tracker.ClearRange(c.Request().Context()); err != nil {
		return SendSystemError(c, err)
	}
	return c.JSON(http.StatusOK, buildListResponse(h.tracker.Snapshot(), time.Now()))
}

// CategorySummary aggregates expenses per category over a date range
// @Summary Category summary
// @Description Per-category expense counts and totals for a date range
// @Tags Expenses
// @Produce json
// @Param start_date query string false "Range start (YYYY-MM-DD)"
// @Param end_date query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} dto.CategorySummaryListResponse "Per-category totals"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_004 - Malformed date bound"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_002 - Store failure"
// @Router /expenses/summary [get]
func (h *ExpenseHandler) CategorySummary(c echo.Context) error {
	start, end, err := parseRangeParams(c)
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	}

	h.tracker.SetRange(start, end)
	summaries, err := h.tracker.CategorySummary(c.Request().Context())
	if err != nil {
		return SendSystemError(c, err)
	}
	if summaries == nil {
		summaries = []models.CategorySummary{}
	}

	effectiveStart, effectiveEnd := h.tracker.Snapshot().Range.Effective(time.Now())
	return c.JSON(http.StatusOK, dto.CategorySummaryListResponse{
		Summaries: summaries,
		Range: dto.RangeResponse{
			StartDate: effectiveStart.Format(models.DateFormat),
			EndDate:   effectiveEnd.Format(models.DateFormat),
		},
	})
}

// parseRangeParams reads optional start_date/end_date query bounds
func parseRangeParams(c echo.Context) (*time.Time, *time.Time, error) {
	var start, end *time.Time

	if raw := c.QueryParam("start_date"); raw != "" {
		parsed, err := models.ParseDate(raw)
		if err != nil {
			return nil, nil, err
		}
		start = &parsed
	}
	if raw := c.QueryParam("end_date"); raw != "" {
		parsed, err := models.ParseDate(raw)
		if err != nil {
			return nil, nil, err
		}
		end = &parsed
	}
	return start, end, nil
}

// buildListResponse maps a tracker snapshot onto the wire format
func buildListResponse(snap services.TrackerSnapshot, now time.Time) dto.ListExpensesResponse {
	expenses := make([]dto.ExpenseResponse, 0, len(snap.Expenses))
	for _, e := range snap.Expenses {
		expenses = append(expenses, dto.NewExpenseResponse(e))
	}

	start, end := snap.Range.Effective(now)
	return dto.ListExpensesResponse{
		Expenses: expenses,
		Total:    snap.Total.StringFixed(2),
		Range: dto.RangeResponse{
			StartDate: start.Format(models.DateFormat),
			EndDate:   end.Format(models.DateFormat),
		},
		State: string(snap.State),
	}
}

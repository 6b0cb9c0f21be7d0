/*
handlers.go - HTTP API handlers for the labor engine

PURPOSE:
  Exposes the punch pipeline and labor dashboards via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Punches:
    POST /api/punches                Fetch + annotate time punches for a range
    POST /api/punches/export         Same data as a CSV attachment
    POST /api/punches/shifts-display Annotated punches joined with user names

  Labor dashboards:
    GET /api/labor/shifts/week                 Daily cost/hours for a week
    GET /api/labor/shifts/week/hourly          Hourly cost table, base rate
    GET /api/labor/shifts/week/hourly/overtime Hourly cost table, OT-split
    GET /api/labor/analysis/week               Daily totals + payroll tax
    GET /api/labor/shifts/raw                  Raw scheduled shifts

  Employees:
    GET  /api/employees       List employees
    POST /api/employees       Create or update an employee
    GET  /api/employees/{id}  Get employee details

  Pay periods:
    GET    /api/pay-periods       List pay periods
    POST   /api/pay-periods       Create (rejects overlaps per location)
    GET    /api/pay-periods/{id}  Get pay period
    PUT    /api/pay-periods/{id}  Update pay period
    DELETE /api/pay-periods/{id}  Delete pay period

ARCHITECTURE:
  Handler struct holds all dependencies. The scheduling API sits behind the
  PunchProvider and ShiftProvider interfaces so handler tests can stub it.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate id, overlapping pay period)
  - 502: Scheduling API failures
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bafang/labor-engine/labor"
	"github.com/bafang/labor-engine/sevenshifts"
	"github.com/bafang/labor-engine/store/sqlite"
)

// PayrollTaxRate is the employer-side payroll burden applied by the labor
// analysis view (taxes, workers comp, and similar on-costs).
var PayrollTaxRate = decimal.RequireFromString("1.12")

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// PunchProvider fetches worked time punches from the scheduling API.
type PunchProvider interface {
	TimePunches(ctx context.Context, f sevenshifts.PunchFilter) ([]labor.Punch, error)
	Users(ctx context.Context, ids []int64) (map[int64]sevenshifts.User, error)
}

// ShiftProvider fetches scheduled shifts from the scheduling API.
type ShiftProvider interface {
	ShiftsForWeek(ctx context.Context, weekStart time.Time, locationID *int64) ([]labor.Shift, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Punches PunchProvider
	Shifts  ShiftProvider

	BusinessHourStart int
	BusinessHourEnd   int
	DefaultLocationID *int64
}

// NewHandler creates a new handler with the given store and providers.
func NewHandler(store *sqlite.Store, punches PunchProvider, shifts ShiftProvider) *Handler {
	return &Handler{
		Store:             store,
		Punches:           punches,
		Shifts:            shifts,
		BusinessHourStart: labor.DefaultBusinessHourStart,
		BusinessHourEnd:   labor.DefaultBusinessHourEnd,
	}
}

// =============================================================================
// PUNCH HANDLERS
// =============================================================================

// FetchPunches returns fully annotated punches for a date range.
// POST /api/punches
func (h *Handler) FetchPunches(w http.ResponseWriter, r *http.Request) {
	annotated, ok := h.annotatedPunches(w, r)
	if !ok {
		return
	}

	dtos := make([]PunchDTO, len(annotated))
	for i, a := range annotated {
		dtos[i] = toPunchDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ExportPunches streams annotated punches as a CSV attachment.
// POST /api/punches/export
func (h *Handler) ExportPunches(w http.ResponseWriter, r *http.Request) {
	annotated, ok := h.annotatedPunches(w, r)
	if !ok {
		return
	}

	ids := userIDs(annotated)
	users, err := h.Punches.Users(r.Context(), ids)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to fetch user names", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="time_punches.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	cw.Write([]string{
		"user_id", "name", "payroll_id", "date",
		"clocked_in", "clocked_out",
		"net_worked_hours", "regular_hours", "overtime_hours", "double_ot_hours",
		"unpaid_break_hours", "paid_break_hours",
	})
	for _, a := range annotated {
		u := users[a.UserID]
		cw.Write([]string{
			strconv.FormatInt(a.UserID, 10),
			u.Name,
			u.EmployeeID,
			a.LocalDate,
			a.ClockedInLocal,
			a.ClockedOutLocal,
			formatHours(a.NetWorkedHours),
			formatHours(a.RegularHours),
			formatHours(a.OvertimeHours),
			formatHours(a.DoubleOTHours),
			formatHours(a.UnpaidBreakHours),
			formatHours(a.PaidBreakHours),
		})
	}
	cw.Flush()
}

// ShiftsDisplay returns annotated punches joined with user names and
// formatted break periods for the timesheet screen.
// POST /api/punches/shifts-display
func (h *Handler) ShiftsDisplay(w http.ResponseWriter, r *http.Request) {
	annotated, ok := h.annotatedPunches(w, r)
	if !ok {
		return
	}

	users, err := h.Punches.Users(r.Context(), userIDs(annotated))
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to fetch user names", err)
		return
	}

	dtos := make([]ShiftDisplayDTO, len(annotated))
	for i, a := range annotated {
		dtos[i] = toShiftDisplayDTO(a, users[a.UserID])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// annotatedPunches runs the shared fetch -> normalize -> overtime pipeline.
// On failure it writes the error response and returns ok=false.
func (h *Handler) annotatedPunches(w http.ResponseWriter, r *http.Request) ([]labor.AnnotatedPunch, bool) {
	var req PunchFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return nil, false
	}
	if err := validateDateRange(req.StartDate, req.EndDate); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return nil, false
	}

	filter := sevenshifts.PunchFilter{
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		LocationID: req.LocationID,
		Approved:   req.Approved,
		Deleted:    req.Deleted,
	}
	if filter.LocationID == nil {
		filter.LocationID = h.DefaultLocationID
	}

	punches, err := h.Punches.TimePunches(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to fetch time punches", err)
		return nil, false
	}

	return labor.AnnotateOvertime(labor.NormalizeAll(punches)), true
}

func validateDateRange(start, end string) error {
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return fmt.Errorf("start_date: %w", err)
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return fmt.Errorf("end_date: %w", err)
	}
	if e.Before(s) {
		return fmt.Errorf("end_date %s is before start_date %s", end, start)
	}
	return nil
}

func userIDs(punches []labor.AnnotatedPunch) []int64 {
	seen := make(map[int64]bool, len(punches))
	var ids []int64
	for _, p := range punches {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			ids = append(ids, p.UserID)
		}
	}
	return ids
}

func formatHours(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// =============================================================================
// LABOR DASHBOARD HANDLERS
// =============================================================================

// WeeklyLabor returns per-day cost/hours totals for one week of scheduled
// shifts.
// GET /api/labor/shifts/week?week_start=2025-03-10
func (h *Handler) WeeklyLabor(w http.ResponseWriter, r *http.Request) {
	shifts, ok := h.weekShifts(w, r)
	if !ok {
		return
	}

	table := labor.HourlyLaborWithOvertime(shifts, h.BusinessHourStart, h.BusinessHourEnd)
	daily := labor.DailyLaborData(shifts, table)

	days := make(map[string]DayLaborDTO, len(daily))
	for name, d := range daily {
		days[name] = DayLaborDTO{Cost: d.Cost.InexactFloat64(), Hours: d.Hours}
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: days})
}

// HourlyLabor returns the weekday x hour cost table at the base rate.
// GET /api/labor/shifts/week/hourly
func (h *Handler) HourlyLabor(w http.ResponseWriter, r *http.Request) {
	shifts, ok := h.weekShifts(w, r)
	if !ok {
		return
	}
	table := labor.HourlyLabor(shifts, h.BusinessHourStart, h.BusinessHourEnd)
	h.writeHourlyTable(w, table)
}

// HourlyLaborOvertime returns the weekday x hour cost table with overtime
// splits applied.
// GET /api/labor/shifts/week/hourly/overtime
func (h *Handler) HourlyLaborOvertime(w http.ResponseWriter, r *http.Request) {
	shifts, ok := h.weekShifts(w, r)
	if !ok {
		return
	}
	table := labor.HourlyLaborWithOvertime(shifts, h.BusinessHourStart, h.BusinessHourEnd)
	h.writeHourlyTable(w, table)
}

func (h *Handler) writeHourlyTable(w http.ResponseWriter, table labor.HourlyTable) {
	dailyTotals := table.DailyTotals()
	daily := make(map[string]CostBucketsDTO, len(dailyTotals))
	for day, b := range dailyTotals {
		daily[day] = toCostBucketsDTO(b)
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]any{
		"hourly":       toHourlyTableDTO(table),
		"daily_totals": daily,
		"week_total":   toCostBucketsDTO(table.WeeklyTotals()),
	}})
}

// LaborAnalysis returns daily cost/hours with the payroll-tax burden applied.
// GET /api/labor/analysis/week?week_start=2025-03-10&payroll_tax=true
func (h *Handler) LaborAnalysis(w http.ResponseWriter, r *http.Request) {
	shifts, ok := h.weekShifts(w, r)
	if !ok {
		return
	}

	applyTax := r.URL.Query().Get("payroll_tax") != "false"
	factor := decimal.NewFromInt(1)
	if applyTax {
		factor = PayrollTaxRate
	}

	table := labor.HourlyLaborWithOvertime(shifts, h.BusinessHourStart, h.BusinessHourEnd)
	daily := labor.DailyLaborData(shifts, table)

	days := make(map[string]DayAnalysisDTO, len(daily))
	totalHours := 0.0
	totalBase := decimal.Zero
	for name, d := range daily {
		adjusted := d.Cost.Mul(factor).Round(2)
		days[name] = DayAnalysisDTO{
			Hours:        d.Hours,
			BaseCost:     d.Cost.InexactFloat64(),
			AdjustedCost: adjusted.InexactFloat64(),
		}
		totalHours += d.Hours
		totalBase = totalBase.Add(d.Cost)
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]any{
		"days": days,
		"summary": map[string]any{
			"total_hours":         round2(totalHours),
			"total_base_cost":     totalBase.Round(2).InexactFloat64(),
			"total_adjusted_cost": totalBase.Mul(factor).Round(2).InexactFloat64(),
			"payroll_tax_applied": applyTax,
		},
	}})
}

// RawShifts returns the week's scheduled shifts unprocessed.
// GET /api/labor/shifts/raw?week_start=2025-03-10
func (h *Handler) RawShifts(w http.ResponseWriter, r *http.Request) {
	shifts, ok := h.weekShifts(w, r)
	if !ok {
		return
	}

	type rawShift struct {
		UserID     int64   `json:"user_id"`
		Start      string  `json:"start"`
		End        string  `json:"end"`
		HourlyWage float64 `json:"hourly_wage"`
	}
	rows := make([]rawShift, len(shifts))
	for i, s := range shifts {
		rows[i] = rawShift{
			UserID:     s.UserID,
			Start:      formatInstant(s.Start),
			End:        formatInstant(s.End),
			HourlyWage: s.HourlyWage,
		}
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]any{
		"count":  len(rows),
		"shifts": rows,
	}})
}

// weekShifts parses the week_start/location_id query params and fetches the
// week's scheduled shifts. On failure it writes the error response and
// returns ok=false.
func (h *Handler) weekShifts(w http.ResponseWriter, r *http.Request) ([]labor.Shift, bool) {
	weekStart := time.Now().UTC()
	if raw := r.URL.Query().Get("week_start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid week_start, want YYYY-MM-DD", err)
			return nil, false
		}
		weekStart = parsed
	}

	locationID := h.DefaultLocationID
	if raw := r.URL.Query().Get("location_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid location_id", err)
			return nil, false
		}
		locationID = &id
	}

	shifts, err := h.Shifts.ShiftsForWeek(r.Context(), weekStart, locationID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to fetch scheduled shifts", err)
		return nil, false
	}
	return shifts, true
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees, optionally filtered by location.
// GET /api/employees?location=...
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context(), r.URL.Query().Get("location"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates or updates an employee record.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	hireDate := time.Now().UTC()
	if req.HireDate != "" {
		parsed, err := time.Parse("2006-01-02", req.HireDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid hire_date, want YYYY-MM-DD", err)
			return
		}
		hireDate = parsed
	}

	emp := sqlite.Employee{
		ID:         req.ID,
		Name:       req.Name,
		Email:      req.Email,
		PayrollID:  req.PayrollID,
		Location:   req.Location,
		HourlyWage: req.HourlyWage,
		HireDate:   hireDate,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}

	saved, err := h.Store.GetEmployee(r.Context(), req.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load saved employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(*saved))
}

// GetEmployee returns a single employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	emp, err := h.Store.GetEmployee(r.Context(), id)
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// =============================================================================
// PAY PERIOD HANDLERS
// =============================================================================

// ListPayPeriods returns pay periods, optionally filtered by location/status.
// GET /api/pay-periods?location=...&status=...
func (h *Handler) ListPayPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Store.ListPayPeriods(r.Context(),
		r.URL.Query().Get("location"), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pay periods", err)
		return
	}

	dtos := make([]PayPeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPayPeriodDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePayPeriod creates a pay period, rejecting overlaps per location.
// POST /api/pay-periods
func (h *Handler) CreatePayPeriod(w http.ResponseWriter, r *http.Request) {
	var req CreatePayPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required", nil)
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date, want YYYY-MM-DD", err)
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date, want YYYY-MM-DD", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date is before start_date", nil)
		return
	}

	status := req.Status
	if status == "" {
		status = sqlite.StatusPending
	}

	period := sqlite.PayPeriod{
		ID:         req.ID,
		StartDate:  start,
		EndDate:    end,
		Status:     status,
		Location:   req.Location,
		LocationID: req.LocationID,
	}
	err = h.Store.CreatePayPeriod(r.Context(), period)
	switch {
	case errors.Is(err, sqlite.ErrOverlap):
		writeError(w, http.StatusConflict, "Pay period overlaps an existing period", err)
		return
	case errors.Is(err, sqlite.ErrDuplicateID):
		writeError(w, http.StatusConflict, "Pay period id already exists", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to create pay period", err)
		return
	}

	saved, err := h.Store.GetPayPeriod(r.Context(), req.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load saved pay period", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayPeriodDTO(*saved))
}

// GetPayPeriod returns a single pay period.
// GET /api/pay-periods/{id}
func (h *Handler) GetPayPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.Store.GetPayPeriod(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Pay period not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load pay period", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayPeriodDTO(*period))
}

// UpdatePayPeriod applies partial updates to a pay period.
// PUT /api/pay-periods/{id}
func (h *Handler) UpdatePayPeriod(w http.ResponseWriter, r *http.Request) {
	var req UpdatePayPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	update := sqlite.PayPeriodUpdate{
		Status:     req.Status,
		Location:   req.Location,
		LocationID: req.LocationID,
	}
	if req.StartDate != nil {
		start, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_date, want YYYY-MM-DD", err)
			return
		}
		update.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date, want YYYY-MM-DD", err)
			return
		}
		update.EndDate = &end
	}

	period, err := h.Store.UpdatePayPeriod(r.Context(), chi.URLParam(r, "id"), update)
	switch {
	case errors.Is(err, sqlite.ErrNotFound):
		writeError(w, http.StatusNotFound, "Pay period not found", nil)
		return
	case errors.Is(err, sqlite.ErrOverlap):
		writeError(w, http.StatusConflict, "Pay period overlaps an existing period", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to update pay period", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayPeriodDTO(*period))
}

// DeletePayPeriod removes a pay period.
// DELETE /api/pay-periods/{id}
func (h *Handler) DeletePayPeriod(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeletePayPeriod(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Pay period not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete pay period", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

// ErrorResponse is the JSON shape of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

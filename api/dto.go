/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Field names
  follow the scheduling platform's conventions (user_id, clocked_in, ...)
  because the frontend consumes both side by side.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/bafang/labor-engine/labor"
	"github.com/bafang/labor-engine/sevenshifts"
	"github.com/bafang/labor-engine/store/sqlite"
)

// =============================================================================
// PUNCH TYPES
// =============================================================================

// PunchFilterRequest selects time punches for the punch endpoints.
type PunchFilterRequest struct {
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	LocationID *int64 `json:"location_id,omitempty"`
	Approved   *bool  `json:"approved,omitempty"`
	Deleted    bool   `json:"deleted"`
}

// PunchDTO is a fully annotated time punch.
type PunchDTO struct {
	UserID               int64   `json:"user_id"`
	ClockedIn            string  `json:"clocked_in"`
	ClockedOut           string  `json:"clocked_out,omitempty"`
	Approved             bool    `json:"approved"`
	Deleted              bool    `json:"deleted"`
	ClockedInPacific     string  `json:"clocked_in_pacific"`
	ClockedOutPacific    string  `json:"clocked_out_pacific"`
	ClockedInDatePacific string  `json:"clocked_in_date_pacific"`
	ShiftDurationHours   float64 `json:"shift_duration_hours"`
	UnpaidBreakHours     float64 `json:"unpaid_break_hours"`
	PaidBreakHours       float64 `json:"paid_break_hours"`
	TotalBreakHours      float64 `json:"total_break_hours"`
	NetWorkedHours       float64 `json:"net_worked_hours"`
	RegularHours         float64 `json:"regular_hours"`
	OvertimeHours        float64 `json:"overtime_hours"`
	DoubleOTHours        float64 `json:"double_ot_hours"`
}

func toPunchDTO(a labor.AnnotatedPunch) PunchDTO {
	return PunchDTO{
		UserID:               a.UserID,
		ClockedIn:            formatInstant(a.ClockedIn),
		ClockedOut:           formatInstant(a.ClockedOut),
		Approved:             a.Approved,
		Deleted:              a.Deleted,
		ClockedInPacific:     a.ClockedInLocal,
		ClockedOutPacific:    a.ClockedOutLocal,
		ClockedInDatePacific: a.LocalDate,
		ShiftDurationHours:   a.ShiftHours,
		UnpaidBreakHours:     a.UnpaidBreakHours,
		PaidBreakHours:       a.PaidBreakHours,
		TotalBreakHours:      a.TotalBreakHours,
		NetWorkedHours:       a.NetWorkedHours,
		RegularHours:         a.RegularHours,
		OvertimeHours:        a.OvertimeHours,
		DoubleOTHours:        a.DoubleOTHours,
	}
}

func formatInstant(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// BreakPeriodDTO is one formatted break interval for frontend display.
type BreakPeriodDTO struct {
	StartTime       string  `json:"start_time"` // "12:00 PM", Pacific
	EndTime         string  `json:"end_time"`
	IsUnpaid        bool    `json:"is_unpaid"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// ShiftDisplayDTO is the simplified per-punch view the timesheet screen uses.
type ShiftDisplayDTO struct {
	PunchDTO
	UserName     string           `json:"user_name"`
	EmployeeID   string           `json:"employee_id,omitempty"` // payroll-system id
	BreakPeriods []BreakPeriodDTO `json:"break_periods"`
}

func toShiftDisplayDTO(a labor.AnnotatedPunch, user sevenshifts.User) ShiftDisplayDTO {
	zone := labor.BusinessZone()

	periods := make([]BreakPeriodDTO, 0, len(a.Breaks))
	for _, b := range a.Breaks {
		if b.In == nil || b.Out == nil {
			continue
		}
		periods = append(periods, BreakPeriodDTO{
			StartTime:       b.In.In(zone).Format("3:04 PM"),
			EndTime:         b.Out.In(zone).Format("3:04 PM"),
			IsUnpaid:        !b.Paid,
			DurationMinutes: round2(b.Out.Sub(*b.In).Minutes()),
		})
	}

	return ShiftDisplayDTO{
		PunchDTO:     toPunchDTO(a),
		UserName:     user.Name,
		EmployeeID:   user.EmployeeID,
		BreakPeriods: periods,
	}
}

// =============================================================================
// LABOR DASHBOARD TYPES
// =============================================================================

// CostBucketsDTO mirrors labor.CostBuckets with plain JSON numbers.
type CostBucketsDTO struct {
	RegularCost  float64 `json:"regular_cost"`
	OvertimeCost float64 `json:"overtime_cost"`
	DoubleOTCost float64 `json:"double_ot_cost"`
	TotalCost    float64 `json:"total_cost"`
}

func toCostBucketsDTO(b labor.CostBuckets) CostBucketsDTO {
	return CostBucketsDTO{
		RegularCost:  b.RegularCost.InexactFloat64(),
		OvertimeCost: b.OvertimeCost.InexactFloat64(),
		DoubleOTCost: b.DoubleOTCost.InexactFloat64(),
		TotalCost:    b.TotalCost.InexactFloat64(),
	}
}

// HourlyTableDTO maps weekday name -> hour -> buckets.
type HourlyTableDTO map[string]map[int]CostBucketsDTO

func toHourlyTableDTO(table labor.HourlyTable) HourlyTableDTO {
	out := make(HourlyTableDTO, len(table))
	for day, hours := range table {
		out[day] = make(map[int]CostBucketsDTO, len(hours))
		for hour, b := range hours {
			out[day][hour] = toCostBucketsDTO(*b)
		}
	}
	return out
}

// DayLaborDTO is one day's cost/hours line on the weekly dashboard.
type DayLaborDTO struct {
	Cost  float64 `json:"cost"`
	Hours float64 `json:"hours"`
}

// DayAnalysisDTO is one day's line in the labor analysis view.
type DayAnalysisDTO struct {
	Hours        float64 `json:"hours"`
	BaseCost     float64 `json:"base_cost"`
	AdjustedCost float64 `json:"adjusted_cost"`
}

// envelope is the success/data wrapper the dashboard endpoints use.
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// =============================================================================
// EMPLOYEE / PAY PERIOD TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email,omitempty"`
	PayrollID  string  `json:"payroll_id,omitempty"`
	Location   string  `json:"location,omitempty"`
	HourlyWage float64 `json:"hourly_wage"`
	HireDate   string  `json:"hire_date"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

func toEmployeeDTO(e sqlite.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		PayrollID:  e.PayrollID,
		Location:   e.Location,
		HourlyWage: e.HourlyWage,
		HireDate:   e.HireDate.Format("2006-01-02"),
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

// CreateEmployeeRequest is the request to create or update an employee.
type CreateEmployeeRequest struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	PayrollID  string  `json:"payroll_id"`
	Location   string  `json:"location"`
	HourlyWage float64 `json:"hourly_wage"`
	HireDate   string  `json:"hire_date"`
}

// PayPeriodDTO represents a pay period in API responses.
type PayPeriodDTO struct {
	ID         string `json:"id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Status     string `json:"status"`
	Location   string `json:"location"`
	LocationID *int64 `json:"location_id,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

func toPayPeriodDTO(p sqlite.PayPeriod) PayPeriodDTO {
	return PayPeriodDTO{
		ID:         p.ID,
		StartDate:  p.StartDate.Format("2006-01-02"),
		EndDate:    p.EndDate.Format("2006-01-02"),
		Status:     p.Status,
		Location:   p.Location,
		LocationID: p.LocationID,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt.Format(time.RFC3339),
	}
}

// CreatePayPeriodRequest is the request to create a pay period.
type CreatePayPeriodRequest struct {
	ID         string `json:"id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Status     string `json:"status"`
	Location   string `json:"location"`
	LocationID *int64 `json:"location_id,omitempty"`
}

// UpdatePayPeriodRequest carries optional pay period changes.
type UpdatePayPeriodRequest struct {
	StartDate  *string `json:"start_date,omitempty"`
	EndDate    *string `json:"end_date,omitempty"`
	Status     *string `json:"status,omitempty"`
	Location   *string `json:"location,omitempty"`
	LocationID *int64  `json:"location_id,omitempty"`
}

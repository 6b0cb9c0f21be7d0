/*
Package labor provides the core time-punch and labor-cost engine.

PURPOSE:
  This package contains the in-memory transforms that turn raw clock-in/out
  records from the scheduling platform into payroll-grade hour buckets and
  dashboard-grade hourly cost tables. It owns no persistence and makes no
  network calls: callers fetch punches, this package annotates them.

PIPELINE:
  raw punches -> Normalize (timezone, durations, breaks)
              -> AnnotateOvertime (regular / OT / double-OT buckets)
              -> DistributeHourly (per-day, per-hour cost table)

KEY CONCEPTS IN THIS FILE (types.go):
  - Punch: A clock-in/out record with its breaks
  - Break: A single break interval, paid or unpaid
  - Shift: A scheduled shift (forecasting side), convertible to a Punch
  - AnnotatedPunch: A punch plus everything the pipeline derives

DESIGN PRINCIPLES:
  1. Degrade, don't fail: missing timestamps become zero durations, never errors
  2. Precision: dollar amounts use decimal.Decimal; hours are float64 rounded
     to 2 decimals at the edges
  3. Business timezone: all calendar logic runs in America/Los_Angeles

SEE ALSO:
  - normalize.go: Duration and break math
  - overtime.go: The overtime allocation engine
  - hourly.go: Hourly cost distribution
*/
package labor

import (
	"time"
)

// =============================================================================
// THRESHOLDS - California-style overtime policy
// =============================================================================

const (
	// DailyOTThreshold is the daily hours after which overtime (1.5x) applies.
	DailyOTThreshold = 8.0

	// DailyDblThreshold is the daily hours after which double overtime (2x) applies.
	DailyDblThreshold = 12.0

	// WeeklyOTThreshold is the weekly regular-hour cap; regular hours beyond it
	// convert to overtime. Only regular hours count toward this total.
	WeeklyOTThreshold = 40.0
)

// Default business-hour window for hourly cost tables (inclusive on both ends).
const (
	DefaultBusinessHourStart = 7
	DefaultBusinessHourEnd   = 22
)

// =============================================================================
// BUSINESS TIMEZONE
// =============================================================================

// businessZone is the timezone every calendar decision is made in. The
// scheduling API returns UTC instants; days, weeks and display strings are
// all Pacific.
var businessZone = mustLoadZone("America/Los_Angeles")

func mustLoadZone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("labor: cannot load timezone " + name + ": " + err.Error())
	}
	return loc
}

// BusinessZone returns the timezone used for all calendar logic.
func BusinessZone() *time.Location { return businessZone }

// =============================================================================
// INPUT TYPES
// =============================================================================

// Break is a single break interval within a punch. Either endpoint may be
// missing (break still open, or bad data); incomplete breaks contribute zero
// duration. Paid defaults to false: an unflagged break is unpaid.
type Break struct {
	In   *time.Time
	Out  *time.Time
	Paid bool
}

// Punch is a raw clock-in/out record for one employee. ClockedOut is nil
// while the punch is still open.
type Punch struct {
	UserID     int64
	ClockedIn  *time.Time
	ClockedOut *time.Time
	Breaks     []Break
	Approved   bool
	Deleted    bool

	// HourlyWage is the raw wage value from the scheduling API. The API is
	// inconsistent about units: values >= 100 are cents, smaller values are
	// dollars. NormalizeWage applies the heuristic.
	HourlyWage float64
}

// Shift is a scheduled shift from the forecasting side. Structurally a punch
// that hasn't happened yet; ToPunch converts it so the same overtime engine
// runs over schedules.
type Shift struct {
	UserID     int64
	Start      *time.Time
	End        *time.Time
	HourlyWage float64
	Breaks     []Break
}

// ToPunch converts a scheduled shift into a punch-shaped record.
func (s Shift) ToPunch() Punch {
	return Punch{
		UserID:     s.UserID,
		ClockedIn:  s.Start,
		ClockedOut: s.End,
		Breaks:     s.Breaks,
		HourlyWage: s.HourlyWage,
	}
}

// ShiftsToPunches converts a slice of scheduled shifts for the allocator.
func ShiftsToPunches(shifts []Shift) []Punch {
	punches := make([]Punch, len(shifts))
	for i, s := range shifts {
		punches[i] = s.ToPunch()
	}
	return punches
}

// =============================================================================
// ANNOTATED PUNCH - Output unit of the pipeline
// =============================================================================

// AnnotatedPunch is a punch plus every field the pipeline derives. The three
// hour buckets always sum to NetWorkedHours (within rounding tolerance).
type AnnotatedPunch struct {
	Punch

	// Display fields, business timezone.
	ClockedInLocal  string // "9:30AM", empty if clock-in missing
	ClockedOutLocal string // "5:15PM", empty if clock-out missing
	LocalDate       string // "3/14/2025", calendar date of clock-in

	// Durations in hours, rounded to 2 decimals.
	ShiftHours       float64 // clock-out minus clock-in; 0 if either missing
	PaidBreakHours   float64
	UnpaidBreakHours float64
	TotalBreakHours  float64
	NetWorkedHours   float64 // max(0, ShiftHours - UnpaidBreakHours)

	// Overtime buckets, rounded to 2 decimals. Set by AnnotateOvertime.
	RegularHours  float64
	OvertimeHours float64
	DoubleOTHours float64
}

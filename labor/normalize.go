/*
normalize.go - Time normalization for raw punches

PURPOSE:
  Converts raw UTC punch timestamps into business-timezone display strings
  and derives duration fields: shift hours, paid/unpaid break hours, and
  net worked hours.

RULES:
  - Missing clock-in or clock-out: shift duration is 0, punch is kept.
  - Break with a missing endpoint: contributes zero, silently skipped.
  - Paid breaks count as worked time; only unpaid breaks reduce net hours.
  - Net worked hours are clamped at zero.

SEE ALSO:
  - overtime.go: Consumes NetWorkedHours
*/
package labor

import (
	"fmt"
	"math"
	"time"
)

// Normalize derives the timezone and duration fields for one punch. The
// overtime buckets are left at zero; AnnotateOvertime fills them.
func Normalize(p Punch) AnnotatedPunch {
	unpaid, paid := breakHours(p.Breaks)
	duration := shiftHours(p.ClockedIn, p.ClockedOut)

	return AnnotatedPunch{
		Punch:            p,
		ClockedInLocal:   localClock(p.ClockedIn),
		ClockedOutLocal:  localClock(p.ClockedOut),
		LocalDate:        localDateString(p.ClockedIn),
		ShiftHours:       duration,
		PaidBreakHours:   paid,
		UnpaidBreakHours: unpaid,
		TotalBreakHours:  round2(unpaid + paid),
		NetWorkedHours:   round2(math.Max(0, duration-unpaid)),
	}
}

// NormalizeAll normalizes a batch of punches, preserving order.
func NormalizeAll(punches []Punch) []AnnotatedPunch {
	out := make([]AnnotatedPunch, len(punches))
	for i, p := range punches {
		out[i] = Normalize(p)
	}
	return out
}

// shiftHours returns the punch duration in hours, rounded to 2 decimals.
// Zero if either endpoint is missing.
func shiftHours(in, out *time.Time) float64 {
	if in == nil || out == nil {
		return 0
	}
	return round2(out.Sub(*in).Hours())
}

// breakHours sums break durations in minutes, split unpaid/paid, and returns
// both as hours rounded to 2 decimals. Breaks missing an endpoint are skipped.
func breakHours(breaks []Break) (unpaid, paid float64) {
	var unpaidMin, paidMin float64
	for _, b := range breaks {
		if b.In == nil || b.Out == nil {
			continue
		}
		minutes := b.Out.Sub(*b.In).Minutes()
		if b.Paid {
			paidMin += minutes
		} else {
			unpaidMin += minutes
		}
	}
	return round2(unpaidMin / 60), round2(paidMin / 60)
}

// localClock formats an instant as a Pacific wall-clock string ("9:30AM").
func localClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(businessZone).Format("3:04PM")
}

// localDateString formats the Pacific calendar date as "M/D/YYYY".
func localDateString(t *time.Time) string {
	if t == nil {
		return ""
	}
	local := t.In(businessZone)
	return fmt.Sprintf("%d/%d/%d", int(local.Month()), local.Day(), local.Year())
}

// localDay returns the Pacific calendar date of an instant as a comparable
// key (midnight UTC of the local year/month/day).
func localDay(t time.Time) time.Time {
	local := t.In(businessZone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// weekStartOf returns the Monday of the work week containing day.
func weekStartOf(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// round2 rounds to 2 decimal places.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

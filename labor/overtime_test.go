package labor_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/bafang/labor-engine/labor"
)

// annotate runs the normalize + overtime pipeline over raw punches.
func annotate(punches []labor.Punch) []labor.AnnotatedPunch {
	return labor.AnnotateOvertime(labor.NormalizeAll(punches))
}

// buckets formats the three buckets for failure messages.
func buckets(a labor.AnnotatedPunch) string {
	return fmt.Sprintf("reg=%v ot=%v dbl=%v", a.RegularHours, a.OvertimeHours, a.DoubleOTHours)
}

func assertBuckets(t *testing.T, a labor.AnnotatedPunch, reg, ot, dbl float64) {
	t.Helper()
	if a.RegularHours != reg || a.OvertimeHours != ot || a.DoubleOTHours != dbl {
		t.Errorf("expected reg=%v ot=%v dbl=%v, got %s", reg, ot, dbl, buckets(a))
	}
}

// week1Monday is a Monday in Pacific time (PDT). 16:00Z == 9:00AM local.
// March 10, 2025 is a Monday.
func dayStart(dayOfMonth int) string {
	return fmt.Sprintf("2025-03-%02dT16:00:00Z", dayOfMonth)
}

// =============================================================================
// DAILY THRESHOLD TESTS
// =============================================================================

func TestOvertime_DailyCap(t *testing.T) {
	// GIVEN: A single 10-hour shift, nothing prior that day
	// WHEN: Annotated
	// THEN: 8 regular, 2 overtime, 0 double

	out := annotate([]labor.Punch{punch(t, 1, dayStart(10), 10)})

	assertBuckets(t, out[0], 8, 2, 0)
}

func TestOvertime_DoubleOTBoundary(t *testing.T) {
	// GIVEN: A single 13-hour shift
	// WHEN: Annotated
	// THEN: 8 regular, 4 overtime, 1 double overtime

	out := annotate([]labor.Punch{punch(t, 1, dayStart(10), 13)})

	assertBuckets(t, out[0], 8, 4, 1)
}

func TestOvertime_ShortShiftAllRegular(t *testing.T) {
	out := annotate([]labor.Punch{punch(t, 1, dayStart(10), 6)})

	assertBuckets(t, out[0], 6, 0, 0)
}

func TestOvertime_SplitShiftsShareTheDailyCap(t *testing.T) {
	// GIVEN: Two 6-hour punches on the same Pacific day
	// WHEN: Annotated in order
	// THEN: First is all regular; second gets 2 regular then 4 overtime

	out := annotate([]labor.Punch{
		punch(t, 1, "2025-03-10T14:00:00Z", 6), // 7:00AM-1:00PM
		punch(t, 1, "2025-03-11T04:00:00Z", 6), // 9:00PM-3:00AM, clock-in still March 10
	})

	assertBuckets(t, out[0], 6, 0, 0)
	assertBuckets(t, out[1], 2, 4, 0)
}

// =============================================================================
// WEEKLY THRESHOLD TESTS
// =============================================================================

func TestOvertime_WeeklyConversion(t *testing.T) {
	// GIVEN: Five 8-hour regular days Mon-Fri (40h banked)
	// WHEN: A 4-hour Saturday shift is annotated
	// THEN: Saturday is entirely overtime (weekly cap already met)

	var punches []labor.Punch
	for day := 10; day <= 14; day++ { // Mon..Fri
		punches = append(punches, punch(t, 1, dayStart(day), 8))
	}
	punches = append(punches, punch(t, 1, dayStart(15), 4)) // Saturday

	out := annotate(punches)

	for i := 0; i < 5; i++ {
		assertBuckets(t, out[i], 8, 0, 0)
	}
	assertBuckets(t, out[5], 0, 4, 0)
}

func TestOvertime_WeeklyConversionIsPartial(t *testing.T) {
	// GIVEN: 38 regular hours banked Mon-Fri (5 days of 7.6h)
	// WHEN: A 6-hour Saturday shift is annotated
	// THEN: 2 hours stay regular, 4 convert to overtime

	var punches []labor.Punch
	for day := 10; day <= 14; day++ {
		punches = append(punches, punch(t, 1, dayStart(day), 7.6))
	}
	punches = append(punches, punch(t, 1, dayStart(15), 6))

	out := annotate(punches)

	assertBuckets(t, out[5], 2, 4, 0)
}

func TestOvertime_WeeklyTotalsResetOnMonday(t *testing.T) {
	// GIVEN: 48 hours across Mon-Sat of week one
	// WHEN: An 8-hour punch lands the following Monday
	// THEN: It is all regular; the weekly bank restarted

	var punches []labor.Punch
	for day := 10; day <= 15; day++ { // Mon..Sat, 8h each
		punches = append(punches, punch(t, 1, dayStart(day), 8))
	}
	punches = append(punches, punch(t, 1, dayStart(17), 8)) // next Monday

	out := annotate(punches)

	assertBuckets(t, out[6], 8, 0, 0)
}

// =============================================================================
// SEVENTH CONSECUTIVE DAY TESTS
// =============================================================================

func TestOvertime_SeventhConsecutiveDay(t *testing.T) {
	// GIVEN: An employee works Mon-Sun, 8h/day, all in one work week
	// WHEN: Annotated
	// THEN: Sunday carries zero regular hours; its 8 hours are overtime

	var punches []labor.Punch
	for day := 10; day <= 16; day++ {
		punches = append(punches, punch(t, 1, dayStart(day), 8))
	}

	out := annotate(punches)

	// Mon-Fri regular; Saturday already converts via the 40h weekly cap.
	for i := 0; i < 5; i++ {
		assertBuckets(t, out[i], 8, 0, 0)
	}
	assertBuckets(t, out[5], 0, 8, 0)
	assertBuckets(t, out[6], 0, 8, 0)
}

func TestOvertime_SeventhDayBeyondEightIsDouble(t *testing.T) {
	// GIVEN: Mon-Sat 8h each, then a 10-hour Sunday
	// WHEN: Annotated
	// THEN: Sunday = 0 regular, 8 overtime, 2 double overtime

	var punches []labor.Punch
	for day := 10; day <= 15; day++ {
		punches = append(punches, punch(t, 1, dayStart(day), 8))
	}
	punches = append(punches, punch(t, 1, dayStart(16), 10))

	out := annotate(punches)

	assertBuckets(t, out[6], 0, 8, 2)
}

func TestOvertime_StreakDoesNotCrossWorkWeek(t *testing.T) {
	// GIVEN: Tue-Sun worked in week one (6 days), then Mon-Sun in week two
	// WHEN: Annotated
	// THEN: Week two's Monday is day 1 of a fresh streak, not day 7;
	//       week two's Sunday IS a 7th day

	var punches []labor.Punch
	for day := 11; day <= 16; day++ { // Tue..Sun week one
		punches = append(punches, punch(t, 1, dayStart(day), 4))
	}
	for day := 17; day <= 23; day++ { // Mon..Sun week two
		punches = append(punches, punch(t, 1, dayStart(day), 4))
	}

	out := annotate(punches)

	// Week two Monday: plain regular hours despite 7 straight calendar days.
	assertBuckets(t, out[6], 4, 0, 0)
	// Week two Sunday: 7th consecutive day of its own work week.
	assertBuckets(t, out[12], 0, 4, 0)
}

func TestOvertime_GapResetsStreak(t *testing.T) {
	// GIVEN: Mon-Wed worked, Thursday off, Fri-Sun worked
	// WHEN: Annotated
	// THEN: Sunday is streak day 3, not day 7

	var punches []labor.Punch
	for _, day := range []int{10, 11, 12, 14, 15, 16} {
		punches = append(punches, punch(t, 1, dayStart(day), 4))
	}

	out := annotate(punches)

	assertBuckets(t, out[5], 4, 0, 0)
}

// =============================================================================
// STRUCTURAL PROPERTIES
// =============================================================================

func TestOvertime_Conservation(t *testing.T) {
	// For every punch: reg + ot + dbl == net worked hours (within 0.01).

	var punches []labor.Punch
	for day := 10; day <= 16; day++ {
		punches = append(punches, punch(t, 1, dayStart(day), 9.25))
		punches = append(punches, punch(t, 2, dayStart(day), 13.5))
	}

	for _, a := range annotate(punches) {
		sum := a.RegularHours + a.OvertimeHours + a.DoubleOTHours
		if math.Abs(sum-a.NetWorkedHours) > 0.01 {
			t.Errorf("hours not conserved: net=%v but %s", a.NetWorkedHours, buckets(a))
		}
	}
}

func TestOvertime_EmployeesAreIndependent(t *testing.T) {
	// GIVEN: Two employees each work 6 hours on the same day
	// WHEN: Annotated together
	// THEN: Neither crosses the daily threshold

	out := annotate([]labor.Punch{
		punch(t, 1, dayStart(10), 6),
		punch(t, 2, dayStart(10), 6),
	})

	assertBuckets(t, out[0], 6, 0, 0)
	assertBuckets(t, out[1], 6, 0, 0)
}

func TestOvertime_MissingClockInKeepsZeroBuckets(t *testing.T) {
	open := labor.Punch{UserID: 1}

	out := annotate([]labor.Punch{open, punch(t, 1, dayStart(10), 8)})

	assertBuckets(t, out[0], 0, 0, 0)
	assertBuckets(t, out[1], 8, 0, 0)
}

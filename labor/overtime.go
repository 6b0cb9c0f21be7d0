/*
overtime.go - The overtime allocation engine

PURPOSE:
  Given every punch in a date range (possibly many employees), assign each
  punch's net worked hours to regular / overtime / double-overtime buckets.

POLICY:
  Daily:   first 8h regular, 8-12h overtime, beyond 12h double overtime.
  Weekly:  once an employee's regular hours this work week pass 40, the
           excess converts from regular to overtime within the same punch.
  7th day: on the 7th consecutive worked day of a work week, the first 8h
           are overtime and everything beyond is double overtime; no regular
           hours at all.

WORK WEEK:
  Monday-start. The consecutive-day streak never crosses a week boundary:
  working the Sunday before a fresh Monday does not carry the streak over.
  This mirrors how payroll has always counted it here, so keep it.

ALGORITHM:
  Greedy, single-pass, path-dependent. Punches are processed in chronological
  order per employee with explicit accumulator state (hours already worked
  today, regular hours already banked this week). Processing order matters;
  employees are independent of each other.
*/
package labor

import (
	"math"
	"sort"
	"time"
)

// AnnotateOvertime fills the RegularHours / OvertimeHours / DoubleOTHours
// buckets on every punch. The input is re-sorted by employee then clock-in
// time and returned in that order. Punches without a clock-in keep zero
// buckets but are not dropped.
func AnnotateOvertime(punches []AnnotatedPunch) []AnnotatedPunch {
	sort.SliceStable(punches, func(i, j int) bool {
		if punches[i].UserID != punches[j].UserID {
			return punches[i].UserID < punches[j].UserID
		}
		ti, tj := punches[i].ClockedIn, punches[j].ClockedIn
		switch {
		case ti == nil:
			return tj != nil
		case tj == nil:
			return false
		default:
			return ti.Before(*tj)
		}
	})

	seventh := markSeventhDays(punches)

	// Accumulators keyed by employee. Punches are chronological within an
	// employee, so day and week totals reset as the fold advances.
	accs := make(map[int64]*accumulator)

	for i := range punches {
		p := &punches[i]
		if p.ClockedIn == nil {
			continue
		}

		day := localDay(*p.ClockedIn)
		week := weekStartOf(day)

		acc := accs[p.UserID]
		if acc == nil {
			acc = &accumulator{}
			accs[p.UserID] = acc
		}
		acc.advance(day, week)

		worked := p.NetWorkedHours
		isSeventh := seventh[p.UserID][day]

		reg, ot, dbl := allocate(worked, acc.dayHours, acc.weekRegular, isSeventh)

		p.RegularHours = round2(reg)
		p.OvertimeHours = round2(ot)
		p.DoubleOTHours = round2(dbl)

		acc.dayHours += worked
		// Only regular hours count toward the weekly threshold.
		acc.weekRegular += reg
	}

	return punches
}

// accumulator is the per-employee running state threaded through the fold.
type accumulator struct {
	day         time.Time
	dayHours    float64
	weekStart   time.Time
	weekRegular float64
}

// advance rolls the accumulator forward to a new day and/or work week,
// resetting the corresponding totals.
func (a *accumulator) advance(day, week time.Time) {
	if !day.Equal(a.day) {
		a.day = day
		a.dayHours = 0
	}
	if !week.Equal(a.weekStart) {
		a.weekStart = week
		a.weekRegular = 0
	}
}

// allocate splits one punch's worked hours into the three buckets given the
// hours already worked today and the regular hours already banked this week.
func allocate(worked, prevDay, prevWeekRegular float64, seventhDay bool) (reg, ot, dbl float64) {
	if seventhDay {
		// 7th consecutive day: first 8 cumulative hours are overtime, the
		// rest is double overtime. Zero regular hours.
		availOT := math.Max(0, DailyOTThreshold-prevDay)
		ot = math.Min(availOT, worked)
		dbl = math.Max(0, worked-ot)
		return 0, ot, dbl
	}

	// Daily split: regular up to 8h for the day, overtime up to 12h, the
	// remainder double overtime.
	availReg := math.Max(0, DailyOTThreshold-prevDay)
	reg = math.Min(availReg, worked)

	availOT := math.Max(0, DailyDblThreshold-math.Max(prevDay, DailyOTThreshold))
	ot = math.Min(availOT, worked-reg)

	dbl = math.Max(0, worked-reg-ot)

	// Weekly conversion: regular hours past the 40h weekly cap become
	// overtime within this punch. Double overtime is never touched.
	if excess := prevWeekRegular + reg - WeeklyOTThreshold; excess > 0 {
		shift := math.Min(excess, reg)
		reg -= shift
		ot += shift
	}

	return reg, ot, dbl
}

// markSeventhDays finds, per employee, the local dates that are the 7th
// element of a consecutive-day streak. Streaks are evaluated within each
// Monday-start work week independently: a streak restarts every Monday even
// if the employee also worked the preceding Sunday.
func markSeventhDays(punches []AnnotatedPunch) map[int64]map[time.Time]bool {
	// Distinct worked dates per employee per work week.
	weeks := make(map[int64]map[time.Time][]time.Time)
	seen := make(map[int64]map[time.Time]bool)

	for i := range punches {
		p := &punches[i]
		if p.ClockedIn == nil {
			continue
		}
		day := localDay(*p.ClockedIn)
		week := weekStartOf(day)

		if seen[p.UserID] == nil {
			seen[p.UserID] = make(map[time.Time]bool)
			weeks[p.UserID] = make(map[time.Time][]time.Time)
		}
		if seen[p.UserID][day] {
			continue
		}
		seen[p.UserID][day] = true
		weeks[p.UserID][week] = append(weeks[p.UserID][week], day)
	}

	marked := make(map[int64]map[time.Time]bool)
	for emp, byWeek := range weeks {
		marked[emp] = make(map[time.Time]bool)
		for _, days := range byWeek {
			sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

			streak := 1
			for i := 1; i < len(days); i++ {
				if days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
					streak++
				} else {
					streak = 1
				}
				if streak == 7 {
					marked[emp][days[i]] = true
				}
			}
		}
	}
	return marked
}

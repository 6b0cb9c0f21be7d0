/*
hourly.go - Hourly labor cost distribution

PURPOSE:
  Spreads each overtime-annotated punch's dollar cost across wall-clock hour
  buckets in the business timezone, producing the weekday -> hour -> cost
  table the labor dashboard renders.

MECHANICS:
  Walk hour boundaries from clock-in to clock-out. Each slice that overlaps
  the punch and falls inside the business-hour window consumes the punch's
  hour budgets in priority order: regular first, then overtime, then double
  overtime, at 1x / 1.5x / 2x the wage. Once the punch's allocated hours are
  exhausted the walk stops.

KNOWN LIMITATION:
  Hours outside the business-hour window are dropped from the hourly view.
  A graveyard shift still carries its full cost in the punch annotations,
  but the dashboard table only shows the in-window portion. Kept as-is: the
  dashboard is explicitly a business-hours view.
*/
package labor

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// WeekdayNames in dashboard order (work week starts Monday).
var WeekdayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

var (
	centsPerDollar = decimal.NewFromInt(100)
	overtimeFactor = decimal.RequireFromString("1.5")
	doubleFactor   = decimal.NewFromInt(2)
)

// NormalizeWage converts a raw wage value from the scheduling API to dollars.
// The API mixes units; values >= 100 are cents (1850 == $18.50). This is a
// compatibility shim for that ambiguity, not something to build on.
func NormalizeWage(raw float64) decimal.Decimal {
	d := decimal.NewFromFloat(raw)
	if raw >= 100 {
		return d.Div(centsPerDollar)
	}
	return d
}

// =============================================================================
// COST BUCKETS
// =============================================================================

// CostBuckets is the dollar cost of one (weekday, hour) cell, split by pay
// class. TotalCost is always the sum of the three.
type CostBuckets struct {
	RegularCost  decimal.Decimal
	OvertimeCost decimal.Decimal
	DoubleOTCost decimal.Decimal
	TotalCost    decimal.Decimal
}

func (b *CostBuckets) add(reg, ot, dbl decimal.Decimal) {
	b.RegularCost = b.RegularCost.Add(reg)
	b.OvertimeCost = b.OvertimeCost.Add(ot)
	b.DoubleOTCost = b.DoubleOTCost.Add(dbl)
	b.TotalCost = b.TotalCost.Add(reg).Add(ot).Add(dbl)
}

func (b *CostBuckets) round() {
	b.RegularCost = b.RegularCost.Round(2)
	b.OvertimeCost = b.OvertimeCost.Round(2)
	b.DoubleOTCost = b.DoubleOTCost.Round(2)
	b.TotalCost = b.TotalCost.Round(2)
}

// HourlyTable maps weekday name -> hour of day -> cost buckets.
type HourlyTable map[string]map[int]*CostBuckets

// NewHourlyTable builds an empty table covering [startHour, endHour]
// inclusive for all seven weekdays.
func NewHourlyTable(startHour, endHour int) HourlyTable {
	table := make(HourlyTable, len(WeekdayNames))
	for _, day := range WeekdayNames {
		table[day] = make(map[int]*CostBuckets, endHour-startHour+1)
		for hour := startHour; hour <= endHour; hour++ {
			table[day][hour] = &CostBuckets{}
		}
	}
	return table
}

// DailyTotals sums each weekday's buckets.
func (t HourlyTable) DailyTotals() map[string]CostBuckets {
	totals := make(map[string]CostBuckets, len(t))
	for day, hours := range t {
		var sum CostBuckets
		for _, b := range hours {
			sum.add(b.RegularCost, b.OvertimeCost, b.DoubleOTCost)
		}
		sum.round()
		totals[day] = sum
	}
	return totals
}

// WeeklyTotals sums the whole table.
func (t HourlyTable) WeeklyTotals() CostBuckets {
	var sum CostBuckets
	for _, hours := range t {
		for _, b := range hours {
			sum.add(b.RegularCost, b.OvertimeCost, b.DoubleOTCost)
		}
	}
	sum.round()
	return sum
}

// =============================================================================
// DISTRIBUTION
// =============================================================================

// DistributeHourly spreads each annotated punch's cost across the table.
// Punches missing either endpoint are skipped; a zero wage produces zero
// cost rows, which is fine.
func DistributeHourly(punches []AnnotatedPunch, startHour, endHour int) HourlyTable {
	table := NewHourlyTable(startHour, endHour)

	for i := range punches {
		distributePunch(table, &punches[i], startHour, endHour)
	}

	for _, hours := range table {
		for _, b := range hours {
			b.round()
		}
	}
	return table
}

func distributePunch(table HourlyTable, p *AnnotatedPunch, startHour, endHour int) {
	if p.ClockedIn == nil || p.ClockedOut == nil {
		return
	}

	wage := NormalizeWage(p.HourlyWage)
	otRate := wage.Mul(overtimeFactor)
	dblRate := wage.Mul(doubleFactor)

	total := p.NetWorkedHours
	if total == 0 {
		total = p.RegularHours + p.OvertimeHours + p.DoubleOTHours
	}

	start := p.ClockedIn.In(businessZone)
	end := p.ClockedOut.In(businessZone)

	allocated := 0.0
	current := start

	for current.Before(end) && total-allocated > 1e-9 {
		hourStart := time.Date(current.Year(), current.Month(), current.Day(), current.Hour(), 0, 0, 0, businessZone)
		hourEnd := hourStart.Add(time.Hour)

		hour := current.Hour()
		if startHour <= hour && hour <= endHour {
			overlapEnd := hourEnd
			if end.Before(overlapEnd) {
				overlapEnd = end
			}

			if overlapEnd.After(current) {
				overlap := overlapEnd.Sub(current).Hours()
				if remaining := total - allocated; overlap > remaining {
					overlap = remaining
				}

				if overlap > 0 {
					var regCost, otCost, dblCost decimal.Decimal
					left := overlap

					// Regular portion first, up to its budget.
					if allocated < p.RegularHours && left > 0 {
						portion := minFloat(left, p.RegularHours-allocated)
						regCost = wage.Mul(decimal.NewFromFloat(portion))
						allocated += portion
						left -= portion
					}

					// Then overtime.
					if budget := p.RegularHours + p.OvertimeHours; allocated < budget && left > 0 {
						portion := minFloat(left, budget-allocated)
						otCost = otRate.Mul(decimal.NewFromFloat(portion))
						allocated += portion
						left -= portion
					}

					// Whatever is left is double overtime.
					if left > 0 {
						dblCost = dblRate.Mul(decimal.NewFromFloat(left))
						allocated += left
					}

					table[current.Weekday().String()][hour].add(regCost, otCost, dblCost)
				}
			}
		}

		current = hourEnd
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// =============================================================================
// WEEK-LEVEL PIPELINES
// =============================================================================

// HourlyLaborWithOvertime runs the full pipeline over one week of scheduled
// shifts: convert to punches, normalize, annotate overtime, distribute.
func HourlyLaborWithOvertime(shifts []Shift, startHour, endHour int) HourlyTable {
	annotated := AnnotateOvertime(NormalizeAll(ShiftsToPunches(shifts)))
	return DistributeHourly(annotated, startHour, endHour)
}

// HourlyLabor distributes scheduled shifts at the base rate only, treating
// every worked hour as regular. Used by views that show straight scheduled
// cost without overtime splits.
func HourlyLabor(shifts []Shift, startHour, endHour int) HourlyTable {
	annotated := NormalizeAll(ShiftsToPunches(shifts))
	for i := range annotated {
		annotated[i].RegularHours = annotated[i].NetWorkedHours
	}
	return DistributeHourly(annotated, startHour, endHour)
}

// DaySummary is a single day's dashboard line: in-window cost plus total
// scheduled hours (hours are counted from the raw shifts, not clipped to
// the business-hour window).
type DaySummary struct {
	Cost  decimal.Decimal
	Hours float64
}

// DailyLaborData folds an hourly table and the raw shifts into per-day
// cost/hours summaries. A shift's hours land on the weekday it starts.
func DailyLaborData(shifts []Shift, table HourlyTable) map[string]DaySummary {
	hours := make(map[string]float64, len(WeekdayNames))

	for _, s := range shifts {
		if s.Start == nil || s.End == nil {
			continue
		}
		day := s.Start.In(businessZone).Weekday().String()
		hours[day] += s.End.Sub(*s.Start).Hours()
	}

	totals := table.DailyTotals()
	out := make(map[string]DaySummary, len(WeekdayNames))
	for _, day := range WeekdayNames {
		out[day] = DaySummary{
			Cost:  totals[day].TotalCost,
			Hours: round1(hours[day]),
		}
	}
	return out
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

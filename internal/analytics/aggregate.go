package analytics

import (
	"sort"
	"time"

	"github.com/samber/lo"
)

// SortByVariation orders summaries by VarAbs descending. Undefined
// variations go last; ties keep input order.
func SortByVariation(summaries []EmployeeSummary) []EmployeeSummary {
	out := append([]EmployeeSummary(nil), summaries...)
	sort.SliceStable(out, func(i, j int) bool {
		a, okA := out[i].VarAbs.Get()
		b, okB := out[j].VarAbs.Get()
		if okA != okB {
			return okA
		}
		return okA && a > b
	})
	return out
}

// RankIncreases returns the n largest defined VarAbs, largest first.
func RankIncreases(summaries []EmployeeSummary, n int) []EmployeeSummary {
	return rank(summaries, n, func(a, b float64) bool { return a > b })
}

// RankDecreases returns the n smallest defined VarAbs, smallest first.
func RankDecreases(summaries []EmployeeSummary, n int) []EmployeeSummary {
	return rank(summaries, n, func(a, b float64) bool { return a < b })
}

func rank(summaries []EmployeeSummary, n int, less func(a, b float64) bool) []EmployeeSummary {
	defined := lo.Filter(summaries, func(s EmployeeSummary, _ int) bool { return s.VarAbs.Valid })
	sort.SliceStable(defined, func(i, j int) bool {
		return less(defined[i].VarAbs.Float64, defined[j].VarAbs.Float64)
	})
	if n < len(defined) {
		defined = defined[:n]
	}
	return defined
}

// ComputeGroupSummary totals the observed costs of each reference year
// straight from the series, so employees with partial years weigh by what
// they actually cost.
func ComputeGroupSummary(series []PeriodRecord, summaries []EmployeeSummary, p Params) GroupSummary {
	var totalA, totalB float64
	for _, r := range series {
		cost, ok := r.Cost.Get()
		if !ok {
			continue
		}
		switch r.Year {
		case p.YearA:
			totalA += cost
		case p.YearB:
			totalB += cost
		}
	}

	delta := totalB - totalA
	deltaPct := Undefined
	if totalA != 0 {
		deltaPct = Defined(delta / totalA * 100)
	}

	return GroupSummary{
		YearA:        p.YearA,
		YearB:        p.YearB,
		TotalA:       totalA,
		TotalB:       totalB,
		DeltaTotal:   delta,
		DeltaPercent: deltaPct,
		Employees:    len(summaries),
		Entering:     lo.CountBy(summaries, func(s EmployeeSummary) bool { return s.EntryInProgress }),
		Exiting:      lo.CountBy(summaries, func(s EmployeeSummary) bool { return s.ExitInProgress }),
		LongAbsence: lo.CountBy(summaries, func(s EmployeeSummary) bool {
			return s.LongestLowRun >= p.LongAbsenceRun
		}),
		AnomalousMonths: lo.SumBy(summaries, func(s EmployeeSummary) int { return s.AnomalyCount }),
	}
}

// BuildNarrative explains the group delta by its top increases and names
// the most volatile employee. summaries must be in input order.
func BuildNarrative(summaries []EmployeeSummary, group GroupSummary, p Params) Narrative {
	top := RankIncreases(summaries, narrativeContributors)

	share := Undefined
	if group.DeltaTotal != 0 {
		sum := lo.SumBy(top, func(s EmployeeSummary) float64 { return s.VarAbs.Float64 })
		share = Defined(sum / group.DeltaTotal * 100)
	}

	n := Narrative{
		TopContributors:      lo.Map(top, func(s EmployeeSummary, _ int) string { return s.Employee }),
		TopContributionShare: share,
		TopEntering:          lo.CountBy(top, func(s EmployeeSummary) bool { return s.EntryInProgress }),
		TopLongAbsence: lo.CountBy(top, func(s EmployeeSummary) bool {
			return s.LongestLowRun >= p.LongAbsenceRun
		}),
	}

	for _, s := range summaries {
		v, ok := s.Volatility.Get()
		if !ok {
			continue
		}
		if n.MostVolatile == nil || v > n.MostVolatile.Volatility {
			n.MostVolatile = &VolatileEmployee{Employee: s.Employee, Volatility: v, LongestLowRun: s.LongestLowRun}
		}
	}
	return n
}

// MonthlyTotals sums the series per month, in date order.
func MonthlyTotals(series []PeriodRecord) []MonthlyTotal {
	sums := make(map[time.Time]float64)
	for _, r := range series {
		if cost, ok := r.Cost.Get(); ok && r.Resolved() {
			sums[r.Date.UTC()] += cost
		}
	}
	out := make([]MonthlyTotal, 0, len(sums))
	for d, total := range sums {
		out = append(out, MonthlyTotal{Date: d, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// BuildDetail flags every record, absent costs included, for export.
func BuildDetail(records []PeriodRecord, rule AnomalyRule) []DetailRow {
	return lo.Map(records, func(r PeriodRecord, _ int) DetailRow {
		cost, ok := r.Cost.Get()
		return DetailRow{
			Employee: r.Employee,
			Subgroup: r.Subgroup,
			Label:    r.Label,
			Date:     r.Date,
			Year:     r.Year,
			Cost:     r.Cost,
			Anomaly:  ok && rule.IsAnomaly(cost),
		}
	})
}

// AnomalyRows extracts flagged rows sorted by employee then date.
func AnomalyRows(detail []DetailRow) []DetailRow {
	out := lo.Filter(detail, func(d DetailRow, _ int) bool { return d.Anomaly })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Employee != out[j].Employee {
			return out[i].Employee < out[j].Employee
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// StabilityPoints keeps employees with a defined baseline, volatility and
// variation.
func StabilityPoints(summaries []EmployeeSummary) []StabilityPoint {
	return lo.FilterMap(summaries, func(s EmployeeSummary, _ int) (StabilityPoint, bool) {
		if !s.MeanA.Valid || !s.Volatility.Valid || !s.VarAbs.Valid {
			return StabilityPoint{}, false
		}
		return StabilityPoint{
			Employee:        s.Employee,
			MeanA:           s.MeanA.Float64,
			Volatility:      s.Volatility.Float64,
			VarAbs:          s.VarAbs.Float64,
			EntryInProgress: s.EntryInProgress,
			ExitInProgress:  s.ExitInProgress,
			LongestLowRun:   s.LongestLowRun,
			LowMonthCount:   s.LowMonthCount,
		}, true
	})
}

package analytics

import (
	"math"
	"time"
)

// AnchorMonth returns January of baseYear, the month the first period
// column maps to.
func AnchorMonth(baseYear int) time.Time {
	return time.Date(baseYear, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// PeriodDates maps n consecutive period columns to the first day of
// consecutive months starting at anchor.
func PeriodDates(n int, anchor time.Time) []time.Time {
	start := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = start.AddDate(0, i, 0)
	}
	return dates
}

// Reshape melts wide rows into long-form records, one per (row, column),
// rows first then columns. Period columns must already be in chronological
// order with no missing month.
func Reshape(rows []RawRow, periodColumns []string, anchor time.Time) ([]PeriodRecord, error) {
	if len(periodColumns) == 0 {
		return nil, &ConfigurationError{Reason: "no period columns detected", Required: RequiredColumns}
	}

	dates := PeriodDates(len(periodColumns), anchor)
	out := make([]PeriodRecord, 0, len(rows)*len(periodColumns))

	for i, row := range rows {
		if row.Employee == "" {
			return nil, configErrorf("row %d: empty employee identifier", i+1)
		}
		if row.Subgroup == "" {
			return nil, configErrorf("row %d (%s): empty subgroup", i+1, row.Employee)
		}
		if len(row.Costs) > len(periodColumns) {
			return nil, configErrorf("row %d (%s): %d values for %d period columns",
				i+1, row.Employee, len(row.Costs), len(periodColumns))
		}

		for j, label := range periodColumns {
			var cost NullFloat
			if j < len(row.Costs) {
				cost = row.Costs[j]
			}
			if cost.Valid && (math.IsNaN(cost.Float64) || math.IsInf(cost.Float64, 0)) {
				return nil, configErrorf("row %d (%s), column %q: cost is not a finite number", i+1, row.Employee, label)
			}
			out = append(out, PeriodRecord{
				Employee: row.Employee,
				Subgroup: row.Subgroup,
				Label:    label,
				Date:     dates[j],
				Year:     dates[j].Year(),
				Cost:     cost,
			})
		}
	}
	return out, nil
}

// AnalyticalSeries keeps the records that feed metrics: resolved date and a
// cost present.
func AnalyticalSeries(records []PeriodRecord) []PeriodRecord {
	out := make([]PeriodRecord, 0, len(records))
	for _, r := range records {
		if r.Analytical() {
			out = append(out, r)
		}
	}
	return out
}

package analytics

import (
	"sort"
	"time"
)

// Axis is the ordered set of distinct months present in a filtered series.
type Axis struct {
	dates []time.Time
	index map[time.Time]int
}

// NewAxis builds the period axis from the resolved dates of records.
func NewAxis(records []PeriodRecord) Axis {
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, r := range records {
		if !r.Resolved() {
			continue
		}
		d := r.Date.UTC()
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	index := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		index[d] = i
	}
	return Axis{dates: dates, index: index}
}

func (a Axis) Len() int { return len(a.dates) }

// Dates returns a copy of the axis months.
func (a Axis) Dates() []time.Time {
	return append([]time.Time(nil), a.dates...)
}

// Position returns the zero-based axis position of d.
func (a Axis) Position(d time.Time) (int, bool) {
	i, ok := a.index[d.UTC()]
	return i, ok
}

// First and Last are the global bounds used for entry/exit detection.
func (a Axis) First() int { return 0 }
func (a Axis) Last() int  { return len(a.dates) - 1 }

// BuildTimelines groups records per employee, in order of first appearance,
// each sorted by axis position. Records whose date is not on the axis are
// skipped.
func BuildTimelines(records []PeriodRecord, axis Axis) []EmployeeTimeline {
	order := make(map[string]int)
	var timelines []EmployeeTimeline

	for _, r := range records {
		pos, ok := axis.Position(r.Date)
		if !r.Resolved() || !ok {
			continue
		}
		i, seen := order[r.Employee]
		if !seen {
			i = len(timelines)
			order[r.Employee] = i
			timelines = append(timelines, EmployeeTimeline{Employee: r.Employee, Subgroup: r.Subgroup})
		}
		timelines[i].Records = append(timelines[i].Records, r)
		timelines[i].Positions = append(timelines[i].Positions, pos)
	}

	for i := range timelines {
		sortTimeline(&timelines[i])
	}
	return timelines
}

func sortTimeline(tl *EmployeeTimeline) {
	idx := make([]int, len(tl.Records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return tl.Positions[idx[a]] < tl.Positions[idx[b]] })

	records := make([]PeriodRecord, len(idx))
	positions := make([]int, len(idx))
	for k, i := range idx {
		records[k] = tl.Records[i]
		positions[k] = tl.Positions[i]
	}
	tl.Records = records
	tl.Positions = positions
}

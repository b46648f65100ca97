package analytics

// Continuity holds the employment-continuity signals of one employee.
type Continuity struct {
	FirstPosition   int
	LastPosition    int
	EntryInProgress bool
	ExitInProgress  bool
	LowMonthCount   int
	LongestLowRun   int
}

// IsLowActivity reports whether a month looks like leave or absence: no cost
// at all, or a cost at or below threshold.
func IsLowActivity(cost NullFloat, threshold float64) bool {
	return !cost.Valid || cost.Float64 <= threshold
}

// LongestTrueRun returns the length of the longest run of consecutive true
// values.
func LongestTrueRun(flags []bool) int {
	longest, current := 0, 0
	for _, f := range flags {
		if !f {
			current = 0
			continue
		}
		current++
		if current > longest {
			longest = current
		}
	}
	return longest
}

// DetectContinuity compares an employee's observed span with the axis and
// scans its months for low activity. The timeline must be sorted by axis
// position.
func DetectContinuity(axis Axis, tl EmployeeTimeline, threshold float64) (Continuity, error) {
	if len(tl.Records) == 0 {
		return Continuity{}, &InvariantError{Employee: tl.Employee, Reason: "empty timeline"}
	}
	if len(tl.Positions) != len(tl.Records) {
		return Continuity{}, &InvariantError{Employee: tl.Employee, Reason: "positions and records differ in length"}
	}
	for i, pos := range tl.Positions {
		if pos < axis.First() || pos > axis.Last() {
			return Continuity{}, &InvariantError{Employee: tl.Employee, Reason: "position outside period axis"}
		}
		if i > 0 && pos < tl.Positions[i-1] {
			return Continuity{}, &InvariantError{Employee: tl.Employee, Reason: "timeline not sorted by axis position"}
		}
	}

	first := tl.Positions[0]
	last := tl.Positions[len(tl.Positions)-1]

	low := make([]bool, len(tl.Records))
	count := 0
	for i, r := range tl.Records {
		low[i] = IsLowActivity(r.Cost, threshold)
		if low[i] {
			count++
		}
	}

	return Continuity{
		FirstPosition:   first,
		LastPosition:    last,
		EntryInProgress: first > axis.First(),
		ExitInProgress:  last < axis.Last(),
		LowMonthCount:   count,
		LongestLowRun:   LongestTrueRun(low),
	}, nil
}

package analytics

import "math"

// AnomalyRule flags months worth a manual data-quality review.
type AnomalyRule struct {
	Cutoff float64
}

// IsAnomaly keeps both terms of the business rule: non-positive, or below
// the cutoff. With a positive cutoff the second term covers the first.
func (r AnomalyRule) IsAnomaly(cost float64) bool {
	return cost <= 0 || cost < r.Cutoff
}

// Metrics are the cost statistics of one employee.
type Metrics struct {
	YearlyMeans    map[int]float64
	MeanA          NullFloat
	MeanB          NullFloat
	VarAbs         NullFloat
	VarRel         NullFloat
	Volatility     NullFloat
	AnomalyCount   int
	ObservedMonths int
}

// Mean is undefined for an empty sample.
func Mean(values []float64) NullFloat {
	if len(values) == 0 {
		return Undefined
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return Defined(sum / float64(len(values)))
}

// SampleStdDev is the n-1 standard deviation, undefined below two points.
func SampleStdDev(values []float64) NullFloat {
	if len(values) < 2 {
		return Undefined
	}
	mean, _ := Mean(values).Get()
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return Defined(math.Sqrt(ss / float64(len(values)-1)))
}

// Variation returns meanB-meanA and that difference as a percentage of
// meanA. A zero baseline leaves the percentage undefined.
func Variation(meanA, meanB NullFloat) (abs, rel NullFloat) {
	a, okA := meanA.Get()
	b, okB := meanB.Get()
	if !okA || !okB {
		return Undefined, Undefined
	}
	abs = Defined(b - a)
	if a == 0 {
		return abs, Undefined
	}
	return abs, Defined((b - a) / a * 100)
}

// ComputeMetrics derives yearly means, variation, volatility and anomalies
// from the timeline's observed costs.
func ComputeMetrics(tl EmployeeTimeline, yearA, yearB int, rule AnomalyRule) Metrics {
	byYear := make(map[int][]float64)
	var all []float64
	anomalies := 0

	for _, r := range tl.Records {
		cost, ok := r.Cost.Get()
		if !ok || !r.Resolved() {
			continue
		}
		all = append(all, cost)
		byYear[r.Year] = append(byYear[r.Year], cost)
		if rule.IsAnomaly(cost) {
			anomalies++
		}
	}

	means := make(map[int]float64, len(byYear))
	for y, costs := range byYear {
		m, _ := Mean(costs).Get()
		means[y] = m
	}

	meanA := Mean(byYear[yearA])
	meanB := Mean(byYear[yearB])
	varAbs, varRel := Variation(meanA, meanB)

	return Metrics{
		YearlyMeans:    means,
		MeanA:          meanA,
		MeanB:          meanB,
		VarAbs:         varAbs,
		VarRel:         varRel,
		Volatility:     SampleStdDev(all),
		AnomalyCount:   anomalies,
		ObservedMonths: len(all),
	}
}

// SummarizeEmployee combines continuity and metrics into the summary row.
func SummarizeEmployee(axis Axis, tl EmployeeTimeline, p Params) (EmployeeSummary, error) {
	cont, err := DetectContinuity(axis, tl, p.AbsenceThreshold)
	if err != nil {
		return EmployeeSummary{}, err
	}
	m := ComputeMetrics(tl, p.YearA, p.YearB, p.anomalyRule())

	return EmployeeSummary{
		Employee:        tl.Employee,
		Subgroup:        tl.Subgroup,
		YearlyMeans:     m.YearlyMeans,
		MeanA:           m.MeanA,
		MeanB:           m.MeanB,
		VarAbs:          m.VarAbs,
		VarRel:          m.VarRel,
		Volatility:      m.Volatility,
		AnomalyCount:    m.AnomalyCount,
		ObservedMonths:  m.ObservedMonths,
		EntryInProgress: cont.EntryInProgress,
		ExitInProgress:  cont.ExitInProgress,
		LowMonthCount:   cont.LowMonthCount,
		LongestLowRun:   cont.LongestLowRun,
	}, nil
}

package analytics_test

import (
	"context"
	"testing"

	"github.com/godilite/workforce-analytics/internal/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func num(v float64) analytics.NullFloat { return analytics.Defined(v) }

var na = analytics.Undefined

// sampleRecords covers January 2024 to December 2025.
func sampleRecords(t *testing.T) []analytics.PeriodRecord {
	t.Helper()
	dates := analytics.PeriodDates(24, analytics.AnchorMonth(2024))
	labels := make([]string, len(dates))
	for i, d := range dates {
		labels[i] = d.Format("01-2006")
	}

	fill := func(v analytics.NullFloat, n int) []analytics.NullFloat {
		out := make([]analytics.NullFloat, n)
		for i := range out {
			out[i] = v
		}
		return out
	}
	concat := func(parts ...[]analytics.NullFloat) []analytics.NullFloat {
		var out []analytics.NullFloat
		for _, p := range parts {
			out = append(out, p...)
		}
		return out
	}

	rows := []analytics.RawRow{
		// steady across both years
		{Employee: "Alice", Subgroup: "soins", Costs: concat(fill(num(2000), 12), fill(num(2200), 12))},
		// leaves after March 2024
		{Employee: "Xavier", Subgroup: "soins", Costs: concat([]analytics.NullFloat{num(1000), num(1200), num(1300)}, fill(na, 21))},
		// negative and zero months
		{Employee: "Yann", Subgroup: "soins", Costs: concat([]analytics.NullFloat{num(0), num(-50), num(600), num(700)}, fill(num(2500), 20))},
		// hired in 2025
		{Employee: "Zoe", Subgroup: "soins", Costs: concat(fill(na, 12), fill(num(1800), 12))},
		// zero baseline in 2024
		{Employee: "Wanda", Subgroup: "soins", Costs: concat(fill(num(0), 12), fill(num(1700), 12))},
		{Employee: "Bob", Subgroup: "admin", Costs: concat(fill(num(3000), 12), fill(num(2900), 12))},
	}

	records, err := analytics.Reshape(rows, labels, analytics.AnchorMonth(2024))
	require.NoError(t, err)
	return records
}

func analyze(t *testing.T, subgroup string, p analytics.Params) *analytics.Report {
	t.Helper()
	report, err := analytics.NewAnalyzer(zap.NewNop()).Analyze(context.Background(), sampleRecords(t), subgroup, p)
	require.NoError(t, err)
	return report
}

func find(t *testing.T, report *analytics.Report, employee string) analytics.EmployeeSummary {
	t.Helper()
	for _, s := range report.Employees {
		if s.Employee == employee {
			return s
		}
	}
	t.Fatalf("employee %q not in report", employee)
	return analytics.EmployeeSummary{}
}

func TestAnalyzeScenarios(t *testing.T) {
	p := analytics.DefaultParams()
	report := analyze(t, "soins", p)

	t.Run("early exit with low months", func(t *testing.T) {
		x := find(t, report, "Xavier")
		assert.Equal(t, 3, x.LowMonthCount)
		assert.Equal(t, 3, x.LongestLowRun)
		assert.True(t, x.ExitInProgress)
		assert.False(t, x.EntryInProgress)
		assert.False(t, x.MeanB.Valid)
		assert.False(t, x.VarAbs.Valid)
	})

	t.Run("anomalies independent of threshold", func(t *testing.T) {
		for _, threshold := range []float64{0, 1500, 3000} {
			p := analytics.DefaultParams()
			p.AbsenceThreshold = threshold
			y := find(t, analyze(t, "soins", p), "Yann")
			assert.Equal(t, 2, y.AnomalyCount)
		}
	})

	t.Run("entry in year B has no relative variation", func(t *testing.T) {
		z := find(t, report, "Zoe")
		assert.True(t, z.EntryInProgress)
		assert.False(t, z.MeanA.Valid)
		assert.False(t, z.VarRel.Valid)
	})

	t.Run("zero baseline has no relative variation", func(t *testing.T) {
		w := find(t, report, "Wanda")
		assert.Equal(t, analytics.Defined(0), w.MeanA)
		assert.Equal(t, analytics.Defined(1700), w.VarAbs)
		assert.False(t, w.VarRel.Valid)
	})

	t.Run("unknown subgroup", func(t *testing.T) {
		got, err := analytics.NewAnalyzer(nil).Analyze(context.Background(), sampleRecords(t), "logistique", p)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, analytics.ErrNoData)
	})

	t.Run("axis is scoped to the subgroup", func(t *testing.T) {
		assert.Len(t, report.Axis, 24)
		assert.Equal(t, 5, report.Group.Employees)
		for _, d := range report.Detail {
			assert.Equal(t, "soins", d.Subgroup)
		}
	})
}

func TestAnalyzeProperties(t *testing.T) {
	p := analytics.DefaultParams()
	report := analyze(t, "soins", p)

	t.Run("low month counts are bounded", func(t *testing.T) {
		for _, s := range report.Employees {
			assert.LessOrEqual(t, s.LongestLowRun, s.LowMonthCount, s.Employee)
			assert.LessOrEqual(t, s.LowMonthCount, s.ObservedMonths, s.Employee)
		}
	})

	t.Run("variation is defined exactly when both means are", func(t *testing.T) {
		for _, s := range report.Employees {
			assert.Equal(t, s.MeanA.Valid && s.MeanB.Valid, s.VarAbs.Valid, s.Employee)
			if s.VarAbs.Valid {
				assert.Equal(t, s.MeanB.Float64-s.MeanA.Float64, s.VarAbs.Float64)
			}
			if s.VarRel.Valid {
				assert.InDelta(t, s.VarAbs.Float64/s.MeanA.Float64*100, s.VarRel.Float64, 1e-9)
			} else if s.VarAbs.Valid {
				assert.Equal(t, 0.0, s.MeanA.Float64)
			}
		}
	})

	t.Run("volatility needs two points", func(t *testing.T) {
		for _, s := range report.Employees {
			if s.ObservedMonths < 2 {
				assert.False(t, s.Volatility.Valid)
				continue
			}
			require.True(t, s.Volatility.Valid)
			assert.GreaterOrEqual(t, s.Volatility.Float64, 0.0)
		}
	})

	t.Run("totals come from observations", func(t *testing.T) {
		var sum float64
		for _, d := range report.Detail {
			if c, ok := d.Cost.Get(); ok {
				sum += c
			}
		}
		assert.InDelta(t, sum, report.Group.TotalA+report.Group.TotalB, 1e-6)
	})

	t.Run("rankings are bounded and ordered", func(t *testing.T) {
		assert.LessOrEqual(t, len(report.TopIncreases), p.TopN)
		for i := 1; i < len(report.TopIncreases); i++ {
			assert.GreaterOrEqual(t, report.TopIncreases[i-1].VarAbs.Float64, report.TopIncreases[i].VarAbs.Float64)
		}
		for i := 1; i < len(report.TopDecreases); i++ {
			assert.LessOrEqual(t, report.TopDecreases[i-1].VarAbs.Float64, report.TopDecreases[i].VarAbs.Float64)
		}
		for _, s := range append(report.TopIncreases, report.TopDecreases...) {
			assert.True(t, s.VarAbs.Valid)
		}
	})

	t.Run("reruns are identical", func(t *testing.T) {
		p.Workers = 1
		again := analyze(t, "soins", p)
		again.Params.Workers = report.Params.Workers
		assert.Equal(t, report, again)
	})
}

func TestAnalyzeGroupSummary(t *testing.T) {
	report := analyze(t, "soins", analytics.DefaultParams())
	g := report.Group

	assert.Equal(t, 2024, g.YearA)
	assert.Equal(t, 2025, g.YearB)
	assert.Equal(t, 1, g.Entering)
	assert.Equal(t, 1, g.Exiting)
	// Xavier, Yann (four months under 1500) and Wanda
	assert.Equal(t, 3, g.LongAbsence)
	assert.Equal(t, g.TotalB-g.TotalA, g.DeltaTotal)
	assert.True(t, g.DeltaPercent.Valid)

	require.NotNil(t, report.Narrative.MostVolatile)
	assert.Equal(t, "Wanda", report.Narrative.MostVolatile.Employee)
	assert.Len(t, report.MonthlyTotals, 24)
}

func TestAnalyzeRejectsInvalidParams(t *testing.T) {
	p := analytics.DefaultParams()
	p.AbsenceThreshold = -1

	_, err := analytics.NewAnalyzer(nil).Analyze(context.Background(), sampleRecords(t), "soins", p)
	assert.ErrorIs(t, err, analytics.ErrConfiguration)
}

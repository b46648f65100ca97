package analytics

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Analyzer runs the full per-subgroup pipeline: filter, continuity,
// metrics, aggregation.
type Analyzer struct {
	logger *zap.Logger
}

func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{logger: logger.Named("analytics")}
}

// Analyze computes the report of one subgroup. The period axis is built from
// that subgroup's records only.
func (a *Analyzer) Analyze(ctx context.Context, records []PeriodRecord, subgroup string, p Params) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	filtered, err := FilterSubgroup(records, subgroup)
	if err != nil {
		return nil, err
	}
	series := AnalyticalSeries(filtered)
	if len(series) == 0 {
		return nil, &NoDataError{Subgroup: subgroup}
	}

	axis := NewAxis(series)
	timelines := BuildTimelines(series, axis)

	summaries, err := a.summarize(ctx, axis, timelines, p)
	if err != nil {
		return nil, err
	}

	group := ComputeGroupSummary(series, summaries, p)
	detail := BuildDetail(filtered, p.anomalyRule())

	a.logger.Debug("subgroup analyzed",
		zap.String("subgroup", subgroup),
		zap.Int("employees", len(summaries)),
		zap.Int("months", axis.Len()),
		zap.Float64("delta_total", group.DeltaTotal))

	return &Report{
		Subgroup:      subgroup,
		Params:        p,
		Axis:          axis.Dates(),
		Employees:     SortByVariation(summaries),
		Group:         group,
		TopIncreases:  RankIncreases(summaries, p.TopN),
		TopDecreases:  RankDecreases(summaries, p.TopN),
		Narrative:     BuildNarrative(summaries, group, p),
		MonthlyTotals: MonthlyTotals(series),
		Anomalies:     AnomalyRows(detail),
		Stability:     StabilityPoints(summaries),
		Detail:        detail,
	}, nil
}

// summarize maps every timeline to its summary. Each worker writes only its
// own slot.
func (a *Analyzer) summarize(ctx context.Context, axis Axis, timelines []EmployeeTimeline, p Params) ([]EmployeeSummary, error) {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make([]EmployeeSummary, len(timelines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range timelines {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := SummarizeEmployee(axis, timelines[i], p)
			if err != nil {
				return err
			}
			out[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

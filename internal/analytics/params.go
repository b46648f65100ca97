package analytics

import "fmt"

const (
	DefaultBaseYear       = 2024
	DefaultYearA          = 2024
	DefaultYearB          = 2025
	DefaultAnomalyCutoff  = 500.0
	DefaultLongAbsenceRun = 2
	PreferredSubgroup     = "soins"

	// narrativeContributors is how many top increases the narrative explains.
	narrativeContributors = 5
)

// Bounds describes an integer parameter exposed as a bounded slider.
type Bounds struct {
	Min     int `json:"min" yaml:"min"`
	Max     int `json:"max" yaml:"max"`
	Step    int `json:"step" yaml:"step"`
	Default int `json:"default" yaml:"default"`
}

var (
	ThresholdBounds = Bounds{Min: 0, Max: 3000, Step: 100, Default: 1500}
	TopNBounds      = Bounds{Min: 5, Max: 20, Step: 1, Default: 10}
)

// Contains reports whether v lies within [Min, Max].
func (b Bounds) Contains(v int) bool {
	return v >= b.Min && v <= b.Max
}

// Clamp pins v into [Min, Max].
func (b Bounds) Clamp(v int) int {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Params configures one analysis run.
type Params struct {
	YearA            int     `json:"year_a"`
	YearB            int     `json:"year_b"`
	AbsenceThreshold float64 `json:"absence_threshold"`
	AnomalyCutoff    float64 `json:"anomaly_cutoff"`
	TopN             int     `json:"top_n"`
	LongAbsenceRun   int     `json:"long_absence_run"`
	// Workers bounds the per-employee fan-out; <= 0 means one per CPU.
	Workers int `json:"-"`
}

func DefaultParams() Params {
	return Params{
		YearA:            DefaultYearA,
		YearB:            DefaultYearB,
		AbsenceThreshold: float64(ThresholdBounds.Default),
		AnomalyCutoff:    DefaultAnomalyCutoff,
		TopN:             TopNBounds.Default,
		LongAbsenceRun:   DefaultLongAbsenceRun,
	}
}

// Validate rejects parameter sets the calculators cannot honour.
func (p Params) Validate() error {
	if p.YearA == p.YearB {
		return configErrorf("reference years must differ, got %d twice", p.YearA)
	}
	if p.AbsenceThreshold < 0 {
		return configErrorf("absence threshold must be non-negative, got %v", p.AbsenceThreshold)
	}
	if p.TopN < 1 {
		return configErrorf("top-N must be positive, got %d", p.TopN)
	}
	if p.LongAbsenceRun < 1 {
		return configErrorf("long absence run must be at least 1 month, got %d", p.LongAbsenceRun)
	}
	return nil
}

func (p Params) anomalyRule() AnomalyRule {
	return AnomalyRule{Cutoff: p.AnomalyCutoff}
}

func (p Params) String() string {
	return fmt.Sprintf("years=%d/%d threshold=%v top=%d", p.YearA, p.YearB, p.AbsenceThreshold, p.TopN)
}

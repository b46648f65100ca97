package config

import (
	"fmt"
	"os"

	"github.com/godilite/workforce-analytics/internal/analytics"
	"github.com/godilite/workforce-analytics/internal/service"
	"gopkg.in/yaml.v3"
)

// Analysis is the optional analysis.yaml file. Omitted fields keep their
// built-in defaults.
type Analysis struct {
	BaseYear          int    `yaml:"base_year"`
	PreferredSubgroup string `yaml:"preferred_subgroup"`
	Years             struct {
		A int `yaml:"a"`
		B int `yaml:"b"`
	} `yaml:"years"`
	AnomalyCutoff    float64          `yaml:"anomaly_cutoff"`
	LongAbsenceRun   int              `yaml:"long_absence_run"`
	Workers          int              `yaml:"workers"`
	AbsenceThreshold analytics.Bounds `yaml:"absence_threshold"`
	TopN             analytics.Bounds `yaml:"top_n"`
}

// DefaultAnalysis mirrors the built-in analysis defaults.
func DefaultAnalysis() *Analysis {
	p := analytics.DefaultParams()
	a := &Analysis{
		BaseYear:          analytics.DefaultBaseYear,
		PreferredSubgroup: analytics.PreferredSubgroup,
		AnomalyCutoff:     p.AnomalyCutoff,
		LongAbsenceRun:    p.LongAbsenceRun,
		AbsenceThreshold:  analytics.ThresholdBounds,
		TopN:              analytics.TopNBounds,
	}
	a.Years.A, a.Years.B = p.YearA, p.YearB
	return a
}

// LoadAnalysis parses the YAML file at path over the defaults. An empty
// path returns the defaults.
func LoadAnalysis(path string) (*Analysis, error) {
	a := DefaultAnalysis()
	if path == "" {
		return a, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis config: %w", err)
	}
	if err := yaml.Unmarshal(b, a); err != nil {
		return nil, fmt.Errorf("parse analysis config %s: %w", path, err)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("analysis config %s: %w", path, err)
	}
	return a, nil
}

func validBounds(name string, b analytics.Bounds) error {
	if b.Min > b.Max || b.Step <= 0 || !b.Contains(b.Default) {
		return fmt.Errorf("%s bounds invalid: min=%d max=%d step=%d default=%d", name, b.Min, b.Max, b.Step, b.Default)
	}
	return nil
}

func (a *Analysis) Validate() error {
	if err := validBounds("absence_threshold", a.AbsenceThreshold); err != nil {
		return err
	}
	if err := validBounds("top_n", a.TopN); err != nil {
		return err
	}
	return a.Settings().Defaults.Validate()
}

// Settings converts the file into service settings.
func (a *Analysis) Settings() service.Settings {
	return service.Settings{
		BaseYear:          a.BaseYear,
		PreferredSubgroup: a.PreferredSubgroup,
		Defaults: analytics.Params{
			YearA:            a.Years.A,
			YearB:            a.Years.B,
			AbsenceThreshold: float64(a.AbsenceThreshold.Default),
			AnomalyCutoff:    a.AnomalyCutoff,
			TopN:             a.TopN.Default,
			LongAbsenceRun:   a.LongAbsenceRun,
			Workers:          a.Workers,
		},
		ThresholdBounds: a.AbsenceThreshold,
		TopNBounds:      a.TopN,
	}
}

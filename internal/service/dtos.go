package service

import "github.com/godilite/workforce-analytics/internal/analytics"

type DatasetInfo struct {
	ID              string   `json:"dataset_id"`
	Name            string   `json:"name"`
	Employees       int      `json:"employees"`
	Periods         int      `json:"periods"`
	Records         int      `json:"records"`
	Subgroups       []string `json:"subgroups"`
	DefaultSubgroup string   `json:"default_subgroup"`
}

type SubgroupList struct {
	Subgroups []string `json:"subgroups"`
	Default   string   `json:"default_subgroup"`
}

// AnalysisRequest selects a subgroup and overrides slider parameters. Nil
// overrides and an empty subgroup fall back to the configured defaults.
type AnalysisRequest struct {
	DatasetID        string
	Subgroup         string
	AbsenceThreshold *int
	TopN             *int
}

type ExportResult struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

// Settings carries the analysis defaults and slider bounds.
type Settings struct {
	BaseYear          int
	PreferredSubgroup string
	Defaults          analytics.Params
	ThresholdBounds   analytics.Bounds
	TopNBounds        analytics.Bounds
}

func DefaultSettings() Settings {
	return Settings{
		BaseYear:          analytics.DefaultBaseYear,
		PreferredSubgroup: analytics.PreferredSubgroup,
		Defaults:          analytics.DefaultParams(),
		ThresholdBounds:   analytics.ThresholdBounds,
		TopNBounds:        analytics.TopNBounds,
	}
}

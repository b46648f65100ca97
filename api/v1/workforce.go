package v1

import "github.com/godilite/workforce-analytics/internal/analytics"

type ImportDatasetRequest struct {
	Name    string `json:"name"`
	Format  string `json:"format,omitempty"`
	Content []byte `json:"content"`
	Sheet   string `json:"sheet,omitempty"`
}

type ImportDatasetResponse struct {
	DatasetID       string   `json:"dataset_id"`
	Name            string   `json:"name"`
	Employees       int      `json:"employees"`
	Periods         int      `json:"periods"`
	Records         int      `json:"records"`
	Subgroups       []string `json:"subgroups"`
	DefaultSubgroup string   `json:"default_subgroup"`
}

type ListSubgroupsRequest struct {
	DatasetID string `json:"dataset_id"`
}

type ListSubgroupsResponse struct {
	Subgroups       []string `json:"subgroups"`
	DefaultSubgroup string   `json:"default_subgroup"`
}

// AnalyzeSubgroupRequest selects a subgroup and optionally overrides the
// absence threshold and ranking size. Nil overrides use the server defaults.
type AnalyzeSubgroupRequest struct {
	DatasetID        string `json:"dataset_id"`
	Subgroup         string `json:"subgroup,omitempty"`
	AbsenceThreshold *int   `json:"absence_threshold,omitempty"`
	TopN             *int   `json:"top_n,omitempty"`
}

type AnalyzeSubgroupResponse struct {
	Report *analytics.Report `json:"report"`
}

type ExportAnalysisRequest struct {
	DatasetID        string `json:"dataset_id"`
	Subgroup         string `json:"subgroup,omitempty"`
	AbsenceThreshold *int   `json:"absence_threshold,omitempty"`
	TopN             *int   `json:"top_n,omitempty"`
}

type ExportAnalysisResponse struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

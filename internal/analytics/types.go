package analytics

import "time"

// RawRow is one employee in wide form: one optional cost per period column.
type RawRow struct {
	Employee string
	Subgroup string
	Costs    []NullFloat
}

// PeriodRecord is one (employee, period) cell of the long-form series.
type PeriodRecord struct {
	Employee string    `json:"employee"`
	Subgroup string    `json:"subgroup"`
	Label    string    `json:"label"`
	Date     time.Time `json:"date"`
	Year     int       `json:"year"`
	Cost     NullFloat `json:"cost"`
}

// Resolved reports whether the record's period mapped to a calendar month.
func (r PeriodRecord) Resolved() bool {
	return !r.Date.IsZero()
}

// Analytical reports whether the record feeds metric computation.
func (r PeriodRecord) Analytical() bool {
	return r.Resolved() && r.Cost.Valid
}

// EmployeeTimeline holds one employee's records ordered by their position on
// the subgroup's period axis. Positions[i] is the axis position of Records[i].
type EmployeeTimeline struct {
	Employee  string
	Subgroup  string
	Records   []PeriodRecord
	Positions []int
}

// EmployeeSummary is the per-employee output row.
type EmployeeSummary struct {
	Employee        string          `json:"employee"`
	Subgroup        string          `json:"subgroup"`
	YearlyMeans     map[int]float64 `json:"yearly_means"`
	MeanA           NullFloat       `json:"mean_a"`
	MeanB           NullFloat       `json:"mean_b"`
	VarAbs          NullFloat       `json:"var_abs"`
	VarRel          NullFloat       `json:"var_rel_pct"`
	Volatility      NullFloat       `json:"volatility"`
	AnomalyCount    int             `json:"anomaly_count"`
	ObservedMonths  int             `json:"observed_months"`
	EntryInProgress bool            `json:"entry_in_progress"`
	ExitInProgress  bool            `json:"exit_in_progress"`
	LowMonthCount   int             `json:"low_month_count"`
	LongestLowRun   int             `json:"longest_low_run"`
}

// GroupSummary holds the subgroup-level totals of one analysis run.
type GroupSummary struct {
	YearA           int       `json:"year_a"`
	YearB           int       `json:"year_b"`
	TotalA          float64   `json:"total_a"`
	TotalB          float64   `json:"total_b"`
	DeltaTotal      float64   `json:"delta_total"`
	DeltaPercent    NullFloat `json:"delta_pct"`
	Employees       int       `json:"employees"`
	Entering        int       `json:"entering"`
	Exiting         int       `json:"exiting"`
	LongAbsence     int       `json:"long_absence"`
	AnomalousMonths int       `json:"anomalous_months"`
}

// DetailRow is a long-form record as exported, with its anomaly flag.
type DetailRow struct {
	Employee string    `json:"employee"`
	Subgroup string    `json:"subgroup"`
	Label    string    `json:"label"`
	Date     time.Time `json:"date"`
	Year     int       `json:"year"`
	Cost     NullFloat `json:"cost"`
	Anomaly  bool      `json:"anomaly"`
}

// MonthlyTotal is the subgroup's summed cost for one month of the axis.
type MonthlyTotal struct {
	Date  time.Time `json:"date"`
	Total float64   `json:"total"`
}

// StabilityPoint places an employee on the level-vs-volatility plane.
type StabilityPoint struct {
	Employee        string  `json:"employee"`
	MeanA           float64 `json:"mean_a"`
	Volatility      float64 `json:"volatility"`
	VarAbs          float64 `json:"var_abs"`
	EntryInProgress bool    `json:"entry_in_progress"`
	ExitInProgress  bool    `json:"exit_in_progress"`
	LongestLowRun   int     `json:"longest_low_run"`
	LowMonthCount   int     `json:"low_month_count"`
}

// VolatileEmployee identifies the least stable employee of the subgroup.
type VolatileEmployee struct {
	Employee      string  `json:"employee"`
	Volatility    float64 `json:"volatility"`
	LongestLowRun int     `json:"longest_low_run"`
}

// Narrative is the automatic rollup printed under the summary table.
type Narrative struct {
	TopContributors      []string          `json:"top_contributors"`
	TopContributionShare NullFloat         `json:"top_contribution_share_pct"`
	TopEntering          int               `json:"top_entering"`
	TopLongAbsence       int               `json:"top_long_absence"`
	MostVolatile         *VolatileEmployee `json:"most_volatile,omitempty"`
}

// Report is the complete result of analyzing one subgroup.
type Report struct {
	Subgroup      string            `json:"subgroup"`
	Params        Params            `json:"params"`
	Axis          []time.Time       `json:"axis"`
	Employees     []EmployeeSummary `json:"employees"`
	Group         GroupSummary      `json:"group"`
	TopIncreases  []EmployeeSummary `json:"top_increases"`
	TopDecreases  []EmployeeSummary `json:"top_decreases"`
	Narrative     Narrative         `json:"narrative"`
	MonthlyTotals []MonthlyTotal    `json:"monthly_totals"`
	Anomalies     []DetailRow       `json:"anomalies"`
	Stability     []StabilityPoint  `json:"stability"`
	Detail        []DetailRow       `json:"detail"`
}

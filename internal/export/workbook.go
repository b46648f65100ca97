// Package export renders an analysis report as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/godilite/workforce-analytics/internal/analytics"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary   = "Resume_sous_groupe"
	SheetDetail    = "Detail_long"
	SheetGroup     = "Synthese"
	SheetAnomalies = "Anomalies"
	SheetMonthly   = "Totaux_mensuels"

	dateLayout = "2006-01-02"
)

// Filename is the download name of a subgroup's workbook.
func Filename(subgroup string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, subgroup)
	return fmt.Sprintf("analyse_%s.xlsx", safe)
}

// SummaryHeader names the summary columns for the report's reference years.
func SummaryHeader(p analytics.Params) []any {
	return []any{
		analytics.ColumnEmployee, analytics.ColumnSubgroup,
		fmt.Sprintf("moy_%d", p.YearA), fmt.Sprintf("moy_%d", p.YearB),
		"var_abs", "var_rel_%", "ecart_type", "nb_anomalies",
		"entree_en_cours", "sortie_en_cours", "nb_mois_faibles", "plus_long_arret",
	}
}

var detailHeader = []any{
	analytics.ColumnEmployee, analytics.ColumnSubgroup, "Periode_label", "Date", "Year", "Cout_global", "Anomalie",
}

// WriteWorkbook writes the report workbook to w.
func WriteWorkbook(w io.Writer, report *analytics.Report) error {
	f, err := Workbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Workbook builds the workbook in memory. The caller closes it.
func Workbook(report *analytics.Report) (*excelize.File, error) {
	if report == nil {
		return nil, fmt.Errorf("nil report")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetDetail, SheetGroup, SheetAnomalies, SheetMonthly} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	steps := []struct {
		sheet string
		rows  [][]any
	}{
		{SheetSummary, summaryRows(report)},
		{SheetDetail, detailRows(report.Detail)},
		{SheetGroup, groupRows(report)},
		{SheetAnomalies, detailRows(report.Anomalies)},
		{SheetMonthly, monthlyRows(report.MonthlyTotals)},
	}
	for _, step := range steps {
		if err := writeRows(f, step.sheet, step.rows); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// value turns undefined metrics into empty cells.
func value(n analytics.NullFloat) any {
	if v, ok := n.Get(); ok {
		return v
	}
	return nil
}

func summaryRows(report *analytics.Report) [][]any {
	rows := [][]any{SummaryHeader(report.Params)}
	for _, s := range report.Employees {
		rows = append(rows, []any{
			s.Employee, s.Subgroup,
			value(s.MeanA), value(s.MeanB),
			value(s.VarAbs), value(s.VarRel), value(s.Volatility), s.AnomalyCount,
			s.EntryInProgress, s.ExitInProgress, s.LowMonthCount, s.LongestLowRun,
		})
	}
	return rows
}

func detailRows(detail []analytics.DetailRow) [][]any {
	rows := [][]any{detailHeader}
	for _, d := range detail {
		rows = append(rows, []any{
			d.Employee, d.Subgroup, d.Label, d.Date.Format(dateLayout), d.Year, value(d.Cost), d.Anomaly,
		})
	}
	return rows
}

func groupRows(report *analytics.Report) [][]any {
	g := report.Group
	n := report.Narrative
	rows := [][]any{
		{"Indicateur", "Valeur"},
		{"Sous_groupe", report.Subgroup},
		{fmt.Sprintf("Total %d", g.YearA), g.TotalA},
		{fmt.Sprintf("Total %d", g.YearB), g.TotalB},
		{"Delta total", g.DeltaTotal},
		{"Evolution %", value(g.DeltaPercent)},
		{"Salaries", g.Employees},
		{"Entrees en cours", g.Entering},
		{"Sorties en cours", g.Exiting},
		{"Arrets longs", g.LongAbsence},
		{"Mois en anomalie", g.AnomalousMonths},
		{"Seuil absence", report.Params.AbsenceThreshold},
		{"Part top hausses %", value(n.TopContributionShare)},
		{"Top hausses", strings.Join(n.TopContributors, ", ")},
		{"Top hausses entrees", n.TopEntering},
		{"Top hausses arrets longs", n.TopLongAbsence},
	}
	if mv := n.MostVolatile; mv != nil {
		rows = append(rows,
			[]any{"Salarie le plus instable", mv.Employee},
			[]any{"Ecart-type", mv.Volatility},
			[]any{"Plus long arret", mv.LongestLowRun},
		)
	}
	return rows
}

func monthlyRows(totals []analytics.MonthlyTotal) [][]any {
	rows := [][]any{{"Date", "Cout_global"}}
	for _, m := range totals {
		rows = append(rows, []any{m.Date.Format(dateLayout), m.Total})
	}
	return rows
}

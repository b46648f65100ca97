package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/godilite/workforce-analytics/internal/analytics"
)

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func nullMoney(v analytics.NullFloat) string {
	if !v.Valid {
		return "n/a"
	}
	return money(v.Float64)
}

func percent(v analytics.NullFloat) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v.Float64)
}

func renderReport(w io.Writer, r *analytics.Report) error {
	g := r.Group
	fmt.Fprintf(w, "Subgroup %s (%s)\n", r.Subgroup, r.Params)
	fmt.Fprintf(w, "Total %d: %s  Total %d: %s  Delta: %s (%s)\n",
		g.YearA, money(g.TotalA), g.YearB, money(g.TotalB), money(g.DeltaTotal), percent(g.DeltaPercent))
	fmt.Fprintf(w, "Employees: %d  Entering: %d  Exiting: %d  Long absence: %d  Anomalous months: %d\n\n",
		g.Employees, g.Entering, g.Exiting, g.LongAbsence, g.AnomalousMonths)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Employee\tMean %d\tMean %d\tVar\tVar %%\tStd dev\tAnomalies\tEntry\tExit\t\n", r.Params.YearA, r.Params.YearB)
	for _, s := range r.Employees {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\t\n",
			s.Employee, nullMoney(s.MeanA), nullMoney(s.MeanB), nullMoney(s.VarAbs), percent(s.VarRel),
			nullMoney(s.Volatility), s.AnomalyCount, flag(s.EntryInProgress), flag(s.ExitInProgress))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	renderRanking(w, "Top increases", r.TopIncreases)
	renderRanking(w, "Top decreases", r.TopDecreases)

	fmt.Fprintln(w)
	fmt.Fprintln(w, narrative(r))
	return nil
}

func flag(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func renderRanking(w io.Writer, title string, rows []analytics.EmployeeSummary) {
	fmt.Fprintf(w, "\n%s:\n", title)
	if len(rows) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	for i, s := range rows {
		fmt.Fprintf(w, "  %2d. %-20s %s\n", i+1, s.Employee, nullMoney(s.VarAbs))
	}
}

func narrative(r *analytics.Report) string {
	n := r.Narrative
	var b strings.Builder
	if len(n.TopContributors) > 0 {
		fmt.Fprintf(&b, "The %d largest increases (%s) account for %s of the change in total cost",
			len(n.TopContributors), strings.Join(n.TopContributors, ", "), percent(n.TopContributionShare))
		fmt.Fprintf(&b, "; %d of them are entries in progress and %d had a long absence.", n.TopEntering, n.TopLongAbsence)
	} else {
		b.WriteString("No employee has a comparable cost across both years.")
	}
	if v := n.MostVolatile; v != nil {
		fmt.Fprintf(&b, "\nMost volatile: %s (std dev %s, longest low-activity run %d months).",
			v.Employee, money(v.Volatility), v.LongestLowRun)
	}
	return b.String()
}

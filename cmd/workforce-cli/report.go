package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/godilite/workforce-analytics/internal/analytics"
	"github.com/godilite/workforce-analytics/internal/config"
	"github.com/godilite/workforce-analytics/internal/ingest"
	"github.com/godilite/workforce-analytics/internal/repository"
	"github.com/godilite/workforce-analytics/internal/service"
	dbbuilder "github.com/godilite/workforce-analytics/pkg/database"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type reportOptions struct {
	file      string
	sheet     string
	subgroup  string
	threshold int
	top       int
	out       string
	all       bool
	verbose   bool
}

func newReportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Analyze a cost table and print the subgroup report",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.AnalysisRequest{Subgroup: opts.subgroup}
			if cmd.Flags().Changed("threshold") {
				req.AbsenceThreshold = &opts.threshold
			}
			if cmd.Flags().Changed("top") {
				req.TopN = &opts.top
			}
			return runReport(cmd.Context(), cmd.OutOrStdout(), opts, req)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Input workbook (.xlsx) or CSV file (required)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Worksheet to read (default: first sheet)")
	cmd.Flags().StringVar(&opts.subgroup, "subgroup", "", "Subgroup to analyze (default: preferred or first subgroup)")
	cmd.Flags().IntVar(&opts.threshold, "threshold", analytics.ThresholdBounds.Default, "Absence threshold in currency units")
	cmd.Flags().IntVar(&opts.top, "top", analytics.TopNBounds.Default, "Number of top increases and decreases")
	cmd.Flags().StringVar(&opts.out, "out", "", "Write the result workbook to this file (directory with --all)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Analyze every subgroup and write one workbook each")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log pipeline steps to stderr")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func runReport(ctx context.Context, w io.Writer, opts reportOptions, req service.AnalysisRequest) error {
	logger := newLogger(opts.verbose)
	defer logger.Sync()

	analysis, err := config.LoadAnalysis(os.Getenv("ANALYSIS_CONFIG_PATH"))
	if err != nil {
		return err
	}

	table, err := readTable(opts.file, opts.sheet)
	if err != nil {
		return err
	}

	// Each run gets its own in-memory database.
	db, err := dbbuilder.New(
		dbbuilder.WithDataSource(fmt.Sprintf("file:cli-%s?mode=memory&cache=shared", uuid.NewString())),
		dbbuilder.WithInit(repository.Migrate),
		dbbuilder.WithRetry(1, 0),
	)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := service.NewAnalyticsService(repository.NewDatasetRepository(db), analysis.Settings(), logger)

	info, err := svc.ImportDataset(ctx, filepath.Base(opts.file), table)
	if err != nil {
		return err
	}
	req.DatasetID = info.ID
	fmt.Fprintf(w, "%s: %d employees, %d periods, subgroups: %v\n\n", info.Name, info.Employees, info.Periods, info.Subgroups)

	if opts.all {
		return exportAll(ctx, w, svc, info.Subgroups, req, opts.out)
	}

	report, err := svc.Analyze(ctx, req)
	if err != nil {
		return err
	}
	if err := renderReport(w, report); err != nil {
		return err
	}

	if opts.out == "" {
		return nil
	}
	req.Subgroup = report.Subgroup
	result, err := svc.Export(ctx, req)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.out, result.Content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}
	fmt.Fprintf(w, "\nworkbook written to %s\n", opts.out)
	return nil
}

func readTable(path, sheet string) (*ingest.Table, error) {
	format, err := ingest.FormatFromFilename(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ingest.Read(f, format, sheet)
}

// exportAll writes one workbook per subgroup into dir. A subgroup without
// data is reported and skipped; any other error stops the run.
func exportAll(ctx context.Context, w io.Writer, svc *service.AnalyticsService, subgroups []string, req service.AnalysisRequest, dir string) error {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(subgroups),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("exporting"),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)

	var written, skipped []string
	for _, sg := range subgroups {
		req.Subgroup = sg
		result, err := svc.Export(ctx, req)
		switch {
		case errors.Is(err, analytics.ErrNoData):
			skipped = append(skipped, sg)
		case err != nil:
			return fmt.Errorf("subgroup %s: %w", sg, err)
		default:
			path := filepath.Join(dir, result.Filename)
			if err := os.WriteFile(path, result.Content, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			written = append(written, path)
		}
		_ = bar.Add(1)
	}

	for _, p := range written {
		fmt.Fprintf(w, "wrote %s\n", p)
	}
	for _, sg := range skipped {
		fmt.Fprintf(w, "skipped %s: no data\n", sg)
	}
	return nil
}

package domain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"testpulse/internal/adapter"
	"testpulse/internal/controller"
	m "testpulse/internal/model"
)

// Report format selectors.
const (
	FormatJSON = "json"
	FormatHTML = "html"
	FormatAll  = "all"
)

// IngestArgs contains the arguments for ingesting result files.
type IngestArgs struct {
	Paths []string
}

// ReportArgs contains the arguments for generating report artifacts.
type ReportArgs struct {
	OutputDir          string
	Format             string
	WindowDays         int
	FlakyMinExecutions int
	TopFailingLimit    int
	RecentResultsLimit int
	Environment        string
}

// SummaryArgs contains the arguments for the terminal summary.
type SummaryArgs struct {
	WindowDays         int
	FlakyMinExecutions int
	TopFailingLimit    int
	Environment        string
}

// Workflow wires parsers, store, analytics, and presentation together.
type Workflow interface {
	Ingest(ctx context.Context, args IngestArgs) error
	Report(ctx context.Context, args ReportArgs) error
	Summary(ctx context.Context, args SummaryArgs) error
}

type workflow struct {
	junit     *adapter.JUnitParser
	checks    *adapter.CheckParser
	store     adapter.ResultStore
	artifacts *adapter.ArtifactWriter
	ui        controller.UI
	logger    *slog.Logger

	// Now anchors window cutoffs and artifact names, overridable in tests.
	Now func() time.Time
}

// NewWorkflow creates a Workflow with the provided dependencies.
func NewWorkflow(
	junit *adapter.JUnitParser,
	checks *adapter.CheckParser,
	store adapter.ResultStore,
	artifacts *adapter.ArtifactWriter,
	ui controller.UI,
	logger *slog.Logger,
) Workflow {
	return &workflow{
		junit:     junit,
		checks:    checks,
		store:     store,
		artifacts: artifacts,
		ui:        ui,
		logger:    logger,
		Now:       time.Now,
	}
}

// Ingest parses each path (file or directory) and appends every record to
// the store. A parse failure is fatal for an explicitly named file but only
// logged and skipped inside a directory batch. A store failure is always
// fatal.
func (w *workflow) Ingest(ctx context.Context, args IngestArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var totals controller.IngestTotals

	for _, path := range args.Paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if info.IsDir() {
			if err := w.ingestDir(path, &totals); err != nil {
				return err
			}

			continue
		}

		cases, suites, err := w.parseOne(path)
		if err != nil {
			return err
		}

		if err := w.appendAll(cases); err != nil {
			return err
		}

		totals.Files++
		totals.Cases += len(cases)
		totals.Suites += len(suites)
	}

	w.logger.Info("ingestion complete",
		"files", totals.Files, "skipped", totals.Skipped,
		"cases", totals.Cases, "suites", totals.Suites)

	return w.ui.DisplayIngestTotals(totals)
}

// ingestDir walks a directory batch. Files are processed strictly
// sequentially and each file is isolated: an unparsable file is logged and
// skipped, the batch continues.
func (w *workflow) ingestDir(dir string, totals *controller.IngestTotals) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !ingestibleExt(path) {
			return nil
		}

		cases, suites, parseErr := w.parseOne(path)
		if parseErr != nil {
			w.logger.Error("skipping unparsable file", "path", path, "error", parseErr)
			totals.Skipped++

			return nil
		}

		if appendErr := w.appendAll(cases); appendErr != nil {
			return appendErr
		}

		totals.Files++
		totals.Cases += len(cases)
		totals.Suites += len(suites)

		return nil
	})
}

func ingestibleExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".yaml", ".yml":
		return true
	}

	return false
}

// parseOne dispatches by extension: JUnit XML result files or collaborator
// YAML check reports.
func (w *workflow) parseOne(path string) ([]m.TestCaseResult, []m.SuiteResult, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cases, err := w.checks.ParseFile(path)
		return cases, nil, err
	default:
		return w.junit.ParseFile(path)
	}
}

func (w *workflow) appendAll(cases []m.TestCaseResult) error {
	for _, result := range cases {
		if err := w.store.Append(result); err != nil {
			return err
		}
	}

	return nil
}

// Report queries the window once, runs all computations on the same
// snapshot, and writes the selected artifacts. Artifact writes run
// concurrently; any write failure propagates.
func (w *workflow) Report(ctx context.Context, args ReportArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := w.Now()

	records, err := w.store.QuerySince(now.AddDate(0, 0, -args.WindowDays))
	if err != nil {
		return err
	}

	report := BuildReport(
		records,
		Trend(records),
		FlakyTests(records, args.FlakyMinExecutions),
		FailurePatterns(records, args.TopFailingLimit),
		args.Environment,
		args.WindowDays,
		args.RecentResultsLimit,
		now,
	)

	if err := os.MkdirAll(args.OutputDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", args.OutputDir, err)
	}

	stamp := now.Format("20060102_150405")

	var paths []string
	group, _ := errgroup.WithContext(ctx)

	if args.Format == FormatJSON || args.Format == FormatAll {
		path := filepath.Join(args.OutputDir, fmt.Sprintf("test_report_%s.json", stamp))
		paths = append(paths, path)
		group.Go(func() error {
			return w.artifacts.WriteJSON(report, path)
		})
	}

	if args.Format == FormatHTML || args.Format == FormatAll {
		path := filepath.Join(args.OutputDir, fmt.Sprintf("test_report_%s.html", stamp))
		paths = append(paths, path)
		group.Go(func() error {
			return w.artifacts.WriteHTML(report, path)
		})
	}

	if len(paths) == 0 {
		return fmt.Errorf("unknown report format %q", args.Format)
	}

	if err := group.Wait(); err != nil {
		return err
	}

	w.logger.Info("report generation complete", "window_days", args.WindowDays, "records", len(records))

	return w.ui.DisplayArtifacts(paths)
}

// Summary queries the window and renders the analytics to the terminal.
func (w *workflow) Summary(ctx context.Context, args SummaryArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	records, err := w.store.QuerySince(w.Now().AddDate(0, 0, -args.WindowDays))
	if err != nil {
		return err
	}

	if err := w.ui.DisplaySummary(m.SummarizeWindow(records, args.Environment)); err != nil {
		return err
	}

	if err := w.ui.DisplayFlakyTests(FlakyTests(records, args.FlakyMinExecutions)); err != nil {
		return err
	}

	if err := w.ui.DisplayFailurePatterns(FailurePatterns(records, args.TopFailingLimit)); err != nil {
		return err
	}

	return w.ui.DisplayTrends(Trend(records))
}

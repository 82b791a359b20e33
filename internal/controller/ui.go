// Package controller provides output adapters for displaying analytics results.
package controller

import (
	m "testpulse/internal/model"
)

// IngestTotals summarizes one ingestion run for display.
type IngestTotals struct {
	Files   int
	Skipped int
	Cases   int
	Suites  int
}

// UI defines the interface for presenting ingestion and report output.
type UI interface {
	DisplayIngestTotals(totals IngestTotals) error
	DisplaySummary(summary m.ExecutionSummary) error
	DisplayFlakyTests(flaky []m.FlakyTest) error
	DisplayFailurePatterns(patterns m.FailurePatterns) error
	DisplayTrends(trends m.TrendAnalysis) error
	DisplayArtifacts(paths []string) error
}

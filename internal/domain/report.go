package domain

import (
	"time"

	m "testpulse/internal/model"
)

// ToolVersion is stamped into report metadata.
const ToolVersion = "1.0.0"

// BuildReport assembles the report document from one window snapshot and its
// analytics outputs. It is deterministic given identical inputs apart from
// the embedded generation timestamp.
func BuildReport(
	records []m.TestCaseResult,
	trends m.TrendAnalysis,
	flaky []m.FlakyTest,
	patterns m.FailurePatterns,
	environment string,
	windowDays int,
	recentLimit int,
	generatedAt time.Time,
) m.Report {
	summary := m.ReportSummary{TotalTests: len(records)}

	for _, record := range records {
		summary.TotalDuration += record.Duration

		switch record.Status {
		case m.StatusPassed:
			summary.PassedTests++
		case m.StatusFailed:
			summary.FailedTests++
		case m.StatusSkipped:
			summary.SkippedTests++
		}
	}

	summary.SuccessRate = m.SuccessRate(summary.PassedTests, summary.TotalTests)
	if summary.TotalTests > 0 {
		summary.AverageDuration = summary.TotalDuration / float64(summary.TotalTests)
	}

	// Records arrive newest first; cap the raw tail to bound artifact size.
	recent := records
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	return m.Report{
		Metadata: m.ReportMetadata{
			GeneratedAt:      generatedAt,
			Environment:      environment,
			ReportPeriodDays: windowDays,
			ToolVersion:      ToolVersion,
		},
		Summary: summary,
		Trends:  trends,
		QualityInsights: m.QualityInsights{
			FlakyTests:      flaky,
			FailurePatterns: patterns,
		},
		RecentResults: recent,
	}
}

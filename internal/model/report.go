package model

import "time"

// DailyStats holds per-day aggregates used by trend analysis.
type DailyStats struct {
	Total       int     `json:"total"`
	Passed      int     `json:"passed"`
	Failed      int     `json:"failed"`
	Duration    float64 `json:"duration"`
	SuccessRate float64 `json:"success_rate"`
	AvgDuration float64 `json:"avg_duration"`
}

// TrendAnalysis is the output of the trend computation. NoData distinguishes
// an empty window from a true zero-valued series.
type TrendAnalysis struct {
	NoData             bool                  `json:"no_data,omitempty"`
	DailyStats         map[string]DailyStats `json:"daily_stats"`
	SuccessRateTrend   float64               `json:"success_rate_trend"`
	DurationTrend      float64               `json:"duration_trend"`
	AverageSuccessRate float64               `json:"average_success_rate"`
	AverageDuration    float64               `json:"average_duration"`
}

// FlakyTest describes a test that both passed and failed within the window.
type FlakyTest struct {
	TestName        string  `json:"test_name"`
	TotalExecutions int     `json:"total_executions"`
	PassedCount     int     `json:"passed_count"`
	FailedCount     int     `json:"failed_count"`
	FlakyScore      float64 `json:"flaky_score"`
}

// TopFailingTest describes one of the most frequently failing tests.
type TopFailingTest struct {
	TestName     string `json:"test_name"`
	FailureCount int    `json:"failure_count"`
	LatestError  string `json:"latest_error"`
}

// FailurePatterns is the output of the failure-pattern computation.
type FailurePatterns struct {
	TotalFailures     int              `json:"total_failures"`
	ErrorTypes        map[string]int   `json:"error_type_distribution"`
	ComponentFailures map[string]int   `json:"component_failure_distribution"`
	TopFailingTests   []TopFailingTest `json:"top_failing_tests"`
}

// ReportMetadata identifies one report generation.
type ReportMetadata struct {
	GeneratedAt      time.Time `json:"generated_at"`
	Environment      string    `json:"environment"`
	ReportPeriodDays int       `json:"report_period_days"`
	ToolVersion      string    `json:"tool_version"`
}

// ReportSummary is the zero-guarded summary block of a report.
type ReportSummary struct {
	TotalTests      int     `json:"total_tests"`
	PassedTests     int     `json:"passed_tests"`
	FailedTests     int     `json:"failed_tests"`
	SkippedTests    int     `json:"skipped_tests"`
	SuccessRate     float64 `json:"success_rate"`
	TotalDuration   float64 `json:"total_duration"`
	AverageDuration float64 `json:"average_duration"`
}

// QualityInsights groups the analytics outputs in the report schema.
type QualityInsights struct {
	FlakyTests      []FlakyTest     `json:"flaky_tests"`
	FailurePatterns FailurePatterns `json:"failure_patterns"`
}

// Report is the machine-readable report artifact.
type Report struct {
	Metadata        ReportMetadata   `json:"metadata"`
	Summary         ReportSummary    `json:"summary"`
	Trends          TrendAnalysis    `json:"trends"`
	QualityInsights QualityInsights  `json:"quality_insights"`
	RecentResults   []TestCaseResult `json:"recent_results"`
}

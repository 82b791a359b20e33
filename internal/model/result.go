// Package model defines shared data types for testpulse.
package model

import "time"

// Status represents the outcome of a single test execution.
type Status string

const (
	// StatusPassed indicates the test completed successfully.
	StatusPassed Status = "PASSED"
	// StatusFailed indicates the test failed or errored.
	StatusFailed Status = "FAILED"
	// StatusSkipped indicates the test was not executed.
	StatusSkipped Status = "SKIPPED"
)

// ErrorTypeSkipped is the synthetic error kind applied to skipped cases.
const ErrorTypeSkipped = "Skipped"

// TestCaseResult is one executed test case. It is created once by a parser,
// appended to the store, and never mutated afterwards.
type TestCaseResult struct {
	TestName     string    `json:"test_name"`
	TestSuite    string    `json:"test_suite"`
	Status       Status    `json:"status"`
	Duration     float64   `json:"duration"`
	Timestamp    time.Time `json:"timestamp"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ErrorType    string    `json:"error_type,omitempty"`
	TestFile     string    `json:"test_file,omitempty"`
	Environment  string    `json:"environment,omitempty"`
	Component    string    `json:"component,omitempty"`
}

// SuiteResult aggregates one suite execution.
type SuiteResult struct {
	SuiteName    string    `json:"suite_name"`
	TotalTests   int       `json:"total_tests"`
	PassedTests  int       `json:"passed_tests"`
	FailedTests  int       `json:"failed_tests"`
	SkippedTests int       `json:"skipped_tests"`
	Duration     float64   `json:"duration"`
	SuccessRate  float64   `json:"success_rate"`
	Timestamp    time.Time `json:"timestamp"`
	Environment  string    `json:"environment"`
}

// ExecutionSummary aggregates a whole reporting window. It is computed on
// demand from case records and is not persisted.
type ExecutionSummary struct {
	TotalTests         int       `json:"total_tests"`
	TotalSuites        int       `json:"total_suites"`
	PassedTests        int       `json:"passed_tests"`
	FailedTests        int       `json:"failed_tests"`
	SkippedTests       int       `json:"skipped_tests"`
	TotalDuration      float64   `json:"total_duration"`
	OverallSuccessRate float64   `json:"overall_success_rate"`
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	Environment        string    `json:"environment"`
	PipelineID         string    `json:"pipeline_id,omitempty"`
	CommitSHA          string    `json:"commit_sha,omitempty"`
}

// SuccessRate returns passed/total*100, guarding the zero denominator.
func SuccessRate(passed, total int) float64 {
	if total == 0 {
		return 0
	}

	return float64(passed) / float64(total) * 100
}

// SummarizeWindow computes an ExecutionSummary over a window of case records.
func SummarizeWindow(records []TestCaseResult, environment string) ExecutionSummary {
	summary := ExecutionSummary{Environment: environment}
	suites := make(map[string]struct{})

	for _, record := range records {
		summary.TotalTests++
		summary.TotalDuration += record.Duration
		suites[record.TestSuite] = struct{}{}

		switch record.Status {
		case StatusPassed:
			summary.PassedTests++
		case StatusFailed:
			summary.FailedTests++
		case StatusSkipped:
			summary.SkippedTests++
		}

		if summary.StartTime.IsZero() || record.Timestamp.Before(summary.StartTime) {
			summary.StartTime = record.Timestamp
		}

		if record.Timestamp.After(summary.EndTime) {
			summary.EndTime = record.Timestamp
		}
	}

	summary.TotalSuites = len(suites)
	summary.OverallSuccessRate = SuccessRate(summary.PassedTests, summary.TotalTests)

	return summary
}

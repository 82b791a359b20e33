package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessRate(t *testing.T) {
	assert.InDelta(t, 66.666, SuccessRate(2, 3), 0.01)
	assert.Equal(t, 100.0, SuccessRate(5, 5))
	assert.Equal(t, 0.0, SuccessRate(0, 0))
	assert.Equal(t, 0.0, SuccessRate(0, 7))
}

func TestSummarizeWindow(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	records := []TestCaseResult{
		{TestName: "TestA", TestSuite: "auth", Status: StatusPassed, Duration: 1.0, Timestamp: base},
		{TestName: "TestB", TestSuite: "auth", Status: StatusFailed, Duration: 2.0, Timestamp: base.Add(time.Hour)},
		{TestName: "TestC", TestSuite: "billing", Status: StatusSkipped, Duration: 0.0, Timestamp: base.Add(-time.Hour)},
		{TestName: "TestD", TestSuite: "billing", Status: StatusPassed, Duration: 0.5, Timestamp: base},
	}

	summary := SummarizeWindow(records, "staging")

	require.Equal(t, 4, summary.TotalTests)
	assert.Equal(t, 2, summary.TotalSuites)
	assert.Equal(t, 2, summary.PassedTests)
	assert.Equal(t, 1, summary.FailedTests)
	assert.Equal(t, 1, summary.SkippedTests)
	assert.InDelta(t, 3.5, summary.TotalDuration, 1e-9)
	assert.InDelta(t, 50.0, summary.OverallSuccessRate, 1e-9)
	assert.Equal(t, base.Add(-time.Hour), summary.StartTime)
	assert.Equal(t, base.Add(time.Hour), summary.EndTime)
	assert.Equal(t, "staging", summary.Environment)
}

func TestSummarizeWindowEmpty(t *testing.T) {
	summary := SummarizeWindow(nil, "ci")

	assert.Equal(t, 0, summary.TotalTests)
	assert.Equal(t, 0.0, summary.OverallSuccessRate)
	assert.True(t, summary.StartTime.IsZero())
	assert.True(t, summary.EndTime.IsZero())
}

package domain

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testpulse/internal/adapter"
	m "testpulse/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func caseAt(name string, status m.Status, duration float64, ts time.Time) m.TestCaseResult {
	result := m.TestCaseResult{
		TestName:  name,
		TestSuite: "suite",
		Status:    status,
		Duration:  duration,
		Timestamp: ts,
	}

	if status == m.StatusFailed {
		result.ErrorMessage = "assertion failed"
		result.ErrorType = "AssertionError"
	}

	return result
}

func day(offset int) time.Time {
	return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestTrendSlopeExactness(t *testing.T) {
	// Success rates 50, 60, 70, 80, 90 across five days: slope must be 10.
	var records []m.TestCaseResult
	for i := 0; i < 5; i++ {
		passed := 5 + i
		for j := 0; j < passed; j++ {
			records = append(records, caseAt("TestA", m.StatusPassed, 1, day(i)))
		}
		for j := 0; j < 10-passed; j++ {
			records = append(records, caseAt("TestA", m.StatusFailed, 1, day(i)))
		}
	}

	trends := Trend(records)

	require.False(t, trends.NoData)
	require.Len(t, trends.DailyStats, 5)
	assert.InDelta(t, 10.0, trends.SuccessRateTrend, 1e-9)
	assert.InDelta(t, 0.0, trends.DurationTrend, 1e-9)
	assert.InDelta(t, 70.0, trends.AverageSuccessRate, 1e-9)
	assert.InDelta(t, 1.0, trends.AverageDuration, 1e-9)
}

func TestTrendDurationSlope(t *testing.T) {
	// Average durations 3.0, 2.0, 1.0: slope must be -1.
	var records []m.TestCaseResult
	for i := 0; i < 3; i++ {
		records = append(records, caseAt("TestA", m.StatusPassed, float64(3-i), day(i)))
	}

	trends := Trend(records)

	assert.InDelta(t, -1.0, trends.DurationTrend, 1e-9)
	assert.InDelta(t, 2.0, trends.AverageDuration, 1e-9)
	assert.InDelta(t, 100.0, trends.AverageSuccessRate, 1e-9)
}

func TestTrendSingleDayHasNoSlope(t *testing.T) {
	records := []m.TestCaseResult{
		caseAt("TestA", m.StatusPassed, 1, day(0)),
		caseAt("TestB", m.StatusFailed, 2, day(0)),
	}

	trends := Trend(records)

	assert.Equal(t, 0.0, trends.SuccessRateTrend)
	assert.Equal(t, 0.0, trends.DurationTrend)
	assert.InDelta(t, 50.0, trends.AverageSuccessRate, 1e-9)
}

func TestTrendEmptyWindowReturnsNoData(t *testing.T) {
	trends := Trend(nil)

	assert.True(t, trends.NoData)
	assert.Empty(t, trends.DailyStats)
	assert.Equal(t, 0.0, trends.SuccessRateTrend)
	assert.Equal(t, 0.0, trends.AverageSuccessRate)
}

func TestTrendDailyStatsPerDayValues(t *testing.T) {
	records := []m.TestCaseResult{
		caseAt("TestA", m.StatusPassed, 2, day(0)),
		caseAt("TestB", m.StatusFailed, 4, day(0)),
		caseAt("TestC", m.StatusSkipped, 0, day(0)),
	}

	trends := Trend(records)

	stats, ok := trends.DailyStats["2026-03-01"]
	require.True(t, ok)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Passed)
	assert.Equal(t, 1, stats.Failed)
	assert.InDelta(t, 6.0, stats.Duration, 1e-9)
	assert.InDelta(t, 33.33, stats.SuccessRate, 0.01)
	assert.InDelta(t, 2.0, stats.AvgDuration, 1e-9)
}

func TestFlakyTestsScenario(t *testing.T) {
	// 6 executions, 4 passed, 2 failed, min 5: qualifies with score 33.33.
	var records []m.TestCaseResult
	for i := 0; i < 4; i++ {
		records = append(records, caseAt("TestRetry", m.StatusPassed, 1, day(i%3)))
	}
	for i := 0; i < 2; i++ {
		records = append(records, caseAt("TestRetry", m.StatusFailed, 1, day(i)))
	}

	flaky := FlakyTests(records, 5)

	require.Len(t, flaky, 1)
	assert.Equal(t, "TestRetry", flaky[0].TestName)
	assert.Equal(t, 6, flaky[0].TotalExecutions)
	assert.Equal(t, 4, flaky[0].PassedCount)
	assert.Equal(t, 2, flaky[0].FailedCount)
	assert.InDelta(t, 33.33, flaky[0].FlakyScore, 0.01)
}

func TestFlakyTestsQualification(t *testing.T) {
	var records []m.TestCaseResult

	// Uniformly passing: not flaky.
	for i := 0; i < 10; i++ {
		records = append(records, caseAt("TestAlwaysPass", m.StatusPassed, 1, day(0)))
	}
	// Uniformly failing: not flaky.
	for i := 0; i < 10; i++ {
		records = append(records, caseAt("TestAlwaysFail", m.StatusFailed, 1, day(0)))
	}
	// Mixed but below the execution threshold.
	records = append(records,
		caseAt("TestRare", m.StatusPassed, 1, day(0)),
		caseAt("TestRare", m.StatusFailed, 1, day(0)),
	)

	assert.Empty(t, FlakyTests(records, 5))
}

func TestFlakyScoreBounds(t *testing.T) {
	scenarios := []struct {
		passed, failed int
	}{
		{1, 9}, {9, 1}, {5, 5}, {2, 4}, {49, 51},
	}

	for _, scenario := range scenarios {
		var records []m.TestCaseResult
		for i := 0; i < scenario.passed; i++ {
			records = append(records, caseAt("TestX", m.StatusPassed, 1, day(0)))
		}
		for i := 0; i < scenario.failed; i++ {
			records = append(records, caseAt("TestX", m.StatusFailed, 1, day(0)))
		}

		flaky := FlakyTests(records, 2)
		require.Len(t, flaky, 1)
		assert.Greater(t, flaky[0].FlakyScore, 0.0)
		assert.LessOrEqual(t, flaky[0].FlakyScore, 50.0)
	}
}

func TestFlakyTestsRankedByScore(t *testing.T) {
	var records []m.TestCaseResult

	// TestEven: 3/3 split, score 50.
	for i := 0; i < 3; i++ {
		records = append(records,
			caseAt("TestSkewed", m.StatusPassed, 1, day(0)),
			caseAt("TestEven", m.StatusPassed, 1, day(0)),
			caseAt("TestEven", m.StatusFailed, 1, day(0)),
		)
	}
	// TestSkewed: 3 passed above plus 3 more passed and 1 failed, score 1/7.
	records = append(records,
		caseAt("TestSkewed", m.StatusPassed, 1, day(0)),
		caseAt("TestSkewed", m.StatusPassed, 1, day(0)),
		caseAt("TestSkewed", m.StatusPassed, 1, day(0)),
		caseAt("TestSkewed", m.StatusFailed, 1, day(0)),
	)

	flaky := FlakyTests(records, 5)

	require.Len(t, flaky, 2)
	assert.Equal(t, "TestEven", flaky[0].TestName)
	assert.InDelta(t, 50.0, flaky[0].FlakyScore, 1e-9)
	assert.Equal(t, "TestSkewed", flaky[1].TestName)
}

func TestFailurePatterns(t *testing.T) {
	records := []m.TestCaseResult{
		caseAt("TestA", m.StatusPassed, 1, day(2)),
		{TestName: "TestB", Status: m.StatusFailed, Timestamp: day(2), ErrorMessage: "newest b", ErrorType: "Timeout", Component: "kafka"},
		{TestName: "TestB", Status: m.StatusFailed, Timestamp: day(1), ErrorMessage: "older b", ErrorType: "Timeout", Component: "kafka"},
		{TestName: "TestC", Status: m.StatusFailed, Timestamp: day(1), ErrorMessage: "c failed"},
		caseAt("TestD", m.StatusSkipped, 1, day(1)),
	}

	patterns := FailurePatterns(records, 10)

	assert.Equal(t, 3, patterns.TotalFailures)
	assert.Equal(t, map[string]int{"Timeout": 2, "Unknown": 1}, patterns.ErrorTypes)
	assert.Equal(t, map[string]int{"kafka": 2, "Unknown": 1}, patterns.ComponentFailures)

	require.Len(t, patterns.TopFailingTests, 2)
	assert.Equal(t, "TestB", patterns.TopFailingTests[0].TestName)
	assert.Equal(t, 2, patterns.TopFailingTests[0].FailureCount)
	// Records arrive newest first, so the retained message is the newest.
	assert.Equal(t, "newest b", patterns.TopFailingTests[0].LatestError)
	assert.Equal(t, "TestC", patterns.TopFailingTests[1].TestName)
}

func TestFailurePatternsTruncatesTopList(t *testing.T) {
	var records []m.TestCaseResult
	names := []string{"T1", "T2", "T3", "T4"}
	for i, name := range names {
		for j := 0; j <= i; j++ {
			records = append(records, m.TestCaseResult{TestName: name, Status: m.StatusFailed, Timestamp: day(0)})
		}
	}

	patterns := FailurePatterns(records, 2)

	require.Len(t, patterns.TopFailingTests, 2)
	assert.Equal(t, "T4", patterns.TopFailingTests[0].TestName)
	assert.Equal(t, 4, patterns.TopFailingTests[0].FailureCount)
	assert.Equal(t, "T3", patterns.TopFailingTests[1].TestName)
}

func TestFailurePatternsEmpty(t *testing.T) {
	patterns := FailurePatterns(nil, 10)

	assert.Equal(t, 0, patterns.TotalFailures)
	assert.Empty(t, patterns.ErrorTypes)
	assert.Empty(t, patterns.ComponentFailures)
	assert.Empty(t, patterns.TopFailingTests)
}

func TestAnalyticsWindowing(t *testing.T) {
	store := adapter.NewMemoryStore()
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(caseAt("TestInside", m.StatusFailed, 1, now.AddDate(0, 0, -3))))
	require.NoError(t, store.Append(caseAt("TestOutside", m.StatusFailed, 1, now.AddDate(0, 0, -40))))

	analytics := NewAnalytics(store, discardLogger())
	analytics.Now = func() time.Time { return now }

	patterns, err := analytics.AnalyzeFailurePatterns(30, 10)
	require.NoError(t, err)
	require.Len(t, patterns.TopFailingTests, 1)
	assert.Equal(t, "TestInside", patterns.TopFailingTests[0].TestName)

	trends, err := analytics.TrendAnalysis(30)
	require.NoError(t, err)
	assert.False(t, trends.NoData)

	flaky, err := analytics.IdentifyFlakyTests(30, 5)
	require.NoError(t, err)
	assert.Empty(t, flaky)
}

func TestAnalyticsEmptyWindow(t *testing.T) {
	analytics := NewAnalytics(adapter.NewMemoryStore(), discardLogger())

	trends, err := analytics.TrendAnalysis(30)
	require.NoError(t, err)
	assert.True(t, trends.NoData)

	flaky, err := analytics.IdentifyFlakyTests(30, 5)
	require.NoError(t, err)
	assert.Empty(t, flaky)

	patterns, err := analytics.AnalyzeFailurePatterns(30, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, patterns.TotalFailures)
	assert.Empty(t, patterns.TopFailingTests)
}

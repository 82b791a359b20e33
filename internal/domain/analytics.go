// Package domain holds the analytics computations and workflows of testpulse.
package domain

import (
	"log/slog"
	"sort"
	"time"

	"testpulse/internal/adapter"
	m "testpulse/internal/model"
)

const dayKeyLayout = "2006-01-02"

// unknownLabel is the sentinel for absent categorical fields.
const unknownLabel = "Unknown"

// Analytics runs read-only computations over a trailing window of stored
// records. It holds no state of its own.
type Analytics struct {
	store  adapter.ResultStore
	logger *slog.Logger

	// Now anchors the window cutoff, overridable in tests.
	Now func() time.Time
}

// NewAnalytics creates an Analytics engine bound to a store.
func NewAnalytics(store adapter.ResultStore, logger *slog.Logger) *Analytics {
	return &Analytics{store: store, logger: logger, Now: time.Now}
}

func (a *Analytics) windowRecords(days int) ([]m.TestCaseResult, error) {
	cutoff := a.Now().AddDate(0, 0, -days)

	return a.store.QuerySince(cutoff)
}

// TrendAnalysis computes execution trends over the last days.
func (a *Analytics) TrendAnalysis(days int) (m.TrendAnalysis, error) {
	records, err := a.windowRecords(days)
	if err != nil {
		return m.TrendAnalysis{}, err
	}

	return Trend(records), nil
}

// IdentifyFlakyTests ranks tests with inconsistent results over the window.
func (a *Analytics) IdentifyFlakyTests(days, minExecutions int) ([]m.FlakyTest, error) {
	records, err := a.windowRecords(days)
	if err != nil {
		return nil, err
	}

	return FlakyTests(records, minExecutions), nil
}

// AnalyzeFailurePatterns categorizes failures over the window.
func (a *Analytics) AnalyzeFailurePatterns(days, topLimit int) (m.FailurePatterns, error) {
	records, err := a.windowRecords(days)
	if err != nil {
		return m.FailurePatterns{}, err
	}

	return FailurePatterns(records, topLimit), nil
}

// Trend groups records by calendar date and fits a least-squares line to the
// per-day success rate and average duration series. An empty input is not an
// error; it is reported through the NoData marker.
func Trend(records []m.TestCaseResult) m.TrendAnalysis {
	if len(records) == 0 {
		return m.TrendAnalysis{NoData: true, DailyStats: map[string]m.DailyStats{}}
	}

	daily := make(map[string]m.DailyStats)
	for _, record := range records {
		day := record.Timestamp.Format(dayKeyLayout)

		stats := daily[day]
		stats.Total++
		stats.Duration += record.Duration

		switch record.Status {
		case m.StatusPassed:
			stats.Passed++
		case m.StatusFailed:
			stats.Failed++
		}

		daily[day] = stats
	}

	days := make([]string, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Strings(days)

	successRates := make([]float64, 0, len(days))
	avgDurations := make([]float64, 0, len(days))

	for _, day := range days {
		stats := daily[day]
		stats.SuccessRate = m.SuccessRate(stats.Passed, stats.Total)
		if stats.Total > 0 {
			stats.AvgDuration = stats.Duration / float64(stats.Total)
		}
		daily[day] = stats

		successRates = append(successRates, stats.SuccessRate)
		avgDurations = append(avgDurations, stats.AvgDuration)
	}

	return m.TrendAnalysis{
		DailyStats:         daily,
		SuccessRateTrend:   linearSlope(successRates),
		DurationTrend:      linearSlope(avgDurations),
		AverageSuccessRate: mean(successRates),
		AverageDuration:    mean(avgDurations),
	}
}

// linearSlope fits an ordinary-least-squares line of values against their
// indices 0..n-1 and returns the slope. Fewer than two points has no trend.
func linearSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denominator := float64(n)*sumX2 - sumX*sumX
	if denominator == 0 {
		return 0
	}

	return (float64(n)*sumXY - sumX*sumY) / denominator
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// FlakyTests returns tests that both passed and failed within the window,
// ranked by flaky score. A uniformly passing or failing test is not flaky.
func FlakyTests(records []m.TestCaseResult, minExecutions int) []m.FlakyTest {
	type testStats struct {
		total  int
		passed int
		failed int
	}

	stats := make(map[string]*testStats)
	order := make([]string, 0)

	for _, record := range records {
		entry, ok := stats[record.TestName]
		if !ok {
			entry = &testStats{}
			stats[record.TestName] = entry
			order = append(order, record.TestName)
		}

		entry.total++

		switch record.Status {
		case m.StatusPassed:
			entry.passed++
		case m.StatusFailed:
			entry.failed++
		}
	}

	flaky := make([]m.FlakyTest, 0)
	for _, name := range order {
		entry := stats[name]
		if entry.total < minExecutions || entry.passed == 0 || entry.failed == 0 {
			continue
		}

		score := float64(min(entry.passed, entry.failed)) / float64(entry.total) * 100

		flaky = append(flaky, m.FlakyTest{
			TestName:        name,
			TotalExecutions: entry.total,
			PassedCount:     entry.passed,
			FailedCount:     entry.failed,
			FlakyScore:      score,
		})
	}

	sort.SliceStable(flaky, func(i, j int) bool {
		return flaky[i].FlakyScore > flaky[j].FlakyScore
	})

	return flaky
}

// FailurePatterns categorizes FAILED records by error kind, component, and
// most frequently failing test. Records are expected newest first, so the
// first error message seen per test is the most recent one.
func FailurePatterns(records []m.TestCaseResult, topLimit int) m.FailurePatterns {
	patterns := m.FailurePatterns{
		ErrorTypes:        make(map[string]int),
		ComponentFailures: make(map[string]int),
		TopFailingTests:   []m.TopFailingTest{},
	}

	type failureStats struct {
		count       int
		latestError string
	}

	perTest := make(map[string]*failureStats)
	order := make([]string, 0)

	for _, record := range records {
		if record.Status != m.StatusFailed {
			continue
		}

		patterns.TotalFailures++

		errorType := record.ErrorType
		if errorType == "" {
			errorType = unknownLabel
		}
		patterns.ErrorTypes[errorType]++

		component := record.Component
		if component == "" {
			component = unknownLabel
		}
		patterns.ComponentFailures[component]++

		entry, ok := perTest[record.TestName]
		if !ok {
			entry = &failureStats{latestError: record.ErrorMessage}
			perTest[record.TestName] = entry
			order = append(order, record.TestName)
		}
		entry.count++
	}

	top := make([]m.TopFailingTest, 0, len(order))
	for _, name := range order {
		entry := perTest[name]
		top = append(top, m.TopFailingTest{
			TestName:     name,
			FailureCount: entry.count,
			LatestError:  entry.latestError,
		})
	}

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].FailureCount > top[j].FailureCount
	})

	if len(top) > topLimit {
		top = top[:topLimit]
	}

	patterns.TopFailingTests = top

	return patterns
}

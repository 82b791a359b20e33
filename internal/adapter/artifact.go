package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"os"

	m "testpulse/internal/model"
)

const artifactFileMode = 0o644

// ArtifactWriter renders report artifacts to disk. Rendering is a pure
// transformation of an already-computed report; a write failure propagates.
type ArtifactWriter struct {
	logger *slog.Logger
}

// NewArtifactWriter creates an ArtifactWriter.
func NewArtifactWriter(logger *slog.Logger) *ArtifactWriter {
	return &ArtifactWriter{logger: logger}
}

// WriteJSON writes the machine-readable report artifact.
func (w *ArtifactWriter) WriteJSON(report m.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := os.WriteFile(path, data, artifactFileMode); err != nil {
		w.logger.Error("failed to write report artifact", "path", path, "error", err)
		return fmt.Errorf("failed to write report artifact: %w", err)
	}

	w.logger.Info("wrote JSON report", "path", path)

	return nil
}

// htmlView is the data context bound to the HTML report template. Qualitative
// labels are resolved here so the template stays declarative.
type htmlView struct {
	Report m.Report

	FlakyTests    []m.FlakyTest
	SuccessTrend  trendNarration
	DurationTrend trendNarration
}

type trendNarration struct {
	Class string
	Text  string
}

const flakyTableLimit = 10

// WriteHTML writes the human-readable report artifact.
func (w *ArtifactWriter) WriteHTML(report m.Report, path string) error {
	view := htmlView{
		Report:        report,
		FlakyTests:    report.QualityInsights.FlakyTests,
		SuccessTrend:  narrateSuccessTrend(report.Trends.SuccessRateTrend),
		DurationTrend: narrateDurationTrend(report.Trends.DurationTrend),
	}
	if len(view.FlakyTests) > flakyTableLimit {
		view.FlakyTests = view.FlakyTests[:flakyTableLimit]
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), artifactFileMode); err != nil {
		w.logger.Error("failed to write report artifact", "path", path, "error", err)
		return fmt.Errorf("failed to write report artifact: %w", err)
	}

	w.logger.Info("wrote HTML report", "path", path)

	return nil
}

// narrateSuccessTrend labels the success-rate slope: positive is improving.
func narrateSuccessTrend(slope float64) trendNarration {
	switch {
	case slope > 0:
		return trendNarration{Class: "success", Text: fmt.Sprintf("Improving (+%.2f%% per day)", slope)}
	case slope < 0:
		return trendNarration{Class: "failure", Text: fmt.Sprintf("Declining (%.2f%% per day)", slope)}
	default:
		return trendNarration{Class: "neutral", Text: "Stable"}
	}
}

// narrateDurationTrend labels the duration slope: negative is improving
// since lower duration is better.
func narrateDurationTrend(slope float64) trendNarration {
	switch {
	case slope < 0:
		return trendNarration{Class: "success", Text: fmt.Sprintf("Faster (%.2fs improvement per day)", -slope)}
	case slope > 0:
		return trendNarration{Class: "warning", Text: fmt.Sprintf("Slower (+%.2fs per day)", slope)}
	default:
		return trendNarration{Class: "neutral", Text: "Stable"}
	}
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Test Execution Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; background-color: #f5f5f5; }
        .header { background-color: #2c3e50; color: white; padding: 20px; border-radius: 5px; }
        .summary-cards { display: flex; gap: 20px; margin: 20px 0; flex-wrap: wrap; }
        .card { background: white; padding: 20px; border-radius: 5px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); flex: 1; min-width: 200px; }
        .card h3 { margin-top: 0; color: #2c3e50; }
        .success { color: #27ae60; }
        .failure { color: #e74c3c; }
        .warning { color: #f39c12; }
        .neutral { color: #2c3e50; }
        .section { background: white; padding: 20px; margin: 20px 0; border-radius: 5px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .table { width: 100%; border-collapse: collapse; margin: 20px 0; }
        .table th, .table td { border: 1px solid #ddd; padding: 12px; text-align: left; }
        .table th { background-color: #34495e; color: white; }
        .table tr:nth-child(even) { background-color: #f9f9f9; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Test Execution Report</h1>
        <p>Generated on {{.Report.Metadata.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>
        <p>Environment: {{.Report.Metadata.Environment}} | Window: {{.Report.Metadata.ReportPeriodDays}} days</p>
    </div>

    <div class="summary-cards">
        <div class="card">
            <h3>Total Tests</h3>
            <h2>{{.Report.Summary.TotalTests}}</h2>
        </div>
        <div class="card">
            <h3>Success Rate</h3>
            <h2 class="success">{{printf "%.1f" .Report.Summary.SuccessRate}}%</h2>
        </div>
        <div class="card">
            <h3>Failed Tests</h3>
            <h2 class="failure">{{.Report.Summary.FailedTests}}</h2>
        </div>
        <div class="card">
            <h3>Average Duration</h3>
            <h2>{{printf "%.2f" .Report.Summary.AverageDuration}}s</h2>
        </div>
    </div>

    <div class="section">
        <h2>Status Distribution</h2>
        <table class="table">
            <thead><tr><th>Status</th><th>Count</th></tr></thead>
            <tbody>
                <tr><td class="success">PASSED</td><td>{{.Report.Summary.PassedTests}}</td></tr>
                <tr><td class="failure">FAILED</td><td>{{.Report.Summary.FailedTests}}</td></tr>
                <tr><td class="warning">SKIPPED</td><td>{{.Report.Summary.SkippedTests}}</td></tr>
            </tbody>
        </table>
    </div>

    <div class="section">
        <h2>Test Analytics</h2>

        <h3>Flaky Tests ({{len .FlakyTests}})</h3>
        {{if .FlakyTests}}
        <table class="table">
            <thead>
                <tr><th>Test Name</th><th>Executions</th><th>Passed</th><th>Failed</th><th>Flaky Score</th></tr>
            </thead>
            <tbody>
                {{range .FlakyTests}}
                <tr>
                    <td>{{.TestName}}</td>
                    <td>{{.TotalExecutions}}</td>
                    <td class="success">{{.PassedCount}}</td>
                    <td class="failure">{{.FailedCount}}</td>
                    <td class="warning">{{printf "%.1f" .FlakyScore}}%</td>
                </tr>
                {{end}}
            </tbody>
        </table>
        {{else}}
        <p>No flaky tests detected.</p>
        {{end}}

        <h3>Top Failing Tests</h3>
        {{if .Report.QualityInsights.FailurePatterns.TopFailingTests}}
        <table class="table">
            <thead>
                <tr><th>Test Name</th><th>Failure Count</th><th>Latest Error</th></tr>
            </thead>
            <tbody>
                {{range .Report.QualityInsights.FailurePatterns.TopFailingTests}}
                <tr>
                    <td>{{.TestName}}</td>
                    <td class="failure">{{.FailureCount}}</td>
                    <td>{{.LatestError}}</td>
                </tr>
                {{end}}
            </tbody>
        </table>
        {{else}}
        <p>No failures recorded in this window.</p>
        {{end}}
    </div>

    <div class="section">
        <h2>Trends &amp; Insights</h2>
        <p><strong>Success Rate Trend:</strong> <span class="{{.SuccessTrend.Class}}">{{.SuccessTrend.Text}}</span></p>
        <p><strong>Duration Trend:</strong> <span class="{{.DurationTrend.Class}}">{{.DurationTrend.Text}}</span></p>
    </div>

    <footer style="text-align: center; margin-top: 40px; color: #7f8c8d;">
        <p>Generated by testpulse {{.Report.Metadata.ToolVersion}}</p>
    </footer>
</body>
</html>
`))

package controller

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "testpulse/internal/model"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Console implements UI using the cobra command's output stream.
type Console struct {
	cmd *cobra.Command
}

// NewConsole creates a new Console.
func NewConsole(cmd *cobra.Command) *Console {
	return &Console{cmd: cmd}
}

// DisplayIngestTotals prints the counts of one ingestion run.
func (c *Console) DisplayIngestTotals(totals IngestTotals) error {
	if err := c.printf("Ingested %d case(s) from %d suite(s) across %d file(s)\n",
		totals.Cases, totals.Suites, totals.Files); err != nil {
		return err
	}

	if totals.Skipped > 0 {
		return c.printf("%s\n", warnStyle.Render(fmt.Sprintf("Skipped %d unparsable file(s)", totals.Skipped)))
	}

	return nil
}

// DisplaySummary prints the execution summary and status distribution.
func (c *Console) DisplaySummary(summary m.ExecutionSummary) error {
	if err := c.printf("\n%s\n", headingStyle.Render("Execution Summary")); err != nil {
		return err
	}

	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Status", "Count"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})
	table.Append([]string{passStyle.Render("PASSED"), fmt.Sprintf("%d", summary.PassedTests)})
	table.Append([]string{failStyle.Render("FAILED"), fmt.Sprintf("%d", summary.FailedTests)})
	table.Append([]string{warnStyle.Render("SKIPPED"), fmt.Sprintf("%d", summary.SkippedTests)})
	table.SetFooter([]string{
		fmt.Sprintf("Total %d", summary.TotalTests),
		fmt.Sprintf("%.1f%%", summary.OverallSuccessRate),
	})
	table.Render()

	if err := c.printf("%s", buf.String()); err != nil {
		return err
	}

	return c.printf("Suites: %d | Total duration: %.2fs | Environment: %s\n",
		summary.TotalSuites, summary.TotalDuration, summary.Environment)
}

// DisplayFlakyTests prints the flaky test ranking, capped to the top ten.
func (c *Console) DisplayFlakyTests(flaky []m.FlakyTest) error {
	if err := c.printf("\n%s\n", headingStyle.Render(fmt.Sprintf("Flaky Tests (%d)", len(flaky)))); err != nil {
		return err
	}

	if len(flaky) == 0 {
		return c.printf("%s\n", passStyle.Render("No flaky tests detected."))
	}

	if len(flaky) > 10 {
		flaky = flaky[:10]
	}

	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Test", "Executions", "Passed", "Failed", "Score"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, test := range flaky {
		table.Append([]string{
			test.TestName,
			fmt.Sprintf("%d", test.TotalExecutions),
			passStyle.Render(fmt.Sprintf("%d", test.PassedCount)),
			failStyle.Render(fmt.Sprintf("%d", test.FailedCount)),
			warnStyle.Render(fmt.Sprintf("%.1f%%", test.FlakyScore)),
		})
	}

	table.Render()

	return c.printf("%s", buf.String())
}

// DisplayFailurePatterns prints the failure breakdown and top failing tests.
func (c *Console) DisplayFailurePatterns(patterns m.FailurePatterns) error {
	if err := c.printf("\n%s\n", headingStyle.Render(fmt.Sprintf("Failures (%d)", patterns.TotalFailures))); err != nil {
		return err
	}

	if patterns.TotalFailures == 0 {
		return c.printf("%s\n", passStyle.Render("No failures recorded in this window."))
	}

	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Test", "Failures", "Latest Error"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, test := range patterns.TopFailingTests {
		table.Append([]string{
			test.TestName,
			failStyle.Render(fmt.Sprintf("%d", test.FailureCount)),
			truncate(test.LatestError, 80),
		})
	}

	table.Render()

	return c.printf("%s", buf.String())
}

// DisplayTrends prints the qualitative trend narration.
func (c *Console) DisplayTrends(trends m.TrendAnalysis) error {
	if err := c.printf("\n%s\n", headingStyle.Render("Trends")); err != nil {
		return err
	}

	if trends.NoData {
		return c.printf("No data in the selected window.\n")
	}

	var successLine string
	switch {
	case trends.SuccessRateTrend > 0:
		successLine = passStyle.Render(fmt.Sprintf("Improving (+%.2f%% per day)", trends.SuccessRateTrend))
	case trends.SuccessRateTrend < 0:
		successLine = failStyle.Render(fmt.Sprintf("Declining (%.2f%% per day)", trends.SuccessRateTrend))
	default:
		successLine = "Stable"
	}

	var durationLine string
	switch {
	case trends.DurationTrend < 0:
		durationLine = passStyle.Render(fmt.Sprintf("Faster (%.2fs improvement per day)", -trends.DurationTrend))
	case trends.DurationTrend > 0:
		durationLine = warnStyle.Render(fmt.Sprintf("Slower (+%.2fs per day)", trends.DurationTrend))
	default:
		durationLine = "Stable"
	}

	if err := c.printf("Success rate: %s\n", successLine); err != nil {
		return err
	}

	return c.printf("Duration: %s (avg %.1f%% success, %.2fs per test)\n",
		durationLine, trends.AverageSuccessRate, trends.AverageDuration)
}

// DisplayArtifacts prints the paths of the written report artifacts.
func (c *Console) DisplayArtifacts(paths []string) error {
	for _, path := range paths {
		if err := c.printf("Report written: %s\n", path); err != nil {
			return err
		}
	}

	return nil
}

func (c *Console) printf(format string, args ...interface{}) error {
	_, err := fmt.Fprintf(c.cmd.OutOrStdout(), format, args...)
	return err
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	return s[:limit] + "..."
}

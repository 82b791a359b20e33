package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"testpulse/internal/domain"
)

var reportDaysFlag int
var reportFormatFlag string

// reportCmd represents the report command.
var reportCmd = newReportCmd()

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate report artifacts from stored results",
		Long: `Query the trailing window of stored results, compute trends, flaky-test
rankings, and failure patterns, then write machine-readable (JSON) and
human-readable (HTML) report artifacts.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			workflow, cfg, closeStore, err := newWorkflow(cmd)
			if err != nil {
				return err
			}

			runErr := workflow.Report(context.Background(), domain.ReportArgs{
				OutputDir:          cfg.OutputDir,
				Format:             cfg.Format,
				WindowDays:         cfg.WindowDays,
				FlakyMinExecutions: cfg.FlakyMinExecutions,
				TopFailingLimit:    cfg.TopFailingLimit,
				RecentResultsLimit: cfg.RecentResultsLimit,
				Environment:        cfg.Environment,
			})
			if closeErr := closeStore(); runErr == nil {
				runErr = closeErr
			}

			return runErr
		},
	}

	configureReportFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func configureReportFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&reportDaysFlag, daysFlagName, "d", viper.GetInt(windowDaysKey), "number of trailing days to analyze")
	bindFlagToConfig(cmd.Flags().Lookup(daysFlagName), windowDaysKey)

	cmd.Flags().StringVarP(&reportFormatFlag, formatFlagName, "f", viper.GetString(formatKey), "report format: json, html, or all")
	bindFlagToConfig(cmd.Flags().Lookup(formatFlagName), formatKey)
}

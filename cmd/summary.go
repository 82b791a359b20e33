package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"testpulse/internal/domain"
)

var summaryDaysFlag int

// summaryCmd represents the summary command.
var summaryCmd = newSummaryCmd()

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show a terminal summary of stored results",
		Long:  "Show counts, status distribution, flaky tests, top failing tests, and trends for the trailing window.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			workflow, cfg, closeStore, err := newWorkflow(cmd)
			if err != nil {
				return err
			}

			runErr := workflow.Summary(context.Background(), domain.SummaryArgs{
				WindowDays:         cfg.WindowDays,
				FlakyMinExecutions: cfg.FlakyMinExecutions,
				TopFailingLimit:    cfg.TopFailingLimit,
				Environment:        cfg.Environment,
			})
			if closeErr := closeStore(); runErr == nil {
				runErr = closeErr
			}

			return runErr
		},
	}

	cmd.Flags().IntVarP(&summaryDaysFlag, daysFlagName, "d", viper.GetInt(windowDaysKey), "number of trailing days to analyze")
	bindFlagToConfig(cmd.Flags().Lookup(daysFlagName), windowDaysKey)

	return cmd
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

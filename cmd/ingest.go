package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"testpulse/internal/domain"
)

// ingestCmd represents the ingest command.
var ingestCmd = newIngestCmd()

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [paths...]",
		Short: "Ingest test result files into the store",
		Long: `Parse JUnit-style XML result files (or collaborator check reports in
YAML) and append every test case record to the result store.

A path may name a single file or a directory. Directories are scanned
recursively; unparsable files inside a directory are skipped, while a
single named file that fails to parse is an error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workflow, _, closeStore, err := newWorkflow(cmd)
			if err != nil {
				return err
			}

			runErr := workflow.Ingest(context.Background(), domain.IngestArgs{Paths: args})
			if closeErr := closeStore(); runErr == nil {
				runErr = closeErr
			}

			return runErr
		},
	}
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

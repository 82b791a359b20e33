// Package cmd provides the root command and CLI setup for testpulse.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"testpulse/internal/adapter"
	"testpulse/internal/controller"
	"testpulse/internal/domain"
)

// storePathFlag is a root-level flag selecting the result store location.
var storePathFlag string

// outputDirFlag is a root-level flag selecting the report output directory.
var outputDirFlag string

// environmentFlag tags ingested records and reports with an environment.
var environmentFlag string

// verboseFlag raises the log level to debug.
var verboseFlag bool

const rootLongDescription = `Testpulse ingests JUnit-style XML test results (and collaborator check
reports in YAML), stores every test case record, and derives longitudinal
insight: success-rate and duration trends, flaky-test rankings, and failure
pattern breakdowns, rendered as JSON and HTML report artifacts.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "testpulse",
		Short: "Test result analytics engine",
		Long:  rootLongDescription,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&storePathFlag, storePathFlagName,
		viper.GetString(storePathKey),
		"path of the embedded result store",
	)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(storePathFlagName), storePathKey)

	cmd.PersistentFlags().StringVarP(
		&outputDirFlag, outputFlagName, "o",
		viper.GetString(outputDirKey),
		"output directory for report artifacts",
	)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputDirKey)

	cmd.PersistentFlags().StringVarP(
		&environmentFlag, environmentFlagName, "e",
		viper.GetString(environmentKey),
		"environment tag applied to ingested records and reports",
	)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(environmentFlagName), environmentKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "enable debug logging")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// newStore opens the durable result store. Tests swap this for the
// in-memory double.
var newStore = func(path string, logger *slog.Logger) (adapter.ResultStore, error) {
	return adapter.NewBadgerStore(path, logger)
}

// newWorkflow assembles the full dependency graph for one invocation. The
// returned closer releases the store; its error matters for durability and
// must not be dropped.
func newWorkflow(cmd *cobra.Command) (domain.Workflow, Config, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, Config{}, nil, err
	}

	logger := newLogger(verboseFlag)

	store, err := newStore(cfg.StorePath, logger)
	if err != nil {
		return nil, Config{}, nil, err
	}

	workflow := domain.NewWorkflow(
		adapter.NewJUnitParser(logger, cfg.Environment),
		adapter.NewCheckParser(logger),
		store,
		adapter.NewArtifactWriter(logger),
		controller.NewConsole(cmd),
		logger,
	)

	return workflow, cfg, store.Close, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

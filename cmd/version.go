package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"

	"testpulse/internal/domain"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long:  "Displays the tool version and the Go version used to build it.",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("testpulse version\t", domain.ToolVersion)

			info, ok := debug.ReadBuildInfo()
			if !ok {
				return
			}

			if info.Main.Version != "" {
				cmd.Println("build version\t", info.Main.Version)
			}

			cmd.Println("go version\t", info.GoVersion)
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}

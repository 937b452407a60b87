// Package commands implements the pipelinectl cobra command tree,
// grounded on the teacher pack's internal/cmd (a package-scoped rootCmd
// with persistent flags, each subcommand registering itself from init).
package commands

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pipelinectl",
	Short: "Operate a running pipeline control surface",
	Long:  "pipelinectl issues HTTP requests against a pipeline's control surface (spec.md §6): status, stats, start/stop automation, env tuning.",
}

// Execute runs the command tree; main's only job is to report its error.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("addr", "a", "http://localhost:8080", "base URL of the pipeline control surface")
}

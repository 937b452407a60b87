package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start an automation session (idempotent)",
	RunE:  withPost("/api/start-automation"),
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the active automation session (bounded to 5s)",
	RunE:  withPost("/api/stop-automation"),
}

var resetStatsCmd = &cobra.Command{
	Use:   "reset-stats",
	Short: "Reset every running counter and the activity feed",
	RunE:  withPost("/api/reset-stats"),
}

func init() {
	rootCmd.AddCommand(startCmd, stopCmd, resetStatsCmd)
}

func withPost(path string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		out, err := callJSON(cmd, "POST", path, nil)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a pipeline session is running",
	RunE:  withGet("/api/status"),
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show running counters (tokens, reviews, rebuilds, errors)",
	RunE:  withGet("/api/stats"),
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show the recent activity feed",
	RunE:  withGet("/api/activity"),
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check control surface liveness",
	RunE:  withGet("/api/health"),
}

var performanceCmd = &cobra.Command{
	Use:   "performance-data",
	Short: "Show the last 7 days of daily metrics",
	RunE:  withGet("/api/performance-data"),
}

var performanceAgentsCmd = &cobra.Command{
	Use:   "performance-agents",
	Short: "Show per-agent task/token/success totals",
	RunE:  withGet("/api/performance/agents"),
}

func init() {
	rootCmd.AddCommand(statusCmd, statsCmd, activityCmd, healthCmd, performanceCmd, performanceAgentsCmd)
}

func withGet(path string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		out, err := callJSON(cmd, "GET", path, nil)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}
}

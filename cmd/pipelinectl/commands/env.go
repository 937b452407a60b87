package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Inspect or tune the live settings table (spec.md §6)",
	RunE:  withGet("/api/env"),
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the configuration the server loaded at startup",
	RunE:  withGet("/api/config"),
}

var envSetCmd = &cobra.Command{
	Use:   "env-set",
	Short: "Update one or more live settings without restarting the server",
	RunE:  runEnvSet,
}

func init() {
	rootCmd.AddCommand(envCmd, configCmd, envSetCmd)

	envSetCmd.Flags().Int("max-rebuild-attempts", -1, "MAX_REBUILD_ATTEMPTS")
	envSetCmd.Flags().Float64("review-threshold", -1, "REVIEW_THRESHOLD")
	envSetCmd.Flags().Float64("score-threshold", -1, "SCORE_THRESHOLD")
	envSetCmd.Flags().Int("hitl-timeout-seconds", -1, "HITL_TIMEOUT_SECONDS")
	envSetCmd.Flags().Int("dev-parallelism", -1, "DEV_PARALLELISM")
	envSetCmd.Flags().String("review-branch-name", "", "REVIEW_BRANCH_NAME")
}

func runEnvSet(cmd *cobra.Command, args []string) error {
	update := map[string]any{}

	if v, _ := cmd.Flags().GetInt("max-rebuild-attempts"); v >= 0 {
		update["max_rebuild_attempts"] = v
	}
	if v, _ := cmd.Flags().GetFloat64("review-threshold"); v >= 0 {
		update["review_threshold"] = v
	}
	if v, _ := cmd.Flags().GetFloat64("score-threshold"); v >= 0 {
		update["score_threshold"] = v
	}
	if v, _ := cmd.Flags().GetInt("hitl-timeout-seconds"); v >= 0 {
		update["hitl_timeout_seconds"] = v
	}
	if v, _ := cmd.Flags().GetInt("dev-parallelism"); v >= 0 {
		update["dev_parallelism"] = v
	}
	if v, _ := cmd.Flags().GetString("review-branch-name"); v != "" {
		update["review_branch_name"] = v
	}

	if len(update) == 0 {
		return fmt.Errorf("no settings given: pass at least one flag, e.g. --dev-parallelism=8")
	}

	out, err := callJSON(cmd, "POST", "/api/env/update", update)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

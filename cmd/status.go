package cmd

import (
	"github.com/spf13/cobra"

	"stackctl/internal/report"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what is currently running",
		Long: `Query the executor for the current state of every declared service
without performing any lifecycle transition. An empty stack is a valid
status, not an error.`,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, cat, err := loadEnvironment()
	if err != nil {
		return err
	}

	exec, err := buildExecutor(cfg)
	if err != nil {
		return err
	}

	summary, err := report.Current(cmd.Context(), exec, cat.Services)
	if err != nil {
		return err
	}
	return summary.Render(cmd.OutOrStdout())
}

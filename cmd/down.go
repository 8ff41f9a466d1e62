package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stackctl/internal/teardown"
)

var (
	downRemoveVolumes bool
	downPruneImages   bool
)

func newDownCmd() *cobra.Command {
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Stop the stack",
		Long: `Stop every declared service, frontends and gateways first so no
client is left talking to a half-stopped backend. Teardown is
best-effort: a service that fails to stop does not prevent the rest
from being attempted, and running down against an already-stopped
stack succeeds trivially.`,
		RunE: runDown,
	}

	downCmd.Flags().BoolVar(&downRemoveVolumes, "remove-volumes", false, "remove service containers and their volumes")
	downCmd.Flags().BoolVar(&downPruneImages, "prune-images", false, "prune unused images after stopping")

	return downCmd
}

func runDown(cmd *cobra.Command, args []string) error {
	cfg, cat, err := loadEnvironment()
	if err != nil {
		return err
	}

	exec, err := buildExecutor(cfg)
	if err != nil {
		return err
	}

	td := teardown.New(exec)
	result, tdErr := td.Teardown(cmd.Context(), cat.Services, teardown.Options{
		RemoveVolumes: downRemoveVolumes,
		PruneImages:   downPruneImages,
	})

	if result != nil {
		printTeardownResult(cmd, result)
	}

	var partial *teardown.PartialTeardownError
	if errors.As(tdErr, &partial) {
		// Teardown ran; some services failed to stop. Exit non-zero but
		// don't double-print the failures.
		return fmt.Errorf("teardown incomplete: %d service(s) failed to stop", len(partial.Failures))
	}
	return tdErr
}

func printTeardownResult(cmd *cobra.Command, result *teardown.Result) {
	out := cmd.OutOrStdout()

	if len(result.Stopped) > 0 {
		fmt.Fprintf(out, "Stopped: %s\n", strings.Join(result.Stopped, ", "))
	}
	if len(result.Skipped) > 0 {
		fmt.Fprintf(out, "Not running: %s\n", strings.Join(result.Skipped, ", "))
	}
	for _, f := range result.Failures {
		fmt.Fprintf(out, "Failed to stop %s: %v\n", f.Service, f.Err)
	}
	if result.Pruned {
		fmt.Fprintln(out, "Unused images pruned.")
	}
	if len(result.Stopped) == 0 && len(result.Failures) == 0 {
		fmt.Fprintln(out, "Nothing to stop.")
	}
}

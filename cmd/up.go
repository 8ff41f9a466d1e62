package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stackctl/internal/catalog"
	"stackctl/internal/lifecycle"
	"stackctl/internal/report"
)

var (
	upAppsOnly       bool
	upMonitoringOnly bool
	upGitopsOnly     bool
)

func newUpCmd() *cobra.Command {
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Start the stack tier by tier",
		Long: `Start every declared service, tier by tier: databases first, then
backends, gateways, and frontends. Each tier is started only after the
previous tier's services passed their readiness probes.

A tier that fails verification aborts the run. Services already started
are left running; nothing is rolled back automatically.`,
		RunE: runUp,
	}

	upCmd.Flags().BoolVar(&upAppsOnly, "apps-only", false, "start only the application services")
	upCmd.Flags().BoolVar(&upMonitoringOnly, "monitoring-only", false, "start only the monitoring add-ons")
	upCmd.Flags().BoolVar(&upGitopsOnly, "gitops-only", false, "start only the GitOps add-ons")
	upCmd.MarkFlagsMutuallyExclusive("apps-only", "monitoring-only", "gitops-only")

	return upCmd
}

func runUp(cmd *cobra.Command, args []string) error {
	cfg, cat, err := loadEnvironment()
	if err != nil {
		return err
	}

	services := selectServices(cat)
	if len(services) == 0 {
		return fmt.Errorf("no services selected")
	}

	exec, err := buildExecutor(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
		// A second interrupt skips the best-effort cleanup entirely.
		<-sigChan
		fmt.Fprintln(os.Stderr, "Second interrupt, exiting immediately.")
		os.Exit(130)
	}()

	controller := lifecycle.New(exec, controllerConfig(cfg))
	session, upErr := controller.Up(ctx, services)

	// A summary is rendered on every path, including failures, so the
	// operator can see which services are in which state.
	summary := report.FromSession(session, services)
	if renderErr := summary.Render(cmd.OutOrStdout()); renderErr != nil {
		return renderErr
	}

	return upErr
}

// selectServices applies the group selector flags to the catalog.
func selectServices(cat *catalog.Catalog) []catalog.ServiceDefinition {
	switch {
	case upAppsOnly:
		return cat.FilterGroup(catalog.GroupApps)
	case upMonitoringOnly:
		return cat.FilterGroup(catalog.GroupMonitoring)
	case upGitopsOnly:
		return cat.FilterGroup(catalog.GroupGitops)
	default:
		return cat.Services
	}
}

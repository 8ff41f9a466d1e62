package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"stackctl/pkg/logging"
)

// contextEnvVar selects the executor target when the --context flag is
// not given.
const contextEnvVar = "STACKCTL_CONTEXT"

var (
	flagContext string
	flagCatalog string
	flagVerbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stackctl",
	Short: "Bring a multi-service application stack up and down",
	Long: `stackctl orchestrates the lifecycle of a declared multi-service stack:
databases, backend services, gateways, and frontends are started tier
by tier, each tier gated on the previous tier's readiness, against a
local container runtime or a Kubernetes cluster.`,
	// SilenceUsage is set to true to prevent printing usage message on
	// errors handled by us (e.g. failed readiness, unreachable runtime)
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if flagVerbose {
			level = logging.LevelDebug
		}
		logging.Init(level, os.Stderr)
	},
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "stackctl version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagContext, "context", "",
		"executor target; defaults to $"+contextEnvVar+", then the current context")
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "",
		"path to the stack catalog file (default from config)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false,
		"enable debug logging")

	rootCmd.AddCommand(newUpCmd())
	rootCmd.AddCommand(newDownCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}

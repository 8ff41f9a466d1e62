package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"stackctl/internal/classify"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the catalog and show the startup plan",
		Long: `Load the service catalog, check its invariants (unique names, known
tiers, dependencies resolving to earlier or equal tiers), and print the
tier-by-tier startup plan. The executor is never contacted.`,
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	_, cat, err := loadEnvironment()
	if err != nil {
		return err
	}

	tiers, err := classify.Classify(cat.Services)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Catalog valid: %d service(s) in %d tier(s)\n", len(cat.Services), len(tiers))
	for i, tier := range tiers {
		fmt.Fprintf(out, "  %d. %s:", i+1, tier.Tier)
		for _, svc := range tier.Services {
			fmt.Fprintf(out, " %s", svc.Name)
		}
		fmt.Fprintln(out)
	}
	return nil
}

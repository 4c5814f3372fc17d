package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/rappel/internal/ports/primary"
	"github.com/example/rappel/internal/wire"
)

// BootstrapCmd returns the bootstrap command
func BootstrapCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "bootstrap [external-form-id]",
		Short: "Create missing response records for a form",
		Long: `Ensure every tracked person has exactly one response record for a form.

Existing records are left untouched, so running bootstrap twice is safe.
New records start unanswered.

Examples:
  rappel bootstrap 1FAIpQLSe...    # One form by external id
  rappel bootstrap --all           # Every known form`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := wire.ReconcileService()

			if all {
				summary, err := svc.BootstrapAll(cmd.Context())
				if err != nil {
					return err
				}
				failures := 0
				for externalID, outcome := range summary.Forms {
					if outcome.Err != "" {
						failures++
						fmt.Printf("%s %s: %s\n", badFg("✗"), externalID, outcome.Err)
						continue
					}
					printBootstrapResult(outcome.Result)
				}
				if failures > 0 {
					return fmt.Errorf("%d of %d forms failed", failures, len(summary.Forms))
				}
				return nil
			}

			if len(args) != 1 {
				return fmt.Errorf("provide an external form id or use --all")
			}
			result, err := svc.Bootstrap(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printBootstrapResult(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Run bootstrap for every known form")

	return cmd
}

func printBootstrapResult(r *primary.BootstrapResult) {
	fmt.Printf("%s %s (%s): %d created, %d already covered of %d people",
		goodFg("✓"), r.FormTitle, r.ExternalFormID, r.Created, r.AlreadyCovered, r.PeopleTracked)
	if r.CreateFailed > 0 {
		fmt.Printf(", %s", badFg(fmt.Sprintf("%d failed", r.CreateFailed)))
	}
	fmt.Println()
}

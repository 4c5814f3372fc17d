package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/rappel/internal/ports/primary"
	"github.com/example/rappel/internal/wire"
)

// SyncCmd returns the sync command
func SyncCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "sync [external-form-id]",
		Short: "Mark response records answered from gateway submissions",
		Long: `Fetch submitted emails from the form-response gateway and flip the
matching response records to answered. Records never move back to
unanswered, and a gateway outage means "no new information", not
"no one answered".

Examples:
  rappel sync 1FAIpQLSe...    # One form by external id
  rappel sync --all           # Every known form`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := wire.ReconcileService()

			if all {
				summary, err := svc.SyncAll(cmd.Context())
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
					printSyncResult(outcome.Result)
				}
				if failures > 0 {
					return fmt.Errorf("%d of %d forms failed", failures, len(summary.Forms))
				}
				return nil
			}

			if len(args) != 1 {
				return fmt.Errorf("provide an external form id or use --all")
			}
			result, err := svc.Sync(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSyncResult(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Run sync for every known form")

	return cmd
}

func printSyncResult(r *primary.SyncResult) {
	marker := goodFg("✓")
	if r.GatewayDegraded {
		marker = warnFg("⚠")
	}
	fmt.Printf("%s %s (%s): %d marked answered of %d records (%d gateway submissions)",
		marker, r.FormTitle, r.ExternalFormID, r.Updated, r.RecordsExamined, r.GatewayEmails)
	if r.UpdateFailed > 0 {
		fmt.Printf(", %s", badFg(fmt.Sprintf("%d failed", r.UpdateFailed)))
	}
	if r.GatewayDegraded {
		fmt.Printf(" %s", warnFg("[gateway unreachable, no records changed]"))
	}
	fmt.Println()
}

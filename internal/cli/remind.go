package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/rappel/internal/ports/primary"
	"github.com/example/rappel/internal/wire"
)

// RemindCmd returns the remind command
func RemindCmd() *cobra.Command {
	var all bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "remind [external-form-id]",
		Short: "Send reminders to people who have not answered a form",
		Long: `Send one reminder message to each unanswered, reachable person on a
form. People without a channel id are skipped and reported, not failed.

--dry-run logs what would be sent and still stamps the last-reminder
timestamps, so a rehearsal walks the exact state transition a real run
would. It can also be forced via DRY_RUN=true in the environment.

Examples:
  rappel remind 1FAIpQLSe...          # One form
  rappel remind --all                 # Every known form
  rappel remind --all --dry-run       # Rehearse without sending`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := wire.ReminderService(dryRun)

			if all {
				summary, err := svc.SendRemindersAll(cmd.Context())
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
					printDispatchResult(outcome.Result)
				}
				if failures > 0 {
					return fmt.Errorf("%d of %d forms failed", failures, len(summary.Forms))
				}
				return nil
			}

			if len(args) != 1 {
				return fmt.Errorf("provide an external form id or use --all")
			}
			result, err := svc.SendReminders(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printDispatchResult(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Send reminders for every known form")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log instead of sending (timestamps still move)")

	return cmd
}

func printDispatchResult(r *primary.DispatchResult) {
	mode := ""
	if r.DryRun {
		mode = dimFg(" [dry-run]")
	}
	fmt.Printf("%s %s (%s): %d sent of %d eligible%s",
		goodFg("✓"), r.FormTitle, r.ExternalFormID, r.Sent, r.Eligible, mode)
	if r.SkippedNoChannel > 0 {
		fmt.Printf(", %s", warnFg(fmt.Sprintf("%d unreachable", r.SkippedNoChannel)))
	}
	if r.SendFailed > 0 {
		fmt.Printf(", %s", badFg(fmt.Sprintf("%d failed", r.SendFailed)))
	}
	fmt.Println()
}

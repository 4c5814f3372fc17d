package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/rappel/internal/ports/secondary"
	"github.com/example/rappel/internal/wire"
)

// HistoryCmd returns the history command
func HistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent engine runs from the local store",
		Long: `List recent bootstrap, sync, and dispatch runs recorded in the local
history database, newest first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runLog := wire.RunLog()
			if runLog == nil {
				return fmt.Errorf("run history store is unavailable")
			}

			runs, err := runLog.List(limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Println("No runs recorded yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tOPERATION\tFORM\tOUTCOME\tCOUNT\tSKIPPED\tFAILED")
			for _, run := range runs {
				operation := run.Operation
				if run.DryRun {
					operation += " (dry)"
				}
				form := run.FormTitle
				if form == "" {
					form = run.ExternalFormID
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
					run.StartedAt, operation, form, colorizeOutcome(run.Outcome), run.Count, run.Skipped, run.Failed)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")

	return cmd
}

func colorizeOutcome(outcome string) string {
	switch outcome {
	case secondary.OutcomeOK:
		return goodFg(outcome)
	case secondary.OutcomeDegraded:
		return warnFg(outcome)
	case secondary.OutcomeError:
		return badFg(outcome)
	default:
		return outcome
	}
}

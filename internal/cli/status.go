package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/rappel/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show per-form answered and unanswered counts",
		Long: `Display one row per tracked form with how many response records exist
and how many are answered. Read-only; nothing is created or sent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := wire.ReminderService(true)

			statuses, err := svc.Status(cmd.Context())
			if err != nil {
				return err
			}
			if len(statuses) == 0 {
				fmt.Println("No forms tracked in the registry.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FORM\tEXTERNAL ID\tTRACKED\tANSWERED\tUNANSWERED")
			for _, s := range statuses {
				unanswered := fmt.Sprintf("%d", s.Unanswered)
				if s.Unanswered > 0 {
					unanswered = warnFg(unanswered)
				} else if s.Tracked > 0 {
					unanswered = goodFg(unanswered)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", s.Title, s.ExternalFormID, s.Tracked, s.Answered, unanswered)
			}
			return w.Flush()
		},
	}

	return cmd
}

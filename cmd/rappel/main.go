package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/rappel/internal/cli"
	"github.com/example/rappel/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "rappel",
		Short:   "rappel - reconciliation and reminder engine for form responses",
		Version: version.String(),
		Long: `rappel keeps a registry of people and forms in step with an external
form-response gateway, and nudges the people who have not answered yet.

Typical cycle: bootstrap records for a new form, sync answered state
from the gateway, then remind whoever is still outstanding.`,
	}

	rootCmd.AddCommand(cli.BootstrapCmd())
	rootCmd.AddCommand(cli.SyncCmd())
	rootCmd.AddCommand(cli.RemindCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.HistoryCmd())
	rootCmd.AddCommand(cli.DoctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

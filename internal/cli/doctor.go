package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/rappel/internal/adapters/gateway"
	"github.com/example/rappel/internal/adapters/registry"
	"github.com/example/rappel/internal/config"
	"github.com/example/rappel/internal/db"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate configuration and collaborator connectivity",
		Long: `Health check for the rappel environment.

Validates:
- Environment configuration (.env or process environment)
- Registry reachability and form listing
- Gateway reachability for the first tracked form
- Local run-history store

Examples:
  rappel doctor            # Run full health check
  rappel doctor --quiet    # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			results := []CheckResult{}

			cfg, cfgResult := checkConfig()
			results = append(results, cfgResult)
			if cfg != nil {
				registryResult, firstFormID := checkRegistry(ctx, cfg)
				results = append(results, registryResult)
				results = append(results, checkGateway(ctx, cfg, firstFormID))
				results = append(results, checkHistoryStore(cfg))
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				fmt.Println()
				fmt.Println("Check              Status")
				fmt.Println("─────────────────────────")
				for _, r := range results {
					fmt.Printf("%-18s %s\n", r.Name, r.Status)
				}
				fmt.Println()

				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						fmt.Printf("%s %s: %s\n", r.Status, r.Name, r.Details)
					}
				}
			}

			if hasErrors {
				return fmt.Errorf("doctor found issues")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress output, exit code only")

	return cmd
}

func checkConfig() (*config.Config, CheckResult) {
	cfg, err := config.Load()
	if err != nil {
		return nil, CheckResult{Name: "Configuration", Status: "✗", Details: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return nil, CheckResult{Name: "Configuration", Status: "✗", Details: err.Error()}
	}
	return cfg, CheckResult{Name: "Configuration", Status: "✓"}
}

// checkRegistry lists forms and returns the first external form id for the
// gateway check.
func checkRegistry(ctx context.Context, cfg *config.Config) (CheckResult, string) {
	client := registry.NewClient(cfg.RegistryURL, cfg.RegistryToken, registry.Collections{
		People:    cfg.RegistryPeopleCollection,
		Forms:     cfg.RegistryFormsCollection,
		Responses: cfg.RegistryResponsesCollection,
	}, nil)

	forms, err := client.ListForms(ctx)
	if err != nil {
		return CheckResult{Name: "Registry", Status: "✗", Details: err.Error()}, ""
	}
	if len(forms) == 0 {
		return CheckResult{Name: "Registry", Status: "⚠", Details: "reachable but no forms tracked"}, ""
	}
	return CheckResult{Name: "Registry", Status: "✓"}, forms[0].ExternalFormID
}

func checkGateway(ctx context.Context, cfg *config.Config, externalFormID string) CheckResult {
	if externalFormID == "" {
		return CheckResult{Name: "Gateway", Status: "⚠", Details: "skipped, no form to query"}
	}
	adapter := gateway.NewAdapter(cfg.GatewayURL, nil)
	if _, err := adapter.FetchEmails(ctx, externalFormID); err != nil {
		return CheckResult{Name: "Gateway", Status: "✗", Details: err.Error()}
	}
	return CheckResult{Name: "Gateway", Status: "✓"}
}

func checkHistoryStore(cfg *config.Config) CheckResult {
	database, err := db.Open(cfg.HistoryDBPath)
	if err != nil {
		return CheckResult{Name: "History store", Status: "⚠", Details: err.Error()}
	}
	defer database.Close()
	if err := database.Ping(); err != nil {
		return CheckResult{Name: "History store", Status: "⚠", Details: err.Error()}
	}
	return CheckResult{Name: "History store", Status: "✓"}
}

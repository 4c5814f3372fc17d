// Package wire provides dependency injection for the rappel application.
// Collaborator clients are singletons with lazy initialization; services
// are cheap and constructed per call on top of them.
package wire

import (
	"log"
	"sync"

	"github.com/example/rappel/internal/adapters/channel"
	"github.com/example/rappel/internal/adapters/gateway"
	"github.com/example/rappel/internal/adapters/registry"
	"github.com/example/rappel/internal/adapters/sqlite"
	"github.com/example/rappel/internal/app"
	"github.com/example/rappel/internal/config"
	"github.com/example/rappel/internal/db"
	"github.com/example/rappel/internal/ports/primary"
	"github.com/example/rappel/internal/ports/secondary"
)

var (
	cfg            *config.Config
	registryClient secondary.Registry
	gatewayClient  secondary.Gateway
	channelClient  secondary.Channel
	runLog         secondary.RunLogRepository
	once           sync.Once
)

// RunLog returns the run-history repository, or nil when the local store
// could not be opened (history is optional; runs proceed without it).
func RunLog() secondary.RunLogRepository {
	once.Do(initDeps)
	return runLog
}

// ReconcileService builds a ReconcileService on the shared clients.
func ReconcileService() primary.ReconcileService {
	once.Do(initDeps)
	return app.NewReconcileService(registryClient, gatewayClient, runLog, cfg.MaxParallelForms)
}

// ReminderService builds a ReminderService on the shared clients.
// forceDryRun turns dry-run on regardless of configuration; it can never
// turn a configured dry-run off.
func ReminderService(forceDryRun bool) primary.ReminderService {
	once.Do(initDeps)
	dryRun := cfg.DryRun || forceDryRun
	return app.NewReminderService(registryClient, channelClient, runLog, dryRun, cfg.RateLimit(), cfg.MaxParallelForms)
}

// initDeps loads configuration and constructs the collaborator clients.
// Called once via sync.Once.
func initDeps() {
	loaded, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := loaded.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	cfg = loaded

	registryClient = registry.NewClient(cfg.RegistryURL, cfg.RegistryToken, registry.Collections{
		People:    cfg.RegistryPeopleCollection,
		Forms:     cfg.RegistryFormsCollection,
		Responses: cfg.RegistryResponsesCollection,
	}, nil)

	gatewayClient = gateway.NewAdapter(cfg.GatewayURL, nil)

	// Channel settings may be absent under dry-run; no client is built
	// and the reminder service never reaches for one.
	if cfg.ChannelURL != "" {
		channelClient = channel.NewClient(cfg.ChannelURL, cfg.ChannelToken, nil)
	}

	database, err := db.Open(cfg.HistoryDBPath)
	if err != nil {
		log.Printf("[history] local store unavailable, continuing without run history: %v", err)
		return
	}
	runLog = sqlite.NewRunLogRepository(database)
}

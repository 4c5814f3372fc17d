// Package primary defines the primary ports (driving interfaces) exposed to
// callers such as the CLI. Each operation takes an external form id — the id
// the gateway knows, not a registry page id.
package primary

import "context"

// ReconcileService is the entry point for bootstrap and sync operations.
type ReconcileService interface {
	// Bootstrap ensures every tracked person has exactly one response
	// record for the form. Idempotent: a second run with unchanged people
	// creates nothing.
	Bootstrap(ctx context.Context, externalFormID string) (*BootstrapResult, error)

	// Sync updates answered state from gateway truth. Idempotent and
	// monotonic: answered records are never demoted.
	Sync(ctx context.Context, externalFormID string) (*SyncResult, error)

	// BootstrapAll runs Bootstrap for every known form using the bounded
	// fan-out and returns a per-form summary.
	BootstrapAll(ctx context.Context) (*BootstrapSummary, error)

	// SyncAll runs Sync for every known form using the bounded fan-out and
	// returns a per-form summary.
	SyncAll(ctx context.Context) (*SyncSummary, error)
}

// BootstrapResult reports one form's bootstrap outcome.
type BootstrapResult struct {
	ExternalFormID string
	FormTitle      string
	PeopleTracked  int
	AlreadyCovered int
	Created        int
	CreateFailed   int
}

// SyncResult reports one form's sync outcome.
type SyncResult struct {
	ExternalFormID  string
	FormTitle       string
	GatewayEmails   int
	RecordsExamined int
	Updated         int
	UpdateFailed    int
	// GatewayDegraded is true when the gateway call failed and the run
	// fell back to an empty mapping (zero updates, nothing demoted).
	GatewayDegraded bool
}

// BootstrapSummary aggregates per-form bootstrap outcomes from a fan-out.
type BootstrapSummary struct {
	Forms map[string]*BootstrapOutcome
}

// BootstrapOutcome is one form's entry in a BootstrapSummary. Err is set
// when the whole form's operation failed; the sibling forms are unaffected.
type BootstrapOutcome struct {
	Result *BootstrapResult
	Err    string
}

// SyncSummary aggregates per-form sync outcomes from a fan-out.
type SyncSummary struct {
	Forms map[string]*SyncOutcome
}

// SyncOutcome is one form's entry in a SyncSummary.
type SyncOutcome struct {
	Result *SyncResult
	Err    string
}

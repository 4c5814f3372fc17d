package secondary

// RunLogRepository defines the secondary port for local run-history
// bookkeeping. Runs are append-only; the engine never consults history when
// deciding what to do.
type RunLogRepository interface {
	// Record persists one run summary.
	Record(run *RunRecord) error

	// List retrieves the most recent runs, newest first.
	List(limit int) ([]*RunRecord, error)
}

// RunRecord summarizes one bootstrap, sync, or dispatch run for a form.
type RunRecord struct {
	ID             string
	Operation      string // "bootstrap", "sync", "dispatch"
	ExternalFormID string
	FormTitle      string
	Count          int    // created / updated / sent, per operation
	Skipped        int    // records examined but left untouched
	Failed         int    // per-record failures absorbed during the run
	Outcome        string // "ok", "degraded", "error"
	Detail         string // error text or degradation reason, if any
	StartedAt      string
	DurationMS     int64
	DryRun         bool
}

// Run outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeError    = "error"
)

// Run operations.
const (
	OpBootstrap = "bootstrap"
	OpSync      = "sync"
	OpDispatch  = "dispatch"
)

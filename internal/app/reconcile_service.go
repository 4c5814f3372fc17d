// Package app implements the primary ports by orchestrating the secondary
// ports. Decision logic lives in internal/core/reconcile; this layer does
// the I/O around it.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/rappel/internal/core/reconcile"
	"github.com/example/rappel/internal/models"
	"github.com/example/rappel/internal/ports/primary"
	"github.com/example/rappel/internal/ports/secondary"
)

// ReconcileServiceImpl implements primary.ReconcileService.
type ReconcileServiceImpl struct {
	registry         secondary.Registry
	gateway          secondary.Gateway
	runLog           secondary.RunLogRepository // optional; nil disables history
	maxParallelForms int
	clock            func() time.Time
	newID            func() string
}

// NewReconcileService creates a ReconcileService with injected
// collaborators. runLog may be nil when history is disabled.
func NewReconcileService(registry secondary.Registry, gateway secondary.Gateway, runLog secondary.RunLogRepository, maxParallelForms int) *ReconcileServiceImpl {
	return &ReconcileServiceImpl{
		registry:         registry,
		gateway:          gateway,
		runLog:           runLog,
		maxParallelForms: maxParallelForms,
		clock:            time.Now,
		newID:            uuid.NewString,
	}
}

// Bootstrap ensures every tracked person has exactly one response record
// for the form. Individual creation failures are logged and skipped; a
// later run fills the gaps.
func (s *ReconcileServiceImpl) Bootstrap(ctx context.Context, externalFormID string) (*primary.BootstrapResult, error) {
	started := s.clock()

	// 1. Resolve the form by external id.
	form, err := s.registry.FindFormByExternalID(ctx, externalFormID)
	if err != nil {
		s.recordRun(secondary.OpBootstrap, externalFormID, "", started, nil, err)
		return nil, err
	}

	// 2. Fetch all tracked people.
	people, err := s.registry.ListPersons(ctx)
	if err != nil {
		s.recordRun(secondary.OpBootstrap, externalFormID, form.Title, started, nil, err)
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}

	// 3. Fetch existing response records for the form.
	existing, err := s.registry.ListResponses(ctx, form.ID)
	if err != nil {
		s.recordRun(secondary.OpBootstrap, externalFormID, form.Title, started, nil, err)
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	// 4. Diff people against coverage.
	plan := reconcile.GenerateBootstrapPlan(people, existing)

	result := &primary.BootstrapResult{
		ExternalFormID: externalFormID,
		FormTitle:      form.Title,
		PeopleTracked:  len(people),
		AlreadyCovered: plan.AlreadyCovered,
	}

	// 5. Create the missing records. A deadline stops new creations but
	// the records created so far stand; bootstrap is idempotent.
	for _, personID := range plan.Create {
		if ctx.Err() != nil {
			log.Printf("[bootstrap] stopping early for form %s: %v", externalFormID, ctx.Err())
			break
		}
		if _, err := s.registry.CreateResponse(ctx, form.ID, personID, form.Title); err != nil {
			log.Printf("[bootstrap] create failed for person %s on form %s: %v", personID, externalFormID, err)
			result.CreateFailed++
			continue
		}
		result.Created++
	}

	log.Printf("[bootstrap] form %s: %d created, %d already covered, %d failed", externalFormID, result.Created, result.AlreadyCovered, result.CreateFailed)
	s.recordRun(secondary.OpBootstrap, externalFormID, form.Title, started, &runCounts{count: result.Created, skipped: result.AlreadyCovered, failed: result.CreateFailed}, nil)
	return result, nil
}

// Sync updates answered state from gateway truth. A gateway failure
// degrades to an empty mapping: zero updates, nothing demoted, warning
// logged (fail-open).
func (s *ReconcileServiceImpl) Sync(ctx context.Context, externalFormID string) (*primary.SyncResult, error) {
	started := s.clock()

	// 1. Resolve the form by external id.
	form, err := s.registry.FindFormByExternalID(ctx, externalFormID)
	if err != nil {
		s.recordRun(secondary.OpSync, externalFormID, "", started, nil, err)
		return nil, err
	}

	result := &primary.SyncResult{
		ExternalFormID: externalFormID,
		FormTitle:      form.Title,
	}

	// 2. Ask the gateway who submitted. Failure means "no new
	// information", never "no one answered".
	emailMap, err := s.gateway.FetchEmails(ctx, form.ExternalFormID)
	if err != nil {
		log.Printf("[sync] gateway degraded for form %s, treating as no new information: %v", externalFormID, err)
		result.GatewayDegraded = true
		emailMap = nil
	}
	result.GatewayEmails = len(emailMap)

	// An empty mapping cannot flip anything; short-circuit before touching
	// the registry further.
	if len(emailMap) == 0 {
		var degraded error
		if result.GatewayDegraded {
			degraded = models.ErrGatewayUnavailable
		}
		s.recordRunDegraded(secondary.OpSync, externalFormID, form.Title, started, &runCounts{}, degraded)
		return result, nil
	}

	// 3. Build person id -> email for everyone with a usable address.
	people, err := s.registry.ListPersons(ctx)
	if err != nil {
		s.recordRun(secondary.OpSync, externalFormID, form.Title, started, nil, err)
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	personEmails := make(map[string]string, len(people))
	for _, p := range people {
		if p.Email != "" {
			personEmails[p.ID] = p.Email
		}
	}

	// 4. Fetch the form's response records.
	records, err := s.registry.ListResponses(ctx, form.ID)
	if err != nil {
		s.recordRun(secondary.OpSync, externalFormID, form.Title, started, nil, err)
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	result.RecordsExamined = len(records)

	// 5. Decide and apply. Write failures are logged and skipped; the
	// next run heals them.
	actions := reconcile.GenerateSyncPlan(records, personEmails, emailMap, s.clock())
	for _, action := range actions {
		if action.Decision != reconcile.DecisionMarkAnswered {
			continue
		}
		if ctx.Err() != nil {
			log.Printf("[sync] stopping early for form %s: %v", externalFormID, ctx.Err())
			break
		}
		if err := s.registry.MarkAnswered(ctx, action.Record.ID, action.AnsweredAt); err != nil {
			log.Printf("[sync] update failed for record %s: %v", action.Record.ID, err)
			result.UpdateFailed++
			continue
		}
		result.Updated++
	}

	log.Printf("[sync] form %s: %d updated of %d records (%d gateway emails, %d failed)", externalFormID, result.Updated, result.RecordsExamined, result.GatewayEmails, result.UpdateFailed)
	s.recordRun(secondary.OpSync, externalFormID, form.Title, started, &runCounts{count: result.Updated, skipped: result.RecordsExamined - result.Updated - result.UpdateFailed, failed: result.UpdateFailed}, nil)
	return result, nil
}

// BootstrapAll runs Bootstrap for every known form with bounded
// parallelism. A single form's failure lands in its own summary entry.
func (s *ReconcileServiceImpl) BootstrapAll(ctx context.Context) (*primary.BootstrapSummary, error) {
	forms, err := s.registry.ListForms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	outcomes := fanOutForms(ctx, forms, s.maxParallelForms, func(ctx context.Context, form models.FormDefinition) (*primary.BootstrapResult, error) {
		return s.Bootstrap(ctx, form.ExternalFormID)
	})

	summary := &primary.BootstrapSummary{Forms: make(map[string]*primary.BootstrapOutcome, len(outcomes))}
	for externalID, outcome := range outcomes {
		entry := &primary.BootstrapOutcome{Result: outcome.result}
		if outcome.err != nil {
			entry.Err = outcome.err.Error()
		}
		summary.Forms[externalID] = entry
	}
	return summary, nil
}

// SyncAll runs Sync for every known form with bounded parallelism.
func (s *ReconcileServiceImpl) SyncAll(ctx context.Context) (*primary.SyncSummary, error) {
	forms, err := s.registry.ListForms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	outcomes := fanOutForms(ctx, forms, s.maxParallelForms, func(ctx context.Context, form models.FormDefinition) (*primary.SyncResult, error) {
		return s.Sync(ctx, form.ExternalFormID)
	})

	summary := &primary.SyncSummary{Forms: make(map[string]*primary.SyncOutcome, len(outcomes))}
	for externalID, outcome := range outcomes {
		entry := &primary.SyncOutcome{Result: outcome.result}
		if outcome.err != nil {
			entry.Err = outcome.err.Error()
		}
		summary.Forms[externalID] = entry
	}
	return summary, nil
}

// runCounts carries the per-run counters into the history row.
type runCounts struct {
	count   int
	skipped int
	failed  int
}

func (s *ReconcileServiceImpl) recordRun(operation, externalFormID, formTitle string, started time.Time, counts *runCounts, opErr error) {
	s.recordRunDegraded(operation, externalFormID, formTitle, started, counts, opErr)
}

// recordRunDegraded writes one history row. opErr marks the run as failed
// when the counts are nil, or as degraded when partial counts exist.
func (s *ReconcileServiceImpl) recordRunDegraded(operation, externalFormID, formTitle string, started time.Time, counts *runCounts, opErr error) {
	if s.runLog == nil {
		return
	}

	run := &secondary.RunRecord{
		ID:             s.newID(),
		Operation:      operation,
		ExternalFormID: externalFormID,
		FormTitle:      formTitle,
		Outcome:        secondary.OutcomeOK,
		StartedAt:      started.UTC().Format(time.RFC3339),
		DurationMS:     s.clock().Sub(started).Milliseconds(),
	}
	if counts != nil {
		run.Count = counts.count
		run.Skipped = counts.skipped
		run.Failed = counts.failed
	}
	if opErr != nil {
		run.Detail = opErr.Error()
		if counts == nil {
			run.Outcome = secondary.OutcomeError
		} else {
			run.Outcome = secondary.OutcomeDegraded
		}
	}

	if err := s.runLog.Record(run); err != nil {
		log.Printf("[history] failed to record %s run for form %s: %v", operation, externalFormID, err)
	}
}

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

// ReminderServiceImpl implements primary.ReminderService.
type ReminderServiceImpl struct {
	registry         secondary.Registry
	channel          secondary.Channel
	runLog           secondary.RunLogRepository // optional; nil disables history
	dryRun           bool
	rateLimit        time.Duration
	maxParallelForms int
	clock            func() time.Time
	sleep            func(time.Duration)
	newID            func() string
}

// NewReminderService creates a ReminderService with injected collaborators.
// runLog may be nil when history is disabled.
func NewReminderService(registry secondary.Registry, channel secondary.Channel, runLog secondary.RunLogRepository, dryRun bool, rateLimit time.Duration, maxParallelForms int) *ReminderServiceImpl {
	return &ReminderServiceImpl{
		registry:         registry,
		channel:          channel,
		runLog:           runLog,
		dryRun:           dryRun,
		rateLimit:        rateLimit,
		maxParallelForms: maxParallelForms,
		clock:            time.Now,
		sleep:            time.Sleep,
		newID:            uuid.NewString,
	}
}

// SendReminders dispatches reminders for one form's unanswered, reachable
// people. A send failure is logged and skipped; the record's last-reminder
// timestamp stays untouched so the next run retries it.
func (s *ReminderServiceImpl) SendReminders(ctx context.Context, externalFormID string) (*primary.DispatchResult, error) {
	started := s.clock()

	form, err := s.registry.FindFormByExternalID(ctx, externalFormID)
	if err != nil {
		s.recordRun(externalFormID, "", started, nil, err)
		return nil, err
	}

	records, err := s.registry.ListResponses(ctx, form.ID)
	if err != nil {
		s.recordRun(externalFormID, form.Title, started, nil, err)
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	persons, err := s.registry.ListPersons(ctx)
	if err != nil {
		s.recordRun(externalFormID, form.Title, started, nil, err)
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	people := make(map[string]models.Person, len(persons))
	for _, p := range persons {
		people[p.ID] = p
	}

	plan := reconcile.GenerateReminderPlan(records, people)

	result := &primary.DispatchResult{
		ExternalFormID:   externalFormID,
		FormTitle:        form.Title,
		Eligible:         len(plan.Send) + plan.SkippedNoChannel + plan.SkippedNoPerson,
		SkippedNoChannel: plan.SkippedNoChannel + plan.SkippedNoPerson,
		DryRun:           s.dryRun,
	}

	for _, target := range plan.Send {
		if ctx.Err() != nil {
			log.Printf("[dispatch] stopping early for form %s: %v", externalFormID, ctx.Err())
			break
		}

		text := reconcile.ComposeMessage(*form, target.Person)

		if s.dryRun {
			log.Printf("[dispatch] DRY RUN: would send to %s (%s) for form %s", target.Person.DisplayName, target.Person.ChannelID, externalFormID)
		} else {
			if err := s.channel.Send(ctx, target.Person.ChannelID, text); err != nil {
				log.Printf("[dispatch] send failed for %s on form %s: %v", target.Person.DisplayName, externalFormID, err)
				result.SendFailed++
				continue
			}
		}
		result.Sent++

		// The last-reminder timestamp moves under dry-run too, so a
		// rehearsal walks the exact state transition a real run would.
		if err := s.registry.TouchReminder(ctx, target.Record.ID, s.clock()); err != nil {
			log.Printf("[dispatch] failed to stamp reminder on record %s: %v", target.Record.ID, err)
		}

		if !s.dryRun && s.rateLimit > 0 {
			s.sleep(s.rateLimit)
		}
	}

	log.Printf("[dispatch] form %s: %d sent, %d skipped (no channel), %d failed, dry_run=%v", externalFormID, result.Sent, result.SkippedNoChannel, result.SendFailed, s.dryRun)
	s.recordRun(externalFormID, form.Title, started, &runCounts{count: result.Sent, skipped: result.SkippedNoChannel, failed: result.SendFailed}, nil)
	return result, nil
}

// SendRemindersAll dispatches for every known form with bounded
// parallelism. A single form's failure lands in its own summary entry.
func (s *ReminderServiceImpl) SendRemindersAll(ctx context.Context) (*primary.DispatchSummary, error) {
	forms, err := s.registry.ListForms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	outcomes := fanOutForms(ctx, forms, s.maxParallelForms, func(ctx context.Context, form models.FormDefinition) (*primary.DispatchResult, error) {
		return s.SendReminders(ctx, form.ExternalFormID)
	})

	summary := &primary.DispatchSummary{Forms: make(map[string]*primary.DispatchOutcome, len(outcomes))}
	for externalID, outcome := range outcomes {
		entry := &primary.DispatchOutcome{Result: outcome.result}
		if outcome.err != nil {
			entry.Err = outcome.err.Error()
		}
		summary.Forms[externalID] = entry
	}
	return summary, nil
}

// Status reports per-form answered/unanswered counts. Read-only.
func (s *ReminderServiceImpl) Status(ctx context.Context) ([]primary.FormStatus, error) {
	forms, err := s.registry.ListForms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	statuses := make([]primary.FormStatus, 0, len(forms))
	for _, form := range forms {
		records, err := s.registry.ListResponses(ctx, form.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list responses for form %s: %w", form.ExternalFormID, err)
		}
		status := primary.FormStatus{
			ExternalFormID: form.ExternalFormID,
			Title:          form.Title,
			Tracked:        len(records),
		}
		for _, record := range records {
			if record.Answered {
				status.Answered++
			} else {
				status.Unanswered++
			}
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (s *ReminderServiceImpl) recordRun(externalFormID, formTitle string, started time.Time, counts *runCounts, opErr error) {
	if s.runLog == nil {
		return
	}

	run := &secondary.RunRecord{
		ID:             s.newID(),
		Operation:      secondary.OpDispatch,
		ExternalFormID: externalFormID,
		FormTitle:      formTitle,
		Outcome:        secondary.OutcomeOK,
		StartedAt:      started.UTC().Format(time.RFC3339),
		DurationMS:     s.clock().Sub(started).Milliseconds(),
		DryRun:         s.dryRun,
	}
	if counts != nil {
		run.Count = counts.count
		run.Skipped = counts.skipped
		run.Failed = counts.failed
	}
	if opErr != nil {
		run.Detail = opErr.Error()
		run.Outcome = secondary.OutcomeError
	}

	if err := s.runLog.Record(run); err != nil {
		log.Printf("[history] failed to record dispatch run for form %s: %v", externalFormID, err)
	}
}

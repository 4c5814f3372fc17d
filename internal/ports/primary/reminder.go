package primary

import "context"

// ReminderService is the entry point for reminder dispatch and status
// reporting.
type ReminderService interface {
	// SendReminders dispatches reminders for one form's unanswered,
	// reachable people. Under dry-run it exercises the full state
	// transition (last-reminder timestamps included) without calling the
	// channel.
	SendReminders(ctx context.Context, externalFormID string) (*DispatchResult, error)

	// SendRemindersAll dispatches for every known form using the bounded
	// fan-out and returns a per-form summary.
	SendRemindersAll(ctx context.Context) (*DispatchSummary, error)

	// Status reports per-form answered/unanswered counts without mutating
	// anything.
	Status(ctx context.Context) ([]FormStatus, error)
}

// DispatchResult reports one form's reminder dispatch outcome. Sent,
// SkippedNoChannel, and SendFailed are kept distinct: a person without a
// channel id is not a delivery failure, and neither counts as sent.
type DispatchResult struct {
	ExternalFormID   string
	FormTitle        string
	Eligible         int // unanswered records considered
	Sent             int // delivered, or simulated under dry-run
	SkippedNoChannel int
	SendFailed       int
	DryRun           bool
}

// DispatchSummary aggregates per-form dispatch outcomes from a fan-out.
type DispatchSummary struct {
	Forms map[string]*DispatchOutcome
}

// DispatchOutcome is one form's entry in a DispatchSummary.
type DispatchOutcome struct {
	Result *DispatchResult
	Err    string
}

// FormStatus is one row of the status report.
type FormStatus struct {
	ExternalFormID string
	Title          string
	Tracked        int
	Answered       int
	Unanswered     int
}

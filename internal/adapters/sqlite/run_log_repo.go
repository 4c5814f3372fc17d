// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/example/rappel/internal/ports/secondary"
)

// RunLogRepository implements secondary.RunLogRepository with SQLite.
type RunLogRepository struct {
	db *sql.DB
}

// NewRunLogRepository creates a new SQLite run log repository.
func NewRunLogRepository(db *sql.DB) *RunLogRepository {
	return &RunLogRepository{db: db}
}

// Record persists one run summary.
func (r *RunLogRepository) Record(run *secondary.RunRecord) error {
	var title, detail sql.NullString
	if run.FormTitle != "" {
		title = sql.NullString{String: run.FormTitle, Valid: true}
	}
	if run.Detail != "" {
		detail = sql.NullString{String: run.Detail, Valid: true}
	}

	_, err := r.db.Exec(
		"INSERT INTO runs (id, operation, external_form_id, form_title, count, skipped, failed, outcome, detail, dry_run, started_at, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		run.ID, run.Operation, run.ExternalFormID, title, run.Count, run.Skipped, run.Failed, run.Outcome, detail, run.DryRun, run.StartedAt, run.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// List retrieves the most recent runs, newest first.
func (r *RunLogRepository) List(limit int) ([]*secondary.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(
		"SELECT id, operation, external_form_id, form_title, count, skipped, failed, outcome, detail, dry_run, started_at, duration_ms FROM runs ORDER BY started_at DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*secondary.RunRecord
	for rows.Next() {
		var (
			run    secondary.RunRecord
			title  sql.NullString
			detail sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Operation, &run.ExternalFormID, &title, &run.Count, &run.Skipped, &run.Failed, &run.Outcome, &detail, &run.DryRun, &run.StartedAt, &run.DurationMS); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.FormTitle = title.String
		run.Detail = detail.String
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

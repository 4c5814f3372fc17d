// Package reconcile contains the pure decision logic for bootstrap, sync,
// and reminder selection. All inputs are pre-fetched by the caller - no I/O
// happens here.
package reconcile

import "github.com/example/rappel/internal/models"

// BootstrapPlan lists the person ids that still need a response record for
// a form, in the order the people were fetched.
type BootstrapPlan struct {
	Create         []string
	AlreadyCovered int
}

// GenerateBootstrapPlan diffs the tracked people against the form's existing
// response records. A person is covered as soon as any record references
// them, answered or not, so re-planning after a partial bootstrap only
// yields the gaps.
func GenerateBootstrapPlan(people []models.Person, existing []models.ResponseRecord) BootstrapPlan {
	covered := make(map[string]bool, len(existing))
	for _, rec := range existing {
		if rec.PersonID != "" {
			covered[rec.PersonID] = true
		}
	}

	plan := BootstrapPlan{}
	for _, p := range people {
		if covered[p.ID] {
			plan.AlreadyCovered++
			continue
		}
		plan.Create = append(plan.Create, p.ID)
	}
	return plan
}

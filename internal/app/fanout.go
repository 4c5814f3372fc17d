package app

import (
	"context"
	"sync"

	"github.com/example/rappel/internal/models"
)

// formOutcome pairs one form's result with its error. Exactly one of the
// two fields is meaningful.
type formOutcome[T any] struct {
	result T
	err    error
}

// fanOutForms runs work over the forms with at most maxParallel workers.
// Each worker owns one form end to end, so failures stay isolated to their
// own outcome entry. After ctx is cancelled no new forms are started; the
// unstarted ones carry the context error.
func fanOutForms[T any](ctx context.Context, forms []models.FormDefinition, maxParallel int, work func(context.Context, models.FormDefinition) (T, error)) map[string]formOutcome[T] {
	if maxParallel < 1 {
		maxParallel = 1
	}
	if maxParallel > len(forms) {
		maxParallel = len(forms)
	}

	type keyed struct {
		externalID string
		outcome    formOutcome[T]
	}

	tasks := make(chan models.FormDefinition)
	results := make(chan keyed, len(forms))

	var wg sync.WaitGroup
	for i := 0; i < maxParallel; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for form := range tasks {
				result, err := work(ctx, form)
				results <- keyed{externalID: form.ExternalFormID, outcome: formOutcome[T]{result: result, err: err}}
			}
		}()
	}

	for _, form := range forms {
		if ctx.Err() != nil {
			results <- keyed{externalID: form.ExternalFormID, outcome: formOutcome[T]{err: ctx.Err()}}
			continue
		}
		select {
		case <-ctx.Done():
			results <- keyed{externalID: form.ExternalFormID, outcome: formOutcome[T]{err: ctx.Err()}}
		case tasks <- form:
		}
	}
	close(tasks)
	wg.Wait()
	close(results)

	outcomes := make(map[string]formOutcome[T], len(forms))
	for r := range results {
		outcomes[r.externalID] = r.outcome
	}
	return outcomes
}

// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the engine reaches the
// three external collaborators: the registry, the form-response gateway, and
// the notification channel.
package secondary

import (
	"context"
	"time"

	"github.com/example/rappel/internal/models"
)

// Registry defines the secondary port for the remote structured store
// holding people, form definitions, and response records.
//
// Implementations must follow pagination cursors to completion and must
// tolerate individually malformed records (skip with a logged reason) rather
// than failing a whole fetch. Only transport-level failure surfaces as
// models.ErrRegistryUnavailable.
type Registry interface {
	// ListPersons returns every tracked person.
	ListPersons(ctx context.Context) ([]models.Person, error)

	// GetPerson retrieves a single person by registry page id.
	GetPerson(ctx context.Context, personID string) (*models.Person, error)

	// ListForms returns every tracked form definition.
	ListForms(ctx context.Context) ([]models.FormDefinition, error)

	// FindFormByExternalID resolves a form by the id used to query the
	// gateway. Returns models.ErrFormNotFound when absent.
	FindFormByExternalID(ctx context.Context, externalFormID string) (*models.FormDefinition, error)

	// ListResponses returns all response records related to the given form
	// (registry page id, not external id).
	ListResponses(ctx context.Context, formID string) ([]models.ResponseRecord, error)

	// CreateResponse creates a new unanswered response record joining the
	// person to the form. Returns the new record's registry page id.
	CreateResponse(ctx context.Context, formID, personID, title string) (string, error)

	// MarkAnswered flips a record's answered flag to true and stamps the
	// answered-at time. Implementations never clear the flag.
	MarkAnswered(ctx context.Context, recordID string, answeredAt time.Time) error

	// TouchReminder updates a record's last-reminder timestamp.
	TouchReminder(ctx context.Context, recordID string, at time.Time) error
}

// Gateway defines the secondary port for the external form-submission
// service. FetchEmails returns a mapping of normalized email to the
// submission time when the gateway reports one (nil otherwise).
//
// Callers treat any error as "no new information" (fail-open), never as
// "no one answered".
type Gateway interface {
	FetchEmails(ctx context.Context, externalFormID string) (map[string]*time.Time, error)
}

// Channel defines the secondary port for notification delivery. One message
// per call, no batching contract assumed.
type Channel interface {
	Send(ctx context.Context, channelID, text string) error
}

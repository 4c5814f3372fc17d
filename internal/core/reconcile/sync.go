package reconcile

import (
	"time"

	"github.com/example/rappel/internal/models"
)

// SyncDecision classifies what sync should do with one response record.
type SyncDecision int

const (
	// DecisionMarkAnswered means the record flips to answered.
	DecisionMarkAnswered SyncDecision = iota
	// DecisionAlreadyAnswered means the record is answered and stays
	// untouched (monotonic flag).
	DecisionAlreadyAnswered
	// DecisionNoEmail means the record's person has no usable email, so
	// gateway truth cannot apply to them.
	DecisionNoEmail
	// DecisionNotSubmitted means the person's email is absent from the
	// gateway mapping.
	DecisionNotSubmitted
	// DecisionNoPerson means the record references no resolvable person.
	DecisionNoPerson
)

// SyncAction pairs a record with the decision taken and, for
// DecisionMarkAnswered, the answered-at time to write.
type SyncAction struct {
	Record     models.ResponseRecord
	Decision   SyncDecision
	AnsweredAt time.Time
}

// GenerateSyncPlan decides, for each response record, whether gateway truth
// flips it to answered. personEmails maps person id to normalized email;
// emailMap is the gateway's normalized email to optional submission time.
// now supplies the answered-at fallback when the gateway reports no
// timestamp.
//
// The plan never demotes: answered records always yield
// DecisionAlreadyAnswered regardless of gateway contents.
func GenerateSyncPlan(records []models.ResponseRecord, personEmails map[string]string, emailMap map[string]*time.Time, now time.Time) []SyncAction {
	actions := make([]SyncAction, 0, len(records))
	for _, rec := range records {
		actions = append(actions, decideSync(rec, personEmails, emailMap, now))
	}
	return actions
}

func decideSync(rec models.ResponseRecord, personEmails map[string]string, emailMap map[string]*time.Time, now time.Time) SyncAction {
	action := SyncAction{Record: rec}

	if rec.Answered {
		action.Decision = DecisionAlreadyAnswered
		return action
	}
	if rec.PersonID == "" {
		action.Decision = DecisionNoPerson
		return action
	}

	email := models.NormalizeEmail(personEmails[rec.PersonID])
	if email == "" {
		action.Decision = DecisionNoEmail
		return action
	}

	submittedAt, submitted := emailMap[email]
	if !submitted {
		action.Decision = DecisionNotSubmitted
		return action
	}

	action.Decision = DecisionMarkAnswered
	if submittedAt != nil {
		action.AnsweredAt = *submittedAt
	} else {
		action.AnsweredAt = now
	}
	return action
}

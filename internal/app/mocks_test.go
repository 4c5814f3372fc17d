package app

import (
	"context"
	"sync"
	"time"

	"github.com/example/rappel/internal/models"
	"github.com/example/rappel/internal/ports/secondary"
)

type createCall struct {
	FormID   string
	PersonID string
	Title    string
}

type fakeRegistry struct {
	mu        sync.Mutex
	people    []models.Person
	forms     []models.FormDefinition
	responses map[string][]models.ResponseRecord // keyed by form registry id

	created []createCall
	marked  map[string]time.Time
	touched map[string]time.Time

	listPersonsErr   error
	listFormsErr     error
	listResponsesErr error
	findFormErr      error
	createErr        error
	markErr          error
	touchErr         error

	listResponsesCalls int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		responses: make(map[string][]models.ResponseRecord),
		marked:    make(map[string]time.Time),
		touched:   make(map[string]time.Time),
	}
}

func (f *fakeRegistry) ListPersons(ctx context.Context) ([]models.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listPersonsErr != nil {
		return nil, f.listPersonsErr
	}
	return append([]models.Person(nil), f.people...), nil
}

func (f *fakeRegistry) GetPerson(ctx context.Context, personID string) (*models.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.people {
		if p.ID == personID {
			person := p
			return &person, nil
		}
	}
	return nil, models.ErrRegistryUnavailable
}

func (f *fakeRegistry) ListForms(ctx context.Context) ([]models.FormDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listFormsErr != nil {
		return nil, f.listFormsErr
	}
	return append([]models.FormDefinition(nil), f.forms...), nil
}

func (f *fakeRegistry) FindFormByExternalID(ctx context.Context, externalFormID string) (*models.FormDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findFormErr != nil {
		return nil, f.findFormErr
	}
	for _, form := range f.forms {
		if form.ExternalFormID == externalFormID {
			found := form
			return &found, nil
		}
	}
	return nil, models.ErrFormNotFound
}

func (f *fakeRegistry) ListResponses(ctx context.Context, formID string) ([]models.ResponseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listResponsesCalls++
	if f.listResponsesErr != nil {
		return nil, f.listResponsesErr
	}
	return append([]models.ResponseRecord(nil), f.responses[formID]...), nil
}

func (f *fakeRegistry) CreateResponse(ctx context.Context, formID, personID, title string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, createCall{FormID: formID, PersonID: personID, Title: title})
	id := "resp-" + personID
	f.responses[formID] = append(f.responses[formID], models.ResponseRecord{ID: id, FormID: formID, PersonID: personID})
	return id, nil
}

func (f *fakeRegistry) MarkAnswered(ctx context.Context, recordID string, answeredAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.marked[recordID] = answeredAt
	for formID, records := range f.responses {
		for i, rec := range records {
			if rec.ID == recordID {
				at := answeredAt
				f.responses[formID][i].Answered = true
				f.responses[formID][i].AnsweredAt = &at
			}
		}
	}
	return nil
}

func (f *fakeRegistry) TouchReminder(ctx context.Context, recordID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touched[recordID] = at
	return nil
}

type fakeGateway struct {
	mu     sync.Mutex
	emails map[string]map[string]*time.Time // keyed by external form id
	err    error
	calls  int
}

func (f *fakeGateway) FetchEmails(ctx context.Context, externalFormID string) (map[string]*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.emails[externalFormID], nil
}

type sendCall struct {
	ChannelID string
	Text      string
}

type fakeChannel struct {
	mu      sync.Mutex
	sent    []sendCall
	failFor map[string]bool // channel ids that should fail
}

func (f *fakeChannel) Send(ctx context.Context, channelID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[channelID] {
		return models.ErrChannelSendFailed
	}
	f.sent = append(f.sent, sendCall{ChannelID: channelID, Text: text})
	return nil
}

type fakeRunLog struct {
	mu      sync.Mutex
	records []*secondary.RunRecord
	err     error
}

func (f *fakeRunLog) Record(run *secondary.RunRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, run)
	return nil
}

func (f *fakeRunLog) List(limit int) ([]*secondary.RunRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]*secondary.RunRecord(nil), f.records...), nil
}

package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/example/rappel/internal/models"
)

// Collections names the three registry collections the engine reads.
type Collections struct {
	People    string
	Forms     string
	Responses string
}

// Client implements secondary.Registry over the registry's HTTP API.
// Collection queries follow the cursor until the source reports no more
// pages; result order is fetch order and carries no meaning.
type Client struct {
	baseURL     string
	token       string
	collections Collections
	httpClient  *http.Client
}

// NewClient creates a registry client. A nil httpClient gets a default with
// a 20 second timeout.
func NewClient(baseURL, token string, collections Collections, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		collections: collections,
		httpClient:  httpClient,
	}
}

// filter is the registry's query filter object. Exactly one of the
// condition fields is set.
type filter struct {
	Property string             `json:"property"`
	RichText *textCondition     `json:"rich_text,omitempty"`
	Relation *relationCondition `json:"relation,omitempty"`
}

type textCondition struct {
	Equals string `json:"equals"`
}

type relationCondition struct {
	Contains string `json:"contains"`
}

type queryRequest struct {
	Filter      *filter `json:"filter,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
}

type queryResponse struct {
	Records    []Record `json:"records"`
	HasMore    bool     `json:"has_more"`
	NextCursor string   `json:"next_cursor"`
}

// fetchAll queries a collection and follows the pagination cursor to the
// end, concatenating records in fetch order. Records missing an id are
// dropped with a logged reason; only transport failure aborts the fetch.
func (c *Client) fetchAll(ctx context.Context, collectionID string, flt *filter) ([]Record, error) {
	var all []Record
	cursor := ""
	for {
		req := queryRequest{Filter: flt, StartCursor: cursor}
		var resp queryResponse
		url := fmt.Sprintf("%s/collections/%s/query", c.baseURL, collectionID)
		if err := c.do(ctx, http.MethodPost, url, req, &resp); err != nil {
			return nil, err
		}

		for _, rec := range resp.Records {
			if rec.ID == "" {
				log.Printf("[registry] skipping record without id in collection %s", collectionID)
				continue
			}
			all = append(all, rec)
		}

		if !resp.HasMore || resp.NextCursor == "" {
			return all, nil
		}
		cursor = resp.NextCursor
	}
}

// do performs one request and decodes the response body into out (when out
// is non-nil). Any transport or non-2xx failure wraps
// models.ErrRegistryUnavailable.
func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", models.ErrRegistryUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrRegistryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%w: %s %s returned %d: %s", models.ErrRegistryUnavailable, method, url, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", models.ErrRegistryUnavailable, err)
	}
	return nil
}

// ListPersons returns every tracked person. Emails are normalized here so
// the rest of the engine only ever sees the join key form.
func (c *Client) ListPersons(ctx context.Context) ([]models.Person, error) {
	records, err := c.fetchAll(ctx, c.collections.People, nil)
	if err != nil {
		return nil, err
	}
	people := make([]models.Person, 0, len(records))
	for _, rec := range records {
		people = append(people, personFromRecord(rec))
	}
	return people, nil
}

// GetPerson retrieves a single person page.
func (c *Client) GetPerson(ctx context.Context, personID string) (*models.Person, error) {
	var rec Record
	url := fmt.Sprintf("%s/records/%s", c.baseURL, personID)
	if err := c.do(ctx, http.MethodGet, url, nil, &rec); err != nil {
		return nil, err
	}
	person := personFromRecord(rec)
	return &person, nil
}

// ListForms returns every tracked form definition.
func (c *Client) ListForms(ctx context.Context) ([]models.FormDefinition, error) {
	records, err := c.fetchAll(ctx, c.collections.Forms, nil)
	if err != nil {
		return nil, err
	}
	forms := make([]models.FormDefinition, 0, len(records))
	for _, rec := range records {
		form := formFromRecord(rec)
		if form.ExternalFormID == "" {
			log.Printf("[registry] form %s has no external form id, skipping", rec.ID)
			continue
		}
		forms = append(forms, form)
	}
	return forms, nil
}

// FindFormByExternalID resolves a form by the id the gateway knows.
func (c *Client) FindFormByExternalID(ctx context.Context, externalFormID string) (*models.FormDefinition, error) {
	flt := &filter{Property: propExternalForm, RichText: &textCondition{Equals: externalFormID}}
	records, err := c.fetchAll(ctx, c.collections.Forms, flt)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: external id %q", models.ErrFormNotFound, externalFormID)
	}
	form := formFromRecord(records[0])
	return &form, nil
}

// ListResponses returns all response records related to the given form page.
func (c *Client) ListResponses(ctx context.Context, formID string) ([]models.ResponseRecord, error) {
	flt := &filter{Property: propFormRelation, Relation: &relationCondition{Contains: formID}}
	records, err := c.fetchAll(ctx, c.collections.Responses, flt)
	if err != nil {
		return nil, err
	}
	responses := make([]models.ResponseRecord, 0, len(records))
	for _, rec := range records {
		responses = append(responses, responseFromRecord(rec))
	}
	return responses, nil
}

// CreateResponse creates a new unanswered response record for the person.
func (c *Client) CreateResponse(ctx context.Context, formID, personID, title string) (string, error) {
	answered := false
	props := map[string]Property{
		propName:         {Type: "title", Title: []TextFragment{{PlainText: title}}},
		propFormRelation: {Type: "relation", Relation: []RelationRef{{ID: formID}}},
		propPersonRel:    {Type: "relation", Relation: []RelationRef{{ID: personID}}},
		propAnswered:     {Type: "checkbox", Checkbox: &answered},
	}

	var created struct {
		ID string `json:"id"`
	}
	url := fmt.Sprintf("%s/collections/%s/records", c.baseURL, c.collections.Responses)
	body := map[string]any{"properties": props}
	if err := c.do(ctx, http.MethodPost, url, body, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// MarkAnswered flips the answered checkbox and stamps the answered-at date.
func (c *Client) MarkAnswered(ctx context.Context, recordID string, answeredAt time.Time) error {
	answered := true
	props := map[string]Property{
		propAnswered:   {Type: "checkbox", Checkbox: &answered},
		propAnsweredAt: {Type: "date", Date: &DateValue{Start: answeredAt.UTC().Format(time.RFC3339)}},
	}
	return c.patch(ctx, recordID, props)
}

// TouchReminder stamps the last-reminder date.
func (c *Client) TouchReminder(ctx context.Context, recordID string, at time.Time) error {
	props := map[string]Property{
		propLastReminder: {Type: "date", Date: &DateValue{Start: at.UTC().Format(time.RFC3339)}},
	}
	return c.patch(ctx, recordID, props)
}

func (c *Client) patch(ctx context.Context, recordID string, props map[string]Property) error {
	url := fmt.Sprintf("%s/records/%s", c.baseURL, recordID)
	body := map[string]any{"properties": props}
	return c.do(ctx, http.MethodPatch, url, body, nil)
}

func personFromRecord(rec Record) models.Person {
	return models.Person{
		ID:          rec.ID,
		DisplayName: Text(rec, propName),
		Email:       models.NormalizeEmail(Email(rec, propEmail)),
		ChannelID:   strings.TrimSpace(Text(rec, propChannelID)),
	}
}

func formFromRecord(rec Record) models.FormDefinition {
	return models.FormDefinition{
		ID:             rec.ID,
		ExternalFormID: strings.TrimSpace(Text(rec, propExternalForm)),
		Title:          Text(rec, propName),
		Link:           URL(rec, propLink),
		DispatchedAt:   Date(rec, propDispatchedAt),
	}
}

func responseFromRecord(rec Record) models.ResponseRecord {
	response := models.ResponseRecord{
		ID:             rec.ID,
		Answered:       Checkbox(rec, propAnswered),
		AnsweredAt:     Date(rec, propAnsweredAt),
		LastReminderAt: Date(rec, propLastReminder),
	}
	if ids := RelationIDs(rec, propFormRelation); len(ids) > 0 {
		response.FormID = ids[0]
	}
	if ids := RelationIDs(rec, propPersonRel); len(ids) > 0 {
		response.PersonID = ids[0]
	}
	return response
}

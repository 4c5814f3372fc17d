// Package gateway contains the HTTP adapter for the external form-response
// gateway. The gateway's response shape is not fixed; classification happens
// once per payload and the rest of the adapter works off the resolved shape.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/example/rappel/internal/models"
)

// wrapperKeys is the fixed priority list of envelope keys searched when the
// top-level payload is an object.
var wrapperKeys = []string{"items", "rows", "emails", "data", "responses"}

// Adapter implements secondary.Gateway over the gateway's HTTP endpoint.
type Adapter struct {
	endpoint   string
	httpClient *http.Client
}

// NewAdapter creates a gateway adapter. A nil httpClient gets a default
// with a 20 second timeout.
func NewAdapter(endpoint string, httpClient *http.Client) *Adapter {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Adapter{endpoint: endpoint, httpClient: httpClient}
}

// FetchEmails queries the gateway for a form's submissions and normalizes
// them into {email -> optional submission time}. Emails that are empty
// after normalization are dropped. Transport and parse failures return
// models.ErrGatewayUnavailable; callers treat that as "no new information".
func (a *Adapter) FetchEmails(ctx context.Context, externalFormID string) (map[string]*time.Time, error) {
	reqURL, err := url.Parse(a.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: bad endpoint: %v", models.ErrGatewayUnavailable, err)
	}
	query := reqURL.Query()
	query.Set("formId", externalFormID)
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", models.ErrGatewayUnavailable, err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: gateway returned %d for form %s", models.ErrGatewayUnavailable, resp.StatusCode, externalFormID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", models.ErrGatewayUnavailable, err)
	}

	mapping, err := ParsePayload(body)
	if err != nil {
		return nil, fmt.Errorf("%w: form %s: %v", models.ErrGatewayUnavailable, externalFormID, err)
	}
	return mapping, nil
}

// payloadShape classifies the gateway's top-level JSON value.
type payloadShape int

const (
	shapeFlatList payloadShape = iota
	shapeObjectList
	shapeWrapped
	shapeUnknown
)

// ParsePayload normalizes any of the gateway's known response shapes into
// the email mapping. Exported separately from the HTTP fetch so the shape
// handling is testable without a server.
func ParsePayload(body []byte) (map[string]*time.Time, error) {
	shape, elements, envelope, err := classify(body)
	if err != nil {
		return nil, err
	}

	switch shape {
	case shapeFlatList:
		return flatListToMap(elements)
	case shapeObjectList:
		return objectListToMap(elements)
	case shapeWrapped:
		// The envelope wraps a list under one of the known keys; the inner
		// list follows the same flat-vs-object rules.
		for _, key := range wrapperKeys {
			inner, ok := envelope[key]
			if !ok {
				continue
			}
			innerShape, innerElements, _, err := classify(inner)
			if err != nil {
				return nil, err
			}
			switch innerShape {
			case shapeFlatList:
				return flatListToMap(innerElements)
			case shapeObjectList:
				return objectListToMap(innerElements)
			}
		}
		// No known wrapper key held a list; treat as no information.
		return map[string]*time.Time{}, nil
	default:
		return nil, fmt.Errorf("unrecognized payload shape")
	}
}

// classify resolves the payload's shape once. For list shapes it returns the
// raw elements; for the wrapped shape it returns the envelope members.
func classify(body []byte) (payloadShape, []json.RawMessage, map[string]json.RawMessage, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(body, &elements); err == nil {
		if len(elements) == 0 {
			return shapeFlatList, nil, nil, nil
		}
		var probe map[string]json.RawMessage
		if json.Unmarshal(elements[0], &probe) == nil {
			return shapeObjectList, elements, nil, nil
		}
		return shapeFlatList, elements, nil, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		return shapeWrapped, nil, envelope, nil
	}

	return shapeUnknown, nil, nil, fmt.Errorf("payload is neither a list nor an object")
}

func flatListToMap(elements []json.RawMessage) (map[string]*time.Time, error) {
	mapping := make(map[string]*time.Time, len(elements))
	for _, raw := range elements {
		var email string
		if err := json.Unmarshal(raw, &email); err != nil {
			return nil, fmt.Errorf("flat list element is not a string")
		}
		if normalized := models.NormalizeEmail(email); normalized != "" {
			mapping[normalized] = nil
		}
	}
	return mapping, nil
}

// objectEntry is one gateway submission object. Only the email and the
// accepted timestamp fields matter; everything else is ignored.
type objectEntry struct {
	Email       string `json:"email"`
	SubmittedAt string `json:"submitted_at"`
	Timestamp   string `json:"timestamp"`
	TS          string `json:"ts"`
}

func (e objectEntry) submissionTime() *time.Time {
	for _, value := range []string{e.SubmittedAt, e.Timestamp, e.TS} {
		if value == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return &t
		}
	}
	return nil
}

func objectListToMap(elements []json.RawMessage) (map[string]*time.Time, error) {
	mapping := make(map[string]*time.Time, len(elements))
	for _, raw := range elements {
		var entry objectEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			// Mixed lists exist in the wild; skip non-object entries.
			continue
		}
		if normalized := models.NormalizeEmail(entry.Email); normalized != "" {
			mapping[normalized] = entry.submissionTime()
		}
	}
	return mapping, nil
}

// Package channel contains the HTTP adapter for the outbound notification
// channel. One message per call; rate limiting is the dispatcher's job.
package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/rappel/internal/models"
)

// Client implements secondary.Channel against the channel's message
// endpoint. The access token travels as a query parameter, matching the
// channel API's convention.
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a channel client. A nil httpClient gets a default with
// a 20 second timeout.
func NewClient(endpoint, accessToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{endpoint: endpoint, accessToken: accessToken, httpClient: httpClient}
}

type sendRequest struct {
	Recipient recipient `json:"recipient"`
	Message   message   `json:"message"`
}

type recipient struct {
	ID string `json:"id"`
}

type message struct {
	Text string `json:"text"`
}

// Send delivers one text message to the channel id. Failures wrap
// models.ErrChannelSendFailed; the caller decides whether to retry.
func (c *Client) Send(ctx context.Context, channelID, text string) error {
	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("%w: bad endpoint: %v", models.ErrChannelSendFailed, err)
	}
	query := reqURL.Query()
	query.Set("access_token", c.accessToken)
	reqURL.RawQuery = query.Encode()

	payload, err := json.Marshal(sendRequest{
		Recipient: recipient{ID: channelID},
		Message:   message{Text: text},
	})
	if err != nil {
		return fmt.Errorf("%w: encode message: %v", models.ErrChannelSendFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", models.ErrChannelSendFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrChannelSendFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%w: channel returned %d: %s", models.ErrChannelSendFailed, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

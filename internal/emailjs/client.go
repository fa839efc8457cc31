// Package emailjs is a minimal client for the EmailJS REST send endpoint.
package emailjs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/starford/designa/internal/contact"
)

// DefaultEndpoint is the public EmailJS send API.
const DefaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// TimeLayout formats the "time" template parameter.
const TimeLayout = "Jan 2, 2006, 3:04:05 PM MST"

// Client sends contact messages through one EmailJS template.
type Client struct {
	endpoint    string
	credentials contact.Credentials
	httpClient  *http.Client
}

// New creates a client. timeout bounds a whole send, including reading the answer.
func New(endpoint string, creds contact.Credentials, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint:    endpoint,
		credentials: creds,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	TemplateParams templateParams `json:"template_params"`
}

type templateParams struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	ReplyTo string `json:"reply_to"`
	Title   string `json:"title"`
	Time    string `json:"time"`
}

// Send implements contact.Sender. A non-200 answer is returned together
// with an *HTTPError carrying the response text.
func (c *Client) Send(ctx context.Context, msg contact.Message) (int, error) {
	body := sendRequest{
		ServiceID:  c.credentials.ServiceID,
		TemplateID: c.credentials.TemplateID,
		UserID:     c.credentials.PublicKey,
		TemplateParams: templateParams{
			Name:    msg.Name,
			Email:   msg.Email,
			Message: msg.Message,
			ReplyTo: msg.Email,
			Title:   msg.Name,
			Time:    msg.SentAt.Format(TimeLayout),
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode == http.StatusOK {
		return resp.StatusCode, nil
	}
	if readErr != nil {
		return resp.StatusCode, &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
	}
	return resp.StatusCode, &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
}

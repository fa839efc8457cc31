package contact

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// Environment variable names of the email credentials.
const (
	EnvPublicKey  = "EMAILJS_PUBLIC_KEY"
	EnvServiceID  = "EMAILJS_SERVICE_ID"
	EnvTemplateID = "EMAILJS_TEMPLATE_ID"
)

// Credentials identify the email template to send through.
type Credentials struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
}

// Missing lists the environment variables of the absent credentials.
func (c Credentials) Missing() []string {
	var missing []string
	if c.PublicKey == "" {
		missing = append(missing, EnvPublicKey)
	}
	if c.ServiceID == "" {
		missing = append(missing, EnvServiceID)
	}
	if c.TemplateID == "" {
		missing = append(missing, EnvTemplateID)
	}
	return missing
}

// Message is what gets handed to the Sender.
type Message struct {
	Name    string
	Email   string
	Message string
	SentAt  time.Time
}

// Sender delivers a message. status is the HTTP status answered by the
// delivery service; only 200 counts as delivered. err carries the
// service's explanation when there is one.
type Sender interface {
	Send(ctx context.Context, msg Message) (status int, err error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) (int, error)

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, msg Message) (int, error) {
	return f(ctx, msg)
}

// Error categories reported in State.
const (
	CategoryValidation    = "validation"
	CategoryConfiguration = "configuration"
	CategoryNetwork       = "network"
	CategoryRateLimit     = "rate_limit"
	CategoryDelivery      = "delivery"
)

// User-facing delivery messages.
const (
	MsgGeneric       = "Failed to send message. Please try again later."
	MsgServiceConfig = "Email service configuration error. Please contact support."
	MsgNetwork       = "Network error. Please check your connection and try again."
	MsgRateLimit     = "Too many requests. Please wait a moment and try again."
)

// statusError is implemented by delivery errors that carry the HTTP status
// of the rejected request.
type statusError interface {
	HTTPStatus() int
}

// Classify maps a failed delivery to a category and a human-readable message.
// When status is zero it is taken from a wrapped statusError in err.
func Classify(status int, err error) (category, message string) {
	text := ""
	if err != nil {
		text = strings.ToLower(err.Error())
	}
	var se statusError
	if status == 0 && errors.As(err, &se) {
		status = se.HTTPStatus()
	}

	var netErr net.Error
	switch {
	case strings.Contains(text, "invalid api key") || strings.Contains(text, "public key is invalid"):
		return CategoryConfiguration, MsgServiceConfig
	case status == 429 || strings.Contains(text, "rate limit"):
		return CategoryRateLimit, MsgRateLimit
	case errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || strings.Contains(text, "network"):
		return CategoryNetwork, MsgNetwork
	}
	return CategoryDelivery, MsgGeneric
}

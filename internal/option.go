package internal

import (
	"log/slog"

	"github.com/starford/designa/internal/contact"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	logger *slog.Logger
	sender contact.Sender
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger replaces the default JSON logger on stdout.
func WithLogger(logger *slog.Logger) Option {
	return func(a *application) {
		a.logger = logger
	}
}

// WithSender replaces the EmailJS client used for contact delivery.
func WithSender(s contact.Sender) Option {
	return func(a *application) {
		a.sender = s
	}
}

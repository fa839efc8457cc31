// Package apperr holds the sentinel errors shared across packages.
// Callers wrap them with %w and the HTTP layer maps them with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrValidation    = errors.New("validation failed")
	ErrConfiguration = errors.New("service misconfigured")
	ErrDelivery      = errors.New("delivery failed")
	ErrBusy          = errors.New("operation already in progress")
)

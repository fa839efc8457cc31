// Package contact implements the contact form controller: validation,
// the submission lifecycle and the success marker that survives reloads.
package contact

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Form is the visitor-supplied contact form.
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Rules holds the length limits applied to a Form.
type Rules struct {
	MinNameLength    int
	MinMessageLength int
	MaxMessageLength int
}

// DefaultRules returns the limits used by the public site.
func DefaultRules() Rules {
	return Rules{MinNameLength: 2, MinMessageLength: 10, MaxMessageLength: 1000}
}

// Normalize trims surrounding whitespace from every field.
func (f Form) Normalize() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Message: strings.TrimSpace(f.Message),
	}
}

// Empty reports whether every field is blank.
func (f Form) Empty() bool {
	return f.Name == "" && f.Email == "" && f.Message == ""
}

// Validate checks f against r. It returns validation.Errors keyed by the
// json field names. f is expected to be normalized.
func (f Form) Validate(r Rules) error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name,
			validation.Required.Error("Name is required"),
			validation.RuneLength(r.MinNameLength, 0).Error(fmt.Sprintf("Name must be at least %d characters", r.MinNameLength)),
		),
		validation.Field(&f.Email,
			validation.Required.Error("Email is required"),
			is.EmailFormat.Error("Please enter a valid email address"),
		),
		validation.Field(&f.Message,
			validation.Required.Error("Message is required"),
			validation.RuneLength(r.MinMessageLength, r.MaxMessageLength).Error(
				fmt.Sprintf("Message must be between %d and %d characters", r.MinMessageLength, r.MaxMessageLength)),
		),
	)
}

// fieldOrder is the on-page order used when summarizing field errors.
var fieldOrder = []string{"name", "email", "message"}

// fieldMessages flattens validation.Errors into field -> message.
func fieldMessages(err error) (map[string]string, string) {
	errs, ok := err.(validation.Errors)
	if !ok {
		return nil, err.Error()
	}
	fields := make(map[string]string, len(errs))
	var parts []string
	for _, name := range fieldOrder {
		if e, ok := errs[name]; ok && e != nil {
			fields[name] = e.Error()
			parts = append(parts, e.Error()+".")
		}
	}
	return fields, strings.Join(parts, " ")
}

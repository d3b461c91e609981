// Package contact runs the portfolio's contact form: validation, the busy
// submit button, delivery and the toasts that report the outcome.
package contact

import (
	"errors"
	"strings"
)

// ErrMissingFields is returned when any field is blank.
var ErrMissingFields = errors.New("contact: all fields are required")

// ErrBusy is returned while a previous submission is still being sent.
var ErrBusy = errors.New("contact: submission in progress")

// Form is a contact form submission.
type Form struct {
	Name    string `form:"name" json:"name"`
	Email   string `form:"email" json:"email"`
	Subject string `form:"subject" json:"subject"`
	Message string `form:"message" json:"message"`
}

// Normalize trims surrounding whitespace from every field.
func (f Form) Normalize() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Subject: strings.TrimSpace(f.Subject),
		Message: strings.TrimSpace(f.Message),
	}
}

// Missing lists the names of blank fields.
func (f Form) Missing() []string {
	var missing []string
	for _, field := range []struct{ name, value string }{
		{"name", f.Name},
		{"email", f.Email},
		{"subject", f.Subject},
		{"message", f.Message},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}

// Validate returns ErrMissingFields when any field is blank.
func (f Form) Validate() error {
	if len(f.Missing()) > 0 {
		return ErrMissingFields
	}
	return nil
}

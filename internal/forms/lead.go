package forms

import (
	"net/mail"
	"strings"

	"github.com/cybernetics669/nadlan-website/internal/models"
)

// LeadInput is a public inquiry submission.
type LeadInput struct {
	PropertyID string `json:"propertyId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Message    string `json:"message"`
}

// Validate checks the inquiry and returns the lead to persist. Email is
// lower-cased and trimmed before storage; name and message are trimmed.
// Property existence is the store's concern, not validation's.
func (in *LeadInput) Validate() (*models.Lead, FieldErrors) {
	errs := FieldErrors{}

	if strings.TrimSpace(in.PropertyID) == "" {
		errs.add("propertyId", "Property is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		errs.add("name", "Name is required")
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		errs.add("message", "Message is required")
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		errs.add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.add("email", "Invalid email")
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &models.Lead{
		PropertyID: strings.TrimSpace(in.PropertyID),
		Name:       name,
		Email:      email,
		Phone:      strings.TrimSpace(in.Phone),
		Message:    message,
	}, nil
}

package forms

import "testing"

func TestLeadInputValid(t *testing.T) {
	in := LeadInput{
		PropertyID: "b3a7c9d0-1111-2222-3333-444455556666",
		Name:       "  Dana Levi  ",
		Email:      "  Dana.Levi@Example.COM ",
		Phone:      " 050-1234567 ",
		Message:    " Interested in a viewing. ",
	}

	lead, errs := in.Validate()
	if errs != nil {
		t.Fatalf("unexpected field errors: %v", errs)
	}
	if lead.Name != "Dana Levi" {
		t.Errorf("name = %q", lead.Name)
	}
	if lead.Email != "dana.levi@example.com" {
		t.Errorf("email = %q, want lower-cased and trimmed", lead.Email)
	}
	if lead.Phone != "050-1234567" {
		t.Errorf("phone = %q", lead.Phone)
	}
	if lead.Message != "Interested in a viewing." {
		t.Errorf("message = %q", lead.Message)
	}
}

func TestLeadInputRequiredFields(t *testing.T) {
	in := LeadInput{}
	_, errs := in.Validate()
	if errs == nil {
		t.Fatal("expected field errors")
	}
	for _, field := range []string{"propertyId", "name", "email", "message"} {
		if len(errs[field]) == 0 {
			t.Errorf("expected error for %q, got %v", field, errs)
		}
	}
}

func TestLeadInputInvalidEmail(t *testing.T) {
	for _, email := range []string{"not-an-email", "@example.com", "dana@"} {
		in := LeadInput{
			PropertyID: "id",
			Name:       "Dana",
			Email:      email,
			Message:    "Hello",
		}
		if _, errs := in.Validate(); errs == nil || len(errs["email"]) == 0 {
			t.Errorf("email %q: expected email error, got %v", email, errs)
		}
	}
}

func TestLeadInputPhoneOptional(t *testing.T) {
	in := LeadInput{
		PropertyID: "id",
		Name:       "Dana",
		Email:      "dana@example.com",
		Message:    "Hello",
	}
	lead, errs := in.Validate()
	if errs != nil {
		t.Fatalf("unexpected field errors: %v", errs)
	}
	if lead.Phone != "" {
		t.Errorf("phone = %q, want empty", lead.Phone)
	}
}

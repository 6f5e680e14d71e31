package app

import "testing"

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		strong    bool
		want      bool
	}{
		{"strong rejects short", "abc123!", true, false},
		{"strong accepts digit plus special", "abcd12!!", true, true},
		{"strong rejects missing digit", "abcdefg!", true, false},
		{"strong rejects missing special", "abcdefg1", true, false},
		{"strong rejects underscore as special", "abcdef1_", true, false},
		{"strong accepts space as special", "abcdef1 ", true, true},
		{"simple accepts six letters", "abcdef", false, true},
		{"simple rejects five", "abcde", false, false},
		{"simple ignores character classes", "aaaaaa", false, true},
		{"empty fails both", "", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidatePassword(tt.candidate, tt.strong); got != tt.want {
				t.Fatalf("ValidatePassword(%q, %v) = %v, want %v", tt.candidate, tt.strong, got, tt.want)
			}
		})
	}
}

func TestValidateSignupForm(t *testing.T) {
	valid := SignupFormFields{
		FirstName:       "Ada",
		LastName:        "Osei",
		Email:           "ada@example.com",
		Phone:           "+15550001111",
		Password:        "abcd12!!",
		PasswordConfirm: "abcd12!!",
	}

	t.Run("valid form passes", func(t *testing.T) {
		if code, _ := validateSignupForm(valid, true); code != "" {
			t.Fatalf("expected no error, got %q", code)
		}
	})

	t.Run("missing field reported first", func(t *testing.T) {
		req := valid
		req.Email = ""
		code, details := validateSignupForm(req, true)
		if code != ErrMissingFields {
			t.Fatalf("expected %q, got %q", ErrMissingFields, code)
		}
		if details["email"] != "email_required" {
			t.Fatalf("expected email detail, got %v", details)
		}
	})

	t.Run("bad email format", func(t *testing.T) {
		req := valid
		req.Email = "not-an-email"
		if code, _ := validateSignupForm(req, true); code != ErrInvalidEmail {
			t.Fatalf("expected %q, got %q", ErrInvalidEmail, code)
		}
	})

	t.Run("bad phone format", func(t *testing.T) {
		req := valid
		req.Phone = "555-0111"
		if code, _ := validateSignupForm(req, true); code != ErrInvalidPhoneNumber {
			t.Fatalf("expected %q, got %q", ErrInvalidPhoneNumber, code)
		}
	})

	t.Run("weak password under strong policy", func(t *testing.T) {
		req := valid
		req.Password = "abc123!"
		req.PasswordConfirm = "abc123!"
		if code, _ := validateSignupForm(req, true); code != ErrPasswordTooWeak {
			t.Fatalf("expected %q, got %q", ErrPasswordTooWeak, code)
		}
	})

	t.Run("same password passes under simple policy", func(t *testing.T) {
		req := valid
		req.Password = "abc123!"
		req.PasswordConfirm = "abc123!"
		if code, _ := validateSignupForm(req, false); code != "" {
			t.Fatalf("expected no error, got %q", code)
		}
	})

	t.Run("confirmation mismatch", func(t *testing.T) {
		req := valid
		req.PasswordConfirm = "different1!"
		if code, _ := validateSignupForm(req, true); code != ErrPasswordMismatch {
			t.Fatalf("expected %q, got %q", ErrPasswordMismatch, code)
		}
	})
}

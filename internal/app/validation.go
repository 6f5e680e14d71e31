package app

import (
	"net/mail"
	"regexp"
	"strings"
)

const (
	strongMinLength = 8
	simpleMinLength = 6
)

var phonePattern = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// ValidatePassword applies the active policy. Strong requires at least
// strongMinLength characters, a digit, and a character outside
// [A-Za-z0-9_]; simple only requires simpleMinLength characters.
func ValidatePassword(candidate string, strong bool) bool {
	if !strong {
		return len(candidate) >= simpleMinLength
	}
	if len(candidate) < strongMinLength {
		return false
	}

	var hasDigit, hasSpecial bool
	for _, ch := range candidate {
		switch {
		case ch >= '0' && ch <= '9':
			hasDigit = true
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch == '_':
		default:
			hasSpecial = true
		}
	}
	return hasDigit && hasSpecial
}

// validateSignupForm checks the registration payload before any network
// call. It returns the primary error code plus per-field details.
func validateSignupForm(req SignupFormFields, strongPolicy bool) (string, map[string]string) {
	validationErrors := make(map[string]string)

	if strings.TrimSpace(req.FirstName) == "" {
		validationErrors["first_name"] = "first_name_required"
	}
	if strings.TrimSpace(req.LastName) == "" {
		validationErrors["last_name"] = "last_name_required"
	}
	if strings.TrimSpace(req.Email) == "" {
		validationErrors["email"] = "email_required"
	}
	if strings.TrimSpace(req.Phone) == "" {
		validationErrors["phone"] = "phone_required"
	}
	if req.Password == "" {
		validationErrors["password"] = "password_required"
	}

	if len(validationErrors) > 0 {
		return ErrMissingFields, validationErrors
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		return ErrInvalidEmail, map[string]string{"email": "invalid_email_format"}
	}
	if !phonePattern.MatchString(req.Phone) {
		return ErrInvalidPhoneNumber, map[string]string{"phone": "invalid_phone_format"}
	}
	if !ValidatePassword(req.Password, strongPolicy) {
		return ErrPasswordTooWeak, map[string]string{"password": "policy_violation"}
	}
	if req.Password != req.PasswordConfirm {
		return ErrPasswordMismatch, map[string]string{"password_confirm": "passwords_do_not_match"}
	}

	return "", nil
}

// validateNewPassword is shared by change-password and reset-password.
func validateNewPassword(password, confirm string, strongPolicy bool) (string, map[string]string) {
	if password != confirm {
		return ErrPasswordMismatch, map[string]string{"password_confirm": "passwords_do_not_match"}
	}
	if !ValidatePassword(password, strongPolicy) {
		return ErrPasswordTooWeak, map[string]string{"password": "policy_violation"}
	}
	return "", nil
}

package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	ErrUnmarshal               = "invalid_request_body"
	ErrMissingFields           = "missing_required_fields"
	ErrInvalidEmail            = "invalid_email"
	ErrInvalidPhoneNumber      = "invalid_phone_number"
	ErrPasswordTooWeak         = "password_too_weak"
	ErrPasswordMismatch        = "password_mismatch"
	ErrUserExists              = "user_already_exists"
	ErrEmailAlreadyInUse       = "email_already_in_use"
	ErrCaptchaFailed           = "captcha_failed"
	ErrTooManyRequests         = "too_many_requests"
	ErrVerificationCodeInvalid = "verification_code_invalid"
	ErrVerificationExpired     = "verification_expired"
	ErrChallengeNotFound       = "verification_not_found"
	ErrSignupRequestFailed     = "signup_request_failed"
	ErrSendCodeFailed          = "send_code_failed"
	ErrInvalidCredentials      = "invalid_credentials"
	ErrUnauthorized            = "unauthorized"
	ErrForbidden               = "forbidden"
	ErrExpiredToken            = "expired_token"
	ErrInvalidToken            = "invalid_token"
	ErrInvalidActionMode       = "invalid_action_mode"
	ErrInvalidActionCode       = "invalid_action_code"
	ErrExpiredActionCode       = "expired_action_code"
	ErrUserNotFound            = "user_not_found"
	ErrNotFound                = "not_found"
	ErrInvalidKYCSection       = "invalid_kyc_section"
	ErrInvalidAmount           = "invalid_amount"
	ErrInvalidRequestType      = "invalid_request_type"
	ErrItemNotFound            = "item_not_found"
	ErrInvalidStatus           = "invalid_status"
	ErrUploadFailed            = "upload_failed"
	ErrHashPassword            = "internal_hash_error"
	ErrGenerateTokens          = "internal_generate_tokens_error"
	ErrSomethingWentWrong      = "something_went_wrong"
)

var errorStatusMap = map[string]int{
	ErrUnmarshal:               http.StatusBadRequest,
	ErrMissingFields:           http.StatusBadRequest,
	ErrInvalidEmail:            http.StatusBadRequest,
	ErrInvalidPhoneNumber:      http.StatusBadRequest,
	ErrPasswordTooWeak:         http.StatusBadRequest,
	ErrPasswordMismatch:        http.StatusBadRequest,
	ErrUserExists:              http.StatusConflict,
	ErrEmailAlreadyInUse:       http.StatusConflict,
	ErrCaptchaFailed:           http.StatusBadRequest,
	ErrTooManyRequests:         http.StatusTooManyRequests,
	ErrVerificationCodeInvalid: http.StatusBadRequest,
	ErrVerificationExpired:     http.StatusGone,
	ErrChallengeNotFound:       http.StatusNotFound,
	ErrSignupRequestFailed:     http.StatusInternalServerError,
	ErrSendCodeFailed:          http.StatusBadGateway,
	ErrInvalidCredentials:      http.StatusUnauthorized,
	ErrUnauthorized:            http.StatusUnauthorized,
	ErrForbidden:               http.StatusForbidden,
	ErrExpiredToken:            http.StatusUnauthorized,
	ErrInvalidToken:            http.StatusUnauthorized,
	ErrInvalidActionMode:       http.StatusBadRequest,
	ErrInvalidActionCode:       http.StatusBadRequest,
	ErrExpiredActionCode:       http.StatusGone,
	ErrUserNotFound:            http.StatusNotFound,
	ErrNotFound:                http.StatusNotFound,
	ErrInvalidKYCSection:       http.StatusBadRequest,
	ErrInvalidAmount:           http.StatusBadRequest,
	ErrInvalidRequestType:      http.StatusBadRequest,
	ErrItemNotFound:            http.StatusNotFound,
	ErrInvalidStatus:           http.StatusBadRequest,
	ErrUploadFailed:            http.StatusBadGateway,
	ErrHashPassword:            http.StatusInternalServerError,
	ErrGenerateTokens:          http.StatusInternalServerError,
	ErrSomethingWentWrong:      http.StatusInternalServerError,
}

// statusForError falls through to 500 for unrecognized codes, which are
// still surfaced raw in the body.
func statusForError(code string) int {
	if status, ok := errorStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, code string, details map[string]string) {
	c.JSON(statusForError(code), ErrorResponse{Error: code, Details: details})
}

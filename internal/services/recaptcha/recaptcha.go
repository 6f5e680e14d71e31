// Package recaptcha verifies bot-check tokens before OTP issuance.
package recaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

var ErrVerificationFailed = errors.New("captcha verification failed")

// Verifier is the bot-check surface the registration workflow depends on.
type Verifier interface {
	Verify(ctx context.Context, token string) error
}

type RecaptchaService struct {
	secret     string
	verifyURL  string
	httpClient *http.Client
}

func NewRecaptchaService() *RecaptchaService {
	return &RecaptchaService{
		secret:     os.Getenv("RECAPTCHA_SECRET"),
		verifyURL:  getEnv("RECAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify checks the token with the provider. An empty token fails without a
// network call.
func (s *RecaptchaService) Verify(ctx context.Context, token string) error {
	if token == "" {
		return ErrVerificationFailed
	}

	form := url.Values{}
	form.Set("secret", s.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("captcha request failed: %w", err)
	}
	defer resp.Body.Close()

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding captcha response: %w", err)
	}
	if !body.Success {
		return fmt.Errorf("%w: %s", ErrVerificationFailed, strings.Join(body.ErrorCodes, ","))
	}
	return nil
}

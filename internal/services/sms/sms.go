// Package sms delivers one-time codes through an HTTP SMS gateway.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"time"
)

var (
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	ErrTooManyRequests    = errors.New("sms gateway rate limited")
	ErrSendFailed         = errors.New("sms send failed")
)

// E.164: leading + and up to 15 digits.
var phonePattern = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// Sender is the OTP delivery surface the registration workflow depends on.
type Sender interface {
	SendCode(ctx context.Context, phone, code string) error
}

type SMSService struct {
	apiKey     string
	apiURL     string
	from       string
	httpClient *http.Client
}

func NewSMSService() *SMSService {
	return &SMSService{
		apiKey:     os.Getenv("SMS_API_KEY"),
		apiURL:     os.Getenv("SMS_API_URL"),
		from:       getEnv("SMS_FROM", "Altivest"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type smsRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

// SendCode delivers a verification code to phone. The phone number is
// validated before any network call.
func (s *SMSService) SendCode(ctx context.Context, phone, code string) error {
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhoneNumber
	}

	payload, err := json.Marshal(smsRequest{
		From: s.from,
		To:   phone,
		Body: fmt.Sprintf("Your Altivest verification code is %s", code),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusAccepted:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrTooManyRequests
	case resp.StatusCode == http.StatusBadRequest:
		return ErrInvalidPhoneNumber
	default:
		return fmt.Errorf("%w: gateway returned status %d", ErrSendFailed, resp.StatusCode)
	}
}

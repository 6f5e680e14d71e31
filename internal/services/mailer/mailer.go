// Package mailer sends transactional email through an HTTP mail API.
package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Sender is the email surface the handlers depend on.
type Sender interface {
	SendPasswordReset(toEmail, toName, code string) error
	SendEmailVerification(toEmail, toName, code string) error
}

type MailerService struct {
	apiKey     string
	apiURL     string
	portalURL  string
	fromEmail  string
	httpClient *http.Client
}

func NewMailerService() *MailerService {
	return &MailerService{
		apiKey:     os.Getenv("MAIL_API_KEY"),
		apiURL:     os.Getenv("MAIL_API_URL"),
		portalURL:  getEnv("PORTAL_BASE_URL", "http://localhost:3000"),
		fromEmail:  getEnv("MAIL_FROM", "noreply@altivest.example"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type emailRecipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type emailRequest struct {
	From     emailRecipient   `json:"from"`
	To       []emailRecipient `json:"to"`
	Subject  string           `json:"subject"`
	HTML     string           `json:"html,omitempty"`
	Text     string           `json:"text,omitempty"`
	Category string           `json:"category,omitempty"`
}

// actionLink builds the portal's action URL; the client dispatches on the
// mode query parameter.
func (m *MailerService) actionLink(mode, code string) string {
	q := url.Values{}
	q.Set("mode", mode)
	q.Set("oobCode", code)
	return m.portalURL + "/auth-action?" + q.Encode()
}

// SendPasswordReset mails a reset link. The link expires in 1 hour.
func (m *MailerService) SendPasswordReset(toEmail, toName, code string) error {
	link := m.actionLink("resetPassword", code)

	htmlBody := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>We received a request to reset your password. Use the link below:</p>
		<p><a href="%s">Reset password</a></p>
		<p>This link will expire in 1 hour. If you didn't request a reset,
		you can ignore this email.</p>
	`, toName, link)

	textBody := fmt.Sprintf(
		"Hello %s,\n\nWe received a request to reset your password:\n\n%s\n\nThis link will expire in 1 hour.\n",
		toName, link)

	return m.sendEmail(emailRequest{
		From:     emailRecipient{Email: m.fromEmail, Name: "Altivest"},
		To:       []emailRecipient{{Email: toEmail, Name: toName}},
		Subject:  "Reset your password",
		HTML:     htmlBody,
		Text:     textBody,
		Category: "password_reset",
	})
}

// SendEmailVerification mails a verify-email action link.
func (m *MailerService) SendEmailVerification(toEmail, toName, code string) error {
	link := m.actionLink("verifyEmail", code)

	htmlBody := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Please confirm your email address:</p>
		<p><a href="%s">Verify email</a></p>
	`, toName, link)

	textBody := fmt.Sprintf(
		"Hello %s,\n\nPlease confirm your email address:\n\n%s\n",
		toName, link)

	return m.sendEmail(emailRequest{
		From:     emailRecipient{Email: m.fromEmail, Name: "Altivest"},
		To:       []emailRecipient{{Email: toEmail, Name: toName}},
		Subject:  "Verify your email",
		HTML:     htmlBody,
		Text:     textBody,
		Category: "email_verification",
	})
}

func (m *MailerService) sendEmail(emailReq emailRequest) error {
	payload, err := json.Marshal(emailReq)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, m.apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("mail API returned status: %d", resp.StatusCode)
	}
	return nil
}

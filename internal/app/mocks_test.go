package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/altivest/portal-service/internal/otp"
	"github.com/altivest/portal-service/internal/sdk/docdb"
	"github.com/altivest/portal-service/internal/sdk/middleware"
	"github.com/altivest/portal-service/internal/sdk/models"
	"github.com/altivest/portal-service/internal/services/events"
	"github.com/altivest/portal-service/internal/services/hash"
	"github.com/altivest/portal-service/internal/services/jwt"
	"github.com/altivest/portal-service/internal/services/recaptcha"
	"github.com/altivest/portal-service/internal/services/sentry"
	"github.com/altivest/portal-service/internal/services/sms"
)

// mockStore embeds the Service interface so each test overrides only the
// methods its handler touches; anything else panics loudly.
type mockStore struct {
	docdb.Service

	healthFn                    func() map[string]string
	getUserByIDFn               func(ctx context.Context, userID string) (models.UserProfile, error)
	getPasswordPolicyFn         func(ctx context.Context) (models.PasswordPolicy, error)
	hasRegistrationConflictFn   func(ctx context.Context, email, phone string) (bool, error)
	createRegistrationRequestFn func(ctx context.Context, req models.RegistrationRequest) (models.RegistrationRequest, error)
	createAdminNotificationFn   func(ctx context.Context, category, message string) (models.Notification, error)
	createTransactionRequestFn  func(ctx context.Context, req models.TransactionRequest) (models.TransactionRequest, error)
	getBondFn                   func(ctx context.Context, id string) (models.Bond, error)
	getIPOFn                    func(ctx context.Context, id string) (models.IPO, error)
	getTermProductFn            func(ctx context.Context, id string) (models.TermProduct, error)
	listNotificationsFn         func(ctx context.Context, userID string) ([]models.Notification, error)
	deleteNotificationFn        func(ctx context.Context, userID, id string) error
}

func (m *mockStore) Health() map[string]string {
	if m.healthFn != nil {
		return m.healthFn()
	}
	return map[string]string{"status": "up"}
}

func (m *mockStore) GetUserByID(ctx context.Context, userID string) (models.UserProfile, error) {
	return m.getUserByIDFn(ctx, userID)
}

func (m *mockStore) GetPasswordPolicy(ctx context.Context) (models.PasswordPolicy, error) {
	if m.getPasswordPolicyFn != nil {
		return m.getPasswordPolicyFn(ctx)
	}
	return models.PasswordPolicy{Strong: true}, nil
}

func (m *mockStore) HasRegistrationConflict(ctx context.Context, email, phone string) (bool, error) {
	return m.hasRegistrationConflictFn(ctx, email, phone)
}

func (m *mockStore) CreateRegistrationRequest(ctx context.Context, req models.RegistrationRequest) (models.RegistrationRequest, error) {
	if m.createRegistrationRequestFn != nil {
		return m.createRegistrationRequestFn(ctx, req)
	}
	req.ID = uuid.NewString()
	req.Status = models.StatusPending
	req.CreatedAt = time.Now()
	return req, nil
}

func (m *mockStore) CreateAdminNotification(ctx context.Context, category, message string) (models.Notification, error) {
	if m.createAdminNotificationFn != nil {
		return m.createAdminNotificationFn(ctx, category, message)
	}
	return models.Notification{ID: uuid.NewString(), Category: category, Message: message}, nil
}

func (m *mockStore) CreateTransactionRequest(ctx context.Context, req models.TransactionRequest) (models.TransactionRequest, error) {
	if m.createTransactionRequestFn != nil {
		return m.createTransactionRequestFn(ctx, req)
	}
	req.ID = uuid.NewString()
	req.Status = models.StatusPending
	req.CreatedAt = time.Now()
	return req, nil
}

func (m *mockStore) GetBond(ctx context.Context, id string) (models.Bond, error) {
	return m.getBondFn(ctx, id)
}

func (m *mockStore) GetIPO(ctx context.Context, id string) (models.IPO, error) {
	return m.getIPOFn(ctx, id)
}

func (m *mockStore) GetTermProduct(ctx context.Context, id string) (models.TermProduct, error) {
	return m.getTermProductFn(ctx, id)
}

func (m *mockStore) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	return m.listNotificationsFn(ctx, userID)
}

func (m *mockStore) DeleteNotification(ctx context.Context, userID, id string) error {
	return m.deleteNotificationFn(ctx, userID, id)
}

// mockSMSSender records every code it is asked to deliver.
type mockSMSSender struct {
	calls []struct{ Phone, Code string }
	err   error
}

func (m *mockSMSSender) SendCode(ctx context.Context, phone, code string) error {
	m.calls = append(m.calls, struct{ Phone, Code string }{phone, code})
	return m.err
}

var _ sms.Sender = (*mockSMSSender)(nil)

type mockCaptcha struct {
	calls int
	err   error
}

func (m *mockCaptcha) Verify(ctx context.Context, token string) error {
	m.calls++
	return m.err
}

var _ recaptcha.Verifier = (*mockCaptcha)(nil)

type mockPublisher struct {
	published []string
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, category, eventType string, data any) error {
	m.published = append(m.published, category+":"+eventType)
	return m.err
}

var _ events.Publisher = (*mockPublisher)(nil)

// newTestApp wires an App with mocks; services not under test stay nil.
func newTestApp(db docdb.Service, smsSender sms.Sender, captcha recaptcha.Verifier, publisher events.Publisher) *App {
	return NewApp(
		db,
		jwt.NewTokenService(),
		hash.NewHashService(),
		sentry.NewSentryService(),
		nil,
		smsSender,
		captcha,
		nil,
		publisher,
		otp.NewStore(),
	)
}

// asUser injects the authenticated user the way the middleware would.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

// Package app provides the HTTP handlers for the investor portal API.
package app

import (
	"github.com/gin-gonic/gin"

	"github.com/altivest/portal-service/internal/otp"
	"github.com/altivest/portal-service/internal/sdk/docdb"
	"github.com/altivest/portal-service/internal/services/blob"
	"github.com/altivest/portal-service/internal/services/events"
	"github.com/altivest/portal-service/internal/services/hash"
	"github.com/altivest/portal-service/internal/services/jwt"
	"github.com/altivest/portal-service/internal/services/mailer"
	"github.com/altivest/portal-service/internal/services/recaptcha"
	"github.com/altivest/portal-service/internal/services/sentry"
	"github.com/altivest/portal-service/internal/services/sms"
)

type App struct {
	db      docdb.Service
	jwt     *jwt.TokenService
	hash    *hash.HashService
	sentry  *sentry.SentryService
	mailer  mailer.Sender
	sms     sms.Sender
	captcha recaptcha.Verifier
	blob    blob.Storage
	events  events.Publisher
	otp     *otp.Store
}

func NewApp(
	db docdb.Service,
	jwtService *jwt.TokenService,
	hashService *hash.HashService,
	sentryService *sentry.SentryService,
	mailerService mailer.Sender,
	smsService sms.Sender,
	captchaService recaptcha.Verifier,
	blobService blob.Storage,
	publisher events.Publisher,
	otpStore *otp.Store,
) *App {
	return &App{
		db:      db,
		jwt:     jwtService,
		hash:    hashService,
		sentry:  sentryService,
		mailer:  mailerService,
		sms:     smsService,
		captcha: captchaService,
		blob:    blobService,
		events:  publisher,
		otp:     otpStore,
	}
}

// toSentry tags the handler and step that produced an error before capture.
// The capture has to happen inside the callback; the scope is popped as soon
// as WithScope returns.
func (a *App) toSentry(c *gin.Context, handler, step string, level sentry.Level, err error) {
	a.sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		scope.SetTag("handler", handler)
		scope.SetTag("step", step)
		scope.SetTag("path", c.Request.URL.Path)
		a.sentry.CaptureException(err)
	})
}

package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altivest/portal-service/internal/otp"
	"github.com/altivest/portal-service/internal/sdk/docdb"
	"github.com/altivest/portal-service/internal/sdk/models"
	"github.com/altivest/portal-service/internal/services/events"
	"github.com/altivest/portal-service/internal/services/sentry"
	"github.com/altivest/portal-service/internal/services/sms"
	"github.com/altivest/portal-service/internal/workflow"
)

// HandleRegisterStart validates the signup form, checks for an existing
// account or pending request, and sends the verification code. The duplicate
// check runs before any SMS leaves the building: a taken email or phone never
// costs a code. The hashed form rides along with the challenge until the code
// is accepted.
func (a *App) HandleRegisterStart(c *gin.Context) {
	var req SignupFormFields
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	policy, err := a.db.GetPasswordPolicy(c.Request.Context())
	if err != nil {
		a.toSentry(c, "RegisterStart", "get_password_policy", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	state := workflow.NextRegistration(workflow.Idle, workflow.EventSubmit)

	if code, details := validateSignupForm(req, policy.Strong); code != "" {
		writeError(c, code, details)
		return
	}

	conflict, err := a.db.HasRegistrationConflict(c.Request.Context(), req.Email, req.Phone)
	if err != nil {
		a.toSentry(c, "RegisterStart", "duplicate_check", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	if conflict {
		writeError(c, ErrUserExists, nil)
		return
	}

	if err := a.captcha.Verify(c.Request.Context(), req.CaptchaToken); err != nil {
		writeError(c, ErrCaptchaFailed, nil)
		return
	}

	hashed, err := a.hash.HashPassword(req.Password)
	if err != nil {
		a.toSentry(c, "RegisterStart", "hash_password", sentry.LevelError, err)
		writeError(c, ErrHashPassword, nil)
		return
	}

	pending := models.RegistrationRequest{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        hashed,
		JointAccount:    req.JointAccount,
		SecondaryHolder: req.SecondaryHolder,
	}

	challengeID, code, err := a.otp.Create(req.Phone, pending)
	if err != nil {
		a.toSentry(c, "RegisterStart", "create_challenge", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	if err := a.sms.SendCode(c.Request.Context(), req.Phone, code); err != nil {
		a.otp.Complete(challengeID)
		if !errors.Is(err, sms.ErrInvalidPhoneNumber) && !errors.Is(err, sms.ErrTooManyRequests) {
			a.toSentry(c, "RegisterStart", "send_code", sentry.LevelError, err)
		}
		writeError(c, smsErrorCode(err), nil)
		return
	}

	state = workflow.NextRegistration(state, workflow.EventCodeSent)

	c.JSON(http.StatusOK, RegisterStartResponse{
		ChallengeID:    challengeID,
		State:          state.String(),
		ResendCooldown: a.otp.ResendRemaining(challengeID),
	})
}

// HandleRegisterResend re-sends the verification code on an existing
// challenge once the cooldown has elapsed.
func (a *App) HandleRegisterResend(c *gin.Context) {
	var req ResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}
	if req.ChallengeID == "" {
		writeError(c, ErrMissingFields, map[string]string{"challenge_id": "required"})
		return
	}

	phone, code, err := a.otp.Resend(req.ChallengeID)
	if err != nil {
		switch {
		case errors.Is(err, otp.ErrNotFound):
			writeError(c, ErrChallengeNotFound, nil)
		case errors.Is(err, otp.ErrExpired):
			writeError(c, ErrVerificationExpired, nil)
		case errors.Is(err, otp.ErrCooldownActive):
			writeError(c, ErrTooManyRequests, map[string]string{
				"retry_in": fmt.Sprintf("%d", a.otp.ResendRemaining(req.ChallengeID)),
			})
		default:
			a.toSentry(c, "RegisterResend", "resend", sentry.LevelError, err)
			writeError(c, ErrSomethingWentWrong, nil)
		}
		return
	}

	if err := a.sms.SendCode(c.Request.Context(), phone, code); err != nil {
		// The challenge stays alive; the user can retry after the cooldown.
		if !errors.Is(err, sms.ErrInvalidPhoneNumber) && !errors.Is(err, sms.ErrTooManyRequests) {
			a.toSentry(c, "RegisterResend", "send_code", sentry.LevelError, err)
		}
		writeError(c, smsErrorCode(err), nil)
		return
	}

	c.JSON(http.StatusOK, RegisterStartResponse{
		ChallengeID:    req.ChallengeID,
		State:          workflow.OTPSent.String(),
		ResendCooldown: a.otp.ResendRemaining(req.ChallengeID),
	})
}

// HandleRegisterVerify checks the six entered digits against the challenge
// and, on a match, persists the registration request. The admin feed write
// and stream publish are best effort; their outcome is reported in the
// notified field, never as a failure of the signup itself.
func (a *App) HandleRegisterVerify(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}
	if req.ChallengeID == "" {
		writeError(c, ErrMissingFields, map[string]string{"challenge_id": "required"})
		return
	}

	if len(req.Entries) != otp.CodeLength {
		writeError(c, ErrVerificationCodeInvalid, map[string]string{"entries": "expected_six_digits"})
		return
	}
	var buf otp.CodeBuffer
	for i, entry := range req.Entries {
		if !buf.Set(i, entry) {
			writeError(c, ErrVerificationCodeInvalid, map[string]string{"entries": "digits_only"})
			return
		}
	}
	code, ok := buf.Code()
	if !ok {
		writeError(c, ErrVerificationCodeInvalid, map[string]string{"entries": "incomplete"})
		return
	}

	if err := a.otp.Verify(req.ChallengeID, code); err != nil {
		switch {
		case errors.Is(err, otp.ErrNotFound):
			writeError(c, ErrChallengeNotFound, nil)
		case errors.Is(err, otp.ErrExpired):
			writeError(c, ErrVerificationExpired, nil)
		case errors.Is(err, otp.ErrTooManyAttempts):
			writeError(c, ErrTooManyRequests, nil)
		case errors.Is(err, otp.ErrCodeMismatch):
			writeError(c, ErrVerificationCodeInvalid, nil)
		default:
			a.toSentry(c, "RegisterVerify", "verify", sentry.LevelError, err)
			writeError(c, ErrSomethingWentWrong, nil)
		}
		return
	}

	payload, err := a.otp.Payload(req.ChallengeID)
	if err != nil {
		writeError(c, ErrChallengeNotFound, nil)
		return
	}
	pending, ok := payload.(models.RegistrationRequest)
	if !ok {
		a.toSentry(c, "RegisterVerify", "payload", sentry.LevelError, fmt.Errorf("challenge %s: unexpected payload %T", req.ChallengeID, payload))
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	created, err := a.db.CreateRegistrationRequest(c.Request.Context(), pending)
	if err != nil {
		if errors.Is(err, docdb.ErrDBDuplicatedEntry) {
			// Lost the race against a concurrent signup with the same details.
			a.otp.Complete(req.ChallengeID)
			writeError(c, ErrUserExists, nil)
			return
		}
		a.toSentry(c, "RegisterVerify", "persist_request", sentry.LevelError, err)
		writeError(c, ErrSignupRequestFailed, nil)
		return
	}
	a.otp.Complete(req.ChallengeID)

	notified := a.notifyAdmin(c, models.CategorySignup, events.SignupRequested,
		fmt.Sprintf("New signup request from %s %s (%s)", created.FirstName, created.LastName, created.Email),
		created)

	c.JSON(http.StatusCreated, RegisterVerifyResponse{
		State:     workflow.RequestSubmitted.String(),
		RequestID: created.ID,
		Notified:  notified,
	})
}

// notifyAdmin writes the admin feed entry and publishes the stream event.
// Failures are captured but never surfaced as request errors; the caller
// reports the combined outcome in its response.
func (a *App) notifyAdmin(c *gin.Context, category, eventType, message string, data any) bool {
	notified := true

	if _, err := a.db.CreateAdminNotification(c.Request.Context(), category, message); err != nil {
		a.toSentry(c, "notifyAdmin", "create_notification", sentry.LevelWarning, err)
		notified = false
	}

	if a.events != nil {
		if err := a.events.Publish(c.Request.Context(), category, eventType, data); err != nil {
			a.toSentry(c, "notifyAdmin", "publish_event", sentry.LevelWarning, err)
			notified = false
		}
	}

	return notified
}

func smsErrorCode(err error) string {
	switch {
	case errors.Is(err, sms.ErrInvalidPhoneNumber):
		return ErrInvalidPhoneNumber
	case errors.Is(err, sms.ErrTooManyRequests):
		return ErrTooManyRequests
	default:
		return ErrSendCodeFailed
	}
}

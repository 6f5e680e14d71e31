package app

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/altivest/portal-service/internal/sdk/docdb"
	"github.com/altivest/portal-service/internal/sdk/middleware"
	"github.com/altivest/portal-service/internal/sdk/models"
	"github.com/altivest/portal-service/internal/services/sentry"
	"github.com/altivest/portal-service/internal/workflow"
)

const actionTokenTTL = time.Hour

// HandleForgotPassword mails a reset link when the address belongs to an
// account. The response is identical either way; it never confirms whether
// an email is registered.
func (a *App) HandleForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}
	if req.Email == "" {
		writeError(c, ErrMissingFields, map[string]string{"email": "required"})
		return
	}

	user, err := a.db.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, docdb.ErrDBNotFound) {
			a.toSentry(c, "ForgotPassword", "get_user", sentry.LevelError, err)
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	code, err := generateActionCode()
	if err != nil {
		a.toSentry(c, "ForgotPassword", "generate_code", sentry.LevelError, err)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	if _, err := a.db.CreateActionToken(c.Request.Context(), models.NewActionToken{
		UserID:    user.ID,
		Mode:      models.ModeResetPassword,
		Code:      code,
		ExpiresAt: time.Now().Add(actionTokenTTL),
	}); err != nil {
		a.toSentry(c, "ForgotPassword", "create_token", sentry.LevelError, err)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	if err := a.mailer.SendPasswordReset(user.Email, user.FirstName, code); err != nil {
		a.toSentry(c, "ForgotPassword", "send_mail", sentry.LevelWarning, err)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleAction dispatches an out-of-band action link on its mode. A valid
// resetPassword code moves the flow to the form stage; a verifyEmail code is
// consumed on the spot.
func (a *App) HandleAction(c *gin.Context) {
	mode := c.Query("mode")
	oobCode := c.Query("oobCode")

	if mode != models.ModeResetPassword && mode != models.ModeVerifyEmail {
		writeError(c, ErrInvalidActionMode, map[string]string{"mode": mode})
		return
	}
	if oobCode == "" {
		writeError(c, ErrMissingFields, map[string]string{"oobCode": "required"})
		return
	}

	token, code := a.lookupActionToken(c, mode, oobCode)
	if code != "" {
		writeError(c, code, nil)
		return
	}

	switch mode {
	case models.ModeVerifyEmail:
		if err := a.db.MarkEmailVerified(c.Request.Context(), token.UserID); err != nil {
			a.toSentry(c, "Action", "mark_verified", sentry.LevelError, err)
			writeError(c, ErrSomethingWentWrong, nil)
			return
		}
		if err := a.db.MarkActionTokenUsed(c.Request.Context(), token.ID); err != nil {
			a.toSentry(c, "Action", "mark_used", sentry.LevelWarning, err)
		}
		c.JSON(http.StatusOK, ActionStateResponse{Mode: mode, Stage: workflow.Success.String()})

	case models.ModeResetPassword:
		state := workflow.NextReset(workflow.ResetState{Stage: workflow.AwaitingCode},
			workflow.ResetEvent{Kind: workflow.EventCodeValid})
		c.JSON(http.StatusOK, ActionStateResponse{Mode: mode, Stage: state.Stage.String()})
	}
}

// HandleResetPassword consumes a resetPassword action token and sets the new
// password, validated against the current policy.
func (a *App) HandleResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}
	if req.OobCode == "" || req.Password == "" {
		writeError(c, ErrMissingFields, nil)
		return
	}

	token, code := a.lookupActionToken(c, models.ModeResetPassword, req.OobCode)
	if code != "" {
		writeError(c, code, nil)
		return
	}

	policy, err := a.db.GetPasswordPolicy(c.Request.Context())
	if err != nil {
		a.toSentry(c, "ResetPassword", "get_password_policy", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	if code, details := validateNewPassword(req.Password, req.PasswordConfirm, policy.Strong); code != "" {
		writeError(c, code, details)
		return
	}

	hashed, err := a.hash.HashPassword(req.Password)
	if err != nil {
		a.toSentry(c, "ResetPassword", "hash_password", sentry.LevelError, err)
		writeError(c, ErrHashPassword, nil)
		return
	}
	if err := a.db.UpdateUserPassword(c.Request.Context(), token.UserID, hashed); err != nil {
		a.toSentry(c, "ResetPassword", "update_password", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	if err := a.db.MarkActionTokenUsed(c.Request.Context(), token.ID); err != nil {
		a.toSentry(c, "ResetPassword", "mark_used", sentry.LevelWarning, err)
	}
	if err := a.db.DeleteRefreshTokensByUserID(c.Request.Context(), token.UserID); err != nil {
		a.toSentry(c, "ResetPassword", "delete_tokens", sentry.LevelWarning, err)
	}

	state := workflow.NextReset(workflow.ResetState{Stage: workflow.ShowingForm},
		workflow.ResetEvent{Kind: workflow.EventSubmitOK})
	c.JSON(http.StatusOK, ActionStateResponse{Mode: models.ModeResetPassword, Stage: state.Stage.String()})
}

// HandleSendVerifyEmail mails a fresh verification link to the authenticated
// user.
func (a *App) HandleSendVerifyEmail(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	user, err := a.db.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, ErrUserNotFound, nil)
		return
	}
	if user.EmailVerified {
		c.JSON(http.StatusOK, gin.H{"status": "already_verified"})
		return
	}

	code, err := generateActionCode()
	if err != nil {
		a.toSentry(c, "SendVerifyEmail", "generate_code", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	if _, err := a.db.CreateActionToken(c.Request.Context(), models.NewActionToken{
		UserID:    user.ID,
		Mode:      models.ModeVerifyEmail,
		Code:      code,
		ExpiresAt: time.Now().Add(actionTokenTTL),
	}); err != nil {
		a.toSentry(c, "SendVerifyEmail", "create_token", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	if err := a.mailer.SendEmailVerification(user.Email, user.FirstName, code); err != nil {
		a.toSentry(c, "SendVerifyEmail", "send_mail", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

// lookupActionToken fetches a token by code and checks mode, expiry and
// reuse. It returns the token or the error code to write.
func (a *App) lookupActionToken(c *gin.Context, mode, oobCode string) (models.ActionToken, string) {
	token, err := a.db.GetActionToken(c.Request.Context(), oobCode)
	if err != nil {
		if errors.Is(err, docdb.ErrDBNotFound) {
			return models.ActionToken{}, ErrInvalidActionCode
		}
		a.toSentry(c, "ActionToken", "get_token", sentry.LevelError, err)
		return models.ActionToken{}, ErrSomethingWentWrong
	}
	if token.Mode != mode || token.UsedAt != nil {
		return models.ActionToken{}, ErrInvalidActionCode
	}
	if time.Now().After(token.ExpiresAt) {
		return models.ActionToken{}, ErrExpiredActionCode
	}
	return token, ""
}

func generateActionCode() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

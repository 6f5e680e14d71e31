package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/altivest/portal-service/internal/sdk/docdb"
	"github.com/altivest/portal-service/internal/sdk/middleware"
	"github.com/altivest/portal-service/internal/sdk/models"
	"github.com/altivest/portal-service/internal/services/events"
	"github.com/altivest/portal-service/internal/services/sentry"
)

// HandleLogin checks credentials and issues a token pair. Unknown email and
// wrong password return the same code so the response never reveals which
// accounts exist.
func (a *App) HandleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(c, ErrMissingFields, nil)
		return
	}

	user, err := a.db.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, docdb.ErrDBNotFound) {
			writeError(c, ErrInvalidCredentials, nil)
			return
		}
		a.toSentry(c, "Login", "get_user", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	if !a.hash.CheckPasswordHash(req.Password, user.Password) {
		writeError(c, ErrInvalidCredentials, nil)
		return
	}

	pair, err := a.issueTokens(c, user)
	if err != nil {
		a.toSentry(c, "Login", "issue_tokens", sentry.LevelError, err)
		writeError(c, ErrGenerateTokens, nil)
		return
	}

	if err := a.db.SetUserLoggedIn(c.Request.Context(), user.ID, true); err != nil {
		a.toSentry(c, "Login", "set_logged_in", sentry.LevelWarning, err)
	}

	a.notifyAdmin(c, models.CategoryLogin, events.UserLoggedIn,
		fmt.Sprintf("%s %s logged in", user.FirstName, user.LastName),
		map[string]string{"user_id": user.ID, "email": user.Email})

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// HandleRefresh rotates a refresh token: the presented token must parse,
// match a stored unrevoked record, and is revoked as the new pair is issued.
func (a *App) HandleRefresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}
	if req.RefreshToken == "" {
		writeError(c, ErrMissingFields, map[string]string{"refresh_token": "required"})
		return
	}

	claims, err := a.jwt.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		writeError(c, ErrInvalidToken, nil)
		return
	}

	stored, err := a.db.GetRefreshTokenByToken(c.Request.Context(), []byte(req.RefreshToken))
	if err != nil {
		if errors.Is(err, docdb.ErrDBNotFound) {
			writeError(c, ErrInvalidToken, nil)
			return
		}
		a.toSentry(c, "Refresh", "get_token", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	if stored.RevokedAt != nil || time.Now().After(stored.ExpiresAt) || stored.UserID != claims.UserID {
		writeError(c, ErrExpiredToken, nil)
		return
	}

	user, err := a.db.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		writeError(c, ErrInvalidToken, nil)
		return
	}

	pair, err := a.issueTokens(c, user)
	if err != nil {
		a.toSentry(c, "Refresh", "issue_tokens", sentry.LevelError, err)
		writeError(c, ErrGenerateTokens, nil)
		return
	}

	if err := a.db.RevokeRefreshToken(c.Request.Context(), stored.ID); err != nil {
		a.toSentry(c, "Refresh", "revoke_token", sentry.LevelWarning, err)
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// HandleLogout revokes every refresh token for the authenticated user and
// clears the logged-in flag.
func (a *App) HandleLogout(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	if err := a.db.DeleteRefreshTokensByUserID(c.Request.Context(), userID); err != nil {
		a.toSentry(c, "Logout", "delete_tokens", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	if err := a.db.SetUserLoggedIn(c.Request.Context(), userID, false); err != nil {
		a.toSentry(c, "Logout", "set_logged_in", sentry.LevelWarning, err)
	}

	c.Status(http.StatusNoContent)
}

// HandleChangePassword re-authenticates with the current password before
// accepting the new one. The password policy is read fresh from settings on
// every call.
func (a *App) HandleChangePassword(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(c, ErrMissingFields, nil)
		return
	}

	user, err := a.db.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, ErrUserNotFound, nil)
		return
	}
	if !a.hash.CheckPasswordHash(req.CurrentPassword, user.Password) {
		writeError(c, ErrInvalidCredentials, nil)
		return
	}

	policy, err := a.db.GetPasswordPolicy(c.Request.Context())
	if err != nil {
		a.toSentry(c, "ChangePassword", "get_password_policy", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	if code, details := validateNewPassword(req.NewPassword, req.PasswordConfirm, policy.Strong); code != "" {
		writeError(c, code, details)
		return
	}

	hashed, err := a.hash.HashPassword(req.NewPassword)
	if err != nil {
		a.toSentry(c, "ChangePassword", "hash_password", sentry.LevelError, err)
		writeError(c, ErrHashPassword, nil)
		return
	}
	if err := a.db.UpdateUserPassword(c.Request.Context(), userID, hashed); err != nil {
		a.toSentry(c, "ChangePassword", "update_password", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	// Old sessions do not survive a password change.
	if err := a.db.DeleteRefreshTokensByUserID(c.Request.Context(), userID); err != nil {
		a.toSentry(c, "ChangePassword", "delete_tokens", sentry.LevelWarning, err)
	}

	c.Status(http.StatusNoContent)
}

// issueTokens generates a pair and mirrors the refresh token for rotation.
func (a *App) issueTokens(c *gin.Context, user models.UserProfile) (*TokenResponse, error) {
	pair, err := a.jwt.GenerateTokens(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	_, err = a.db.CreateRefreshToken(c.Request.Context(), models.NewRefreshToken{
		UserID:    user.ID,
		Token:     []byte(pair.RefreshToken),
		ExpiresAt: time.Now().Add(a.jwt.RefreshTokenDuration()),
	})
	if err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return &TokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

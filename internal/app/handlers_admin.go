package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altivest/portal-service/internal/sdk/docdb"
	"github.com/altivest/portal-service/internal/sdk/models"
	"github.com/altivest/portal-service/internal/services/events"
	"github.com/altivest/portal-service/internal/services/sentry"
)

// HandleListRegistrationRequests lists signup requests, optionally filtered
// by ?status=Pending|Approved|Rejected.
func (a *App) HandleListRegistrationRequests(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", models.StatusPending, models.StatusApproved, models.StatusRejected:
	default:
		writeError(c, ErrInvalidStatus, map[string]string{"status": status})
		return
	}

	requests, err := a.db.ListRegistrationRequests(c.Request.Context(), status)
	if err != nil {
		a.toSentry(c, "ListRegistrationRequests", "list", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// HandleApproveRegistration creates the user account from a pending request
// and marks the request Approved. The stored hash is carried over as is.
func (a *App) HandleApproveRegistration(c *gin.Context) {
	req, code := a.pendingRequest(c, c.Param("id"))
	if code != "" {
		writeError(c, code, nil)
		return
	}

	user, err := a.db.CreateUser(c.Request.Context(), models.NewUserProfile{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		JointAccount:    req.JointAccount,
		SecondaryHolder: req.SecondaryHolder,
	})
	if err != nil {
		if errors.Is(err, docdb.ErrDBDuplicatedEntry) {
			writeError(c, ErrEmailAlreadyInUse, nil)
			return
		}
		a.toSentry(c, "ApproveRegistration", "create_user", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	if err := a.db.ResolveRegistrationRequest(c.Request.Context(), req.ID, models.StatusApproved); err != nil {
		a.toSentry(c, "ApproveRegistration", "resolve", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	if _, err := a.db.CreateNotification(c.Request.Context(), models.Notification{
		UserID:  user.ID,
		Message: "Welcome aboard! Your account has been approved.",
	}); err != nil {
		a.toSentry(c, "ApproveRegistration", "notify_user", sentry.LevelWarning, err)
	}
	a.notifyAdmin(c, models.CategorySignup, events.SignupApproved,
		fmt.Sprintf("Signup request %s approved", req.ID), user)

	c.JSON(http.StatusCreated, toUserResponse(user))
}

// HandleRejectRegistration marks a pending request Rejected.
func (a *App) HandleRejectRegistration(c *gin.Context) {
	req, code := a.pendingRequest(c, c.Param("id"))
	if code != "" {
		writeError(c, code, nil)
		return
	}

	if err := a.db.ResolveRegistrationRequest(c.Request.Context(), req.ID, models.StatusRejected); err != nil {
		a.toSentry(c, "RejectRegistration", "resolve", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	a.notifyAdmin(c, models.CategorySignup, events.SignupRejected,
		fmt.Sprintf("Signup request %s rejected", req.ID), req)

	c.Status(http.StatusNoContent)
}

// pendingRequest loads a registration request and checks it is still open.
func (a *App) pendingRequest(c *gin.Context, id string) (models.RegistrationRequest, string) {
	req, err := a.db.GetRegistrationRequest(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, docdb.ErrDBNotFound) {
			return models.RegistrationRequest{}, ErrNotFound
		}
		a.toSentry(c, "RegistrationRequest", "get", sentry.LevelError, err)
		return models.RegistrationRequest{}, ErrSomethingWentWrong
	}
	if req.Status != models.StatusPending {
		return models.RegistrationRequest{}, ErrInvalidStatus
	}
	return req, ""
}

// HandleGetPasswordPolicy returns the current strong/simple toggle.
func (a *App) HandleGetPasswordPolicy(c *gin.Context) {
	policy, err := a.db.GetPasswordPolicy(c.Request.Context())
	if err != nil {
		a.toSentry(c, "GetPasswordPolicy", "get", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	c.JSON(http.StatusOK, PolicyResponse{Strong: policy.Strong})
}

// HandleSetPasswordPolicy flips the toggle. Takes effect on the next
// validation; nothing is cached.
func (a *App) HandleSetPasswordPolicy(c *gin.Context) {
	var req PolicyResponse
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	if err := a.db.SetPasswordPolicy(c.Request.Context(), req.Strong); err != nil {
		a.toSentry(c, "SetPasswordPolicy", "set", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	c.JSON(http.StatusOK, req)
}

// HandleListAdminNotifications returns one category feed.
func (a *App) HandleListAdminNotifications(c *gin.Context) {
	category := c.Param("category")
	switch category {
	case models.CategoryBond, models.CategoryIPO, models.CategoryTerm, models.CategoryLogin, models.CategorySignup:
	default:
		writeError(c, ErrNotFound, map[string]string{"category": category})
		return
	}

	notifications, err := a.db.ListAdminNotifications(c.Request.Context(), category)
	if err != nil {
		a.toSentry(c, "ListAdminNotifications", "list", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

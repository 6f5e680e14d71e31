package app

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altivest/portal-service/internal/sdk/docdb"
	"github.com/altivest/portal-service/internal/sdk/middleware"
	"github.com/altivest/portal-service/internal/services/sentry"
)

// HandleListNotifications returns the user's feed, newest first.
func (a *App) HandleListNotifications(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	notifications, err := a.db.ListNotifications(c.Request.Context(), userID)
	if err != nil {
		a.toSentry(c, "ListNotifications", "list", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// HandleDeleteNotification deletes one notification owned by the caller.
func (a *App) HandleDeleteNotification(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	if err := a.db.DeleteNotification(c.Request.Context(), userID, c.Param("id")); err != nil {
		if errors.Is(err, docdb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "DeleteNotification", "delete", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleClearNotifications deletes the whole feed one document at a time.
// Individual failures are skipped, not retried; the response reports how many
// went through and how many did not.
func (a *App) HandleClearNotifications(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	notifications, err := a.db.ListNotifications(c.Request.Context(), userID)
	if err != nil {
		a.toSentry(c, "ClearNotifications", "list", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	result := BulkDeleteResponse{}
	for _, n := range notifications {
		if err := a.db.DeleteNotification(c.Request.Context(), userID, n.ID); err != nil {
			a.toSentry(c, "ClearNotifications", "delete", sentry.LevelWarning, err)
			result.Failed++
			continue
		}
		result.Deleted++
	}

	c.JSON(http.StatusOK, result)
}

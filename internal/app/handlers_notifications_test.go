package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/altivest/portal-service/internal/sdk/docdb"
	"github.com/altivest/portal-service/internal/sdk/models"
)

func notificationsRouter(a *App) *gin.Engine {
	router := gin.New()
	router.Use(asUser("user-1"))
	router.GET("/notifications", a.HandleListNotifications)
	router.DELETE("/notifications/:id", a.HandleDeleteNotification)
	router.DELETE("/notifications", a.HandleClearNotifications)
	return router
}

func TestClearNotificationsReportsPartialFailure(t *testing.T) {
	feed := []models.Notification{
		{ID: "n1", UserID: "user-1", Message: "one"},
		{ID: "n2", UserID: "user-1", Message: "two"},
		{ID: "n3", UserID: "user-1", Message: "three"},
	}
	db := &mockStore{
		listNotificationsFn: func(context.Context, string) ([]models.Notification, error) {
			return feed, nil
		},
		deleteNotificationFn: func(_ context.Context, _, id string) error {
			if id == "n2" {
				return errors.New("write conflict")
			}
			return nil
		},
	}
	a := newTestApp(db, nil, nil, nil)

	req := httptest.NewRequest(http.MethodDelete, "/notifications", nil)
	rec := httptest.NewRecorder()
	notificationsRouter(a).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp BulkDeleteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Deleted != 2 || resp.Failed != 1 {
		t.Errorf("expected deleted=2 failed=1, got deleted=%d failed=%d", resp.Deleted, resp.Failed)
	}
}

func TestDeleteNotificationNotFound(t *testing.T) {
	db := &mockStore{
		deleteNotificationFn: func(context.Context, string, string) error {
			return docdb.ErrDBNotFound
		},
	}
	a := newTestApp(db, nil, nil, nil)

	req := httptest.NewRequest(http.MethodDelete, "/notifications/nope", nil)
	rec := httptest.NewRecorder()
	notificationsRouter(a).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListNotifications(t *testing.T) {
	db := &mockStore{
		listNotificationsFn: func(_ context.Context, userID string) ([]models.Notification, error) {
			if userID != "user-1" {
				t.Errorf("expected user-1, got %q", userID)
			}
			return []models.Notification{{ID: "n1", UserID: userID, Message: "hello"}}, nil
		},
	}
	a := newTestApp(db, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	notificationsRouter(a).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got []models.Notification
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(got) != 1 || got[0].ID != "n1" {
		t.Errorf("unexpected feed: %+v", got)
	}
}

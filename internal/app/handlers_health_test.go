package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHandleReadiness(t *testing.T) {
	db := &mockStore{
		healthFn: func() map[string]string {
			return map[string]string{"status": "up", "message": "It's healthy"}
		},
	}
	a := newTestApp(db, nil, nil, nil)

	router := gin.New()
	router.GET("/health/readiness", a.HandleReadiness)

	req := httptest.NewRequest(http.MethodGet, "/health/readiness", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if stats["status"] != "up" {
		t.Errorf("expected status up, got %q", stats["status"])
	}
}

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/altivest/portal-service/internal/sdk/models"
	"github.com/altivest/portal-service/internal/services/events"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func validSignupBody() map[string]any {
	return map[string]any{
		"first_name":       "Ada",
		"last_name":        "Mensah",
		"email":            "ada@example.com",
		"phone":            "+233201234567",
		"password":         "abcd12!!",
		"password_confirm": "abcd12!!",
		"captcha_token":    "token",
	}
}

func registerRouter(a *App) *gin.Engine {
	router := gin.New()
	router.POST("/register/start", a.HandleRegisterStart)
	router.POST("/register/resend", a.HandleRegisterResend)
	router.POST("/register/verify", a.HandleRegisterVerify)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func noConflict(context.Context, string, string) (bool, error) { return false, nil }

func TestRegisterStartDuplicateSkipsCodeSend(t *testing.T) {
	db := &mockStore{
		hasRegistrationConflictFn: func(context.Context, string, string) (bool, error) {
			return true, nil
		},
	}
	smsSender := &mockSMSSender{}
	captcha := &mockCaptcha{}
	a := newTestApp(db, smsSender, captcha, nil)

	rec := postJSON(t, registerRouter(a), "/register/start", validSignupBody())

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(smsSender.calls) != 0 {
		t.Errorf("expected no SMS for a duplicate signup, got %d sends", len(smsSender.calls))
	}
	if captcha.calls != 0 {
		t.Errorf("expected no captcha verification for a duplicate signup, got %d", captcha.calls)
	}
}

func TestRegisterStartSendsCode(t *testing.T) {
	db := &mockStore{hasRegistrationConflictFn: noConflict}
	smsSender := &mockSMSSender{}
	a := newTestApp(db, smsSender, &mockCaptcha{}, nil)

	rec := postJSON(t, registerRouter(a), "/register/start", validSignupBody())

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp RegisterStartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.ChallengeID == "" {
		t.Error("expected a challenge id")
	}
	if resp.State != "otp_sent" {
		t.Errorf("expected state otp_sent, got %q", resp.State)
	}
	if resp.ResendCooldown <= 0 {
		t.Errorf("expected an active resend cooldown, got %d", resp.ResendCooldown)
	}
	if len(smsSender.calls) != 1 {
		t.Fatalf("expected one SMS, got %d", len(smsSender.calls))
	}
	if len(smsSender.calls[0].Code) != 6 {
		t.Errorf("expected a six digit code, got %q", smsSender.calls[0].Code)
	}
}

func TestRegisterVerify(t *testing.T) {
	start := func(t *testing.T, db *mockStore, pub *mockPublisher) (*gin.Engine, string, string) {
		t.Helper()
		db.hasRegistrationConflictFn = noConflict
		smsSender := &mockSMSSender{}
		var publisher events.Publisher
		if pub != nil {
			publisher = pub
		}
		a := newTestApp(db, smsSender, &mockCaptcha{}, publisher)
		router := registerRouter(a)

		rec := postJSON(t, router, "/register/start", validSignupBody())
		if rec.Code != http.StatusOK {
			t.Fatalf("start failed: %d: %s", rec.Code, rec.Body.String())
		}
		var resp RegisterStartResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding start response: %v", err)
		}
		return router, resp.ChallengeID, smsSender.calls[0].Code
	}

	t.Run("accepted code submits the request", func(t *testing.T) {
		pub := &mockPublisher{}
		router, challengeID, code := start(t, &mockStore{}, pub)

		rec := postJSON(t, router, "/register/verify", VerifyCodeRequest{
			ChallengeID: challengeID,
			Entries:     strings.Split(code, ""),
		})

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp RegisterVerifyResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding verify response: %v", err)
		}
		if resp.State != "request_submitted" {
			t.Errorf("expected state request_submitted, got %q", resp.State)
		}
		if resp.RequestID == "" {
			t.Error("expected a request id")
		}
		if !resp.Notified {
			t.Error("expected notified true when the admin feed write succeeds")
		}
		if len(pub.published) != 1 {
			t.Errorf("expected one published event, got %v", pub.published)
		}
	})

	t.Run("notification failure is reported, not fatal", func(t *testing.T) {
		db := &mockStore{
			createAdminNotificationFn: func(context.Context, string, string) (models.Notification, error) {
				return models.Notification{}, errors.New("feed down")
			},
		}
		router, challengeID, code := start(t, db, nil)

		rec := postJSON(t, router, "/register/verify", VerifyCodeRequest{
			ChallengeID: challengeID,
			Entries:     strings.Split(code, ""),
		})

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 despite feed failure, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp RegisterVerifyResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding verify response: %v", err)
		}
		if resp.Notified {
			t.Error("expected notified false when the admin feed write fails")
		}
	})

	t.Run("non numeric entries are rejected", func(t *testing.T) {
		router, challengeID, _ := start(t, &mockStore{}, nil)

		rec := postJSON(t, router, "/register/verify", VerifyCodeRequest{
			ChallengeID: challengeID,
			Entries:     []string{"1", "2", "x", "4", "5", "6"},
		})

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), ErrVerificationCodeInvalid) {
			t.Errorf("expected %q in body, got %s", ErrVerificationCodeInvalid, rec.Body.String())
		}
	})

	t.Run("wrong code leaves the challenge retryable", func(t *testing.T) {
		router, challengeID, code := start(t, &mockStore{}, nil)

		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		rec := postJSON(t, router, "/register/verify", VerifyCodeRequest{
			ChallengeID: challengeID,
			Entries:     strings.Split(wrong, ""),
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for wrong code, got %d", rec.Code)
		}

		rec = postJSON(t, router, "/register/verify", VerifyCodeRequest{
			ChallengeID: challengeID,
			Entries:     strings.Split(code, ""),
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected the correct code to still work, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestRegisterResendCooldown(t *testing.T) {
	db := &mockStore{hasRegistrationConflictFn: noConflict}
	smsSender := &mockSMSSender{}
	a := newTestApp(db, smsSender, &mockCaptcha{}, nil)
	router := registerRouter(a)

	rec := postJSON(t, router, "/register/start", validSignupBody())
	if rec.Code != http.StatusOK {
		t.Fatalf("start failed: %d", rec.Code)
	}
	var resp RegisterStartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding start response: %v", err)
	}

	rec = postJSON(t, router, "/register/resend", ResendRequest{ChallengeID: resp.ChallengeID})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 inside the cooldown, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(smsSender.calls) != 1 {
		t.Errorf("expected no resend inside the cooldown, got %d sends", len(smsSender.calls))
	}
}

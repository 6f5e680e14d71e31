package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/altivest/portal-service/internal/sdk/models"
)

func requestsRouter(a *App) *gin.Engine {
	router := gin.New()
	router.Use(asUser("user-1"))
	router.POST("/requests/bonds", a.HandleCreateBondRequest)
	router.POST("/requests/ipos", a.HandleCreateIPORequest)
	router.POST("/requests/term-deposits", a.HandleCreateTermRequest)
	return router
}

func catalogMock() *mockStore {
	return &mockStore{
		getBondFn: func(context.Context, string) (models.Bond, error) {
			return models.Bond{ID: "b1", Issuer: "Treasury", UnitPrice: 100}, nil
		},
		getIPOFn: func(context.Context, string) (models.IPO, error) {
			return models.IPO{ID: "i1", Company: "Acme", SharePrice: 12.5, MinShares: 10}, nil
		},
		getTermProductFn: func(context.Context, string) (models.TermProduct, error) {
			return models.TermProduct{ID: "t1", Name: "12 Month Fixed", Rate: 0.08, MinDeposit: 500}, nil
		},
	}
}

func TestCreateTransactionRequestAlwaysPending(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		input     TransactionRequestInput
		wantTotal float64
	}{
		{
			name:      "bond buy",
			path:      "/requests/bonds",
			input:     TransactionRequestInput{ItemID: "b1", Type: models.TypeBuy, Amount: 1000, Quantity: 10},
			wantTotal: 1000,
		},
		{
			name:      "bond sell",
			path:      "/requests/bonds",
			input:     TransactionRequestInput{ItemID: "b1", Type: models.TypeSell, Amount: 500, Quantity: 5},
			wantTotal: 500,
		},
		{
			name:      "ipo invest",
			path:      "/requests/ipos",
			input:     TransactionRequestInput{ItemID: "i1", Type: models.TypeInvest, Amount: 125, Quantity: 10},
			wantTotal: 125,
		},
		{
			name:      "term deposit",
			path:      "/requests/term-deposits",
			input:     TransactionRequestInput{ItemID: "t1", Type: models.TypeDeposit, Amount: 750},
			wantTotal: 750,
		},
		{
			name:      "term withdrawal",
			path:      "/requests/term-deposits",
			input:     TransactionRequestInput{ItemID: "t1", Type: models.TypeWithdrawal, Amount: 200},
			wantTotal: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := catalogMock()
			var persisted models.TransactionRequest
			db.createTransactionRequestFn = func(_ context.Context, req models.TransactionRequest) (models.TransactionRequest, error) {
				req.ID = "req-1"
				req.Status = models.StatusPending
				persisted = req
				return req, nil
			}
			a := newTestApp(db, nil, nil, nil)

			rec := postJSON(t, requestsRouter(a), tt.path, tt.input)

			if rec.Code != http.StatusCreated {
				t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
			}
			var resp TransactionRequestResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if resp.Request.Status != models.StatusPending {
				t.Errorf("expected status %q, got %q", models.StatusPending, resp.Request.Status)
			}
			if persisted.Status != models.StatusPending {
				t.Errorf("expected persisted status %q, got %q", models.StatusPending, persisted.Status)
			}
			if resp.Request.Total != tt.wantTotal {
				t.Errorf("expected total %v, got %v", tt.wantTotal, resp.Request.Total)
			}
			if !resp.Notified {
				t.Error("expected notified true")
			}
		})
	}
}

func TestCreateTransactionRequestNotificationFailure(t *testing.T) {
	db := catalogMock()
	db.createAdminNotificationFn = func(context.Context, string, string) (models.Notification, error) {
		return models.Notification{}, errors.New("feed down")
	}
	a := newTestApp(db, nil, nil, nil)

	rec := postJSON(t, requestsRouter(a), "/requests/bonds", TransactionRequestInput{
		ItemID: "b1", Type: models.TypeBuy, Amount: 100, Quantity: 1,
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 despite feed failure, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp TransactionRequestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Request.Status != models.StatusPending {
		t.Errorf("expected status %q, got %q", models.StatusPending, resp.Request.Status)
	}
	if resp.Notified {
		t.Error("expected notified false when the admin feed write fails")
	}
}

func TestCreateTransactionRequestValidation(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		input    TransactionRequestInput
		wantCode string
	}{
		{
			name:     "negative amount",
			path:     "/requests/bonds",
			input:    TransactionRequestInput{ItemID: "b1", Type: models.TypeBuy, Amount: -5, Quantity: 1},
			wantCode: ErrInvalidAmount,
		},
		{
			name:     "type from another domain",
			path:     "/requests/bonds",
			input:    TransactionRequestInput{ItemID: "b1", Type: models.TypeDeposit, Amount: 100, Quantity: 1},
			wantCode: ErrInvalidRequestType,
		},
		{
			name:     "ipo below minimum shares",
			path:     "/requests/ipos",
			input:    TransactionRequestInput{ItemID: "i1", Type: models.TypeInvest, Amount: 50, Quantity: 2},
			wantCode: ErrInvalidAmount,
		},
		{
			name:     "missing item",
			path:     "/requests/term-deposits",
			input:    TransactionRequestInput{Type: models.TypeDeposit, Amount: 750},
			wantCode: ErrMissingFields,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(catalogMock(), nil, nil, nil)

			rec := postJSON(t, requestsRouter(a), tt.path, tt.input)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if resp.Error != tt.wantCode {
				t.Errorf("expected code %q, got %q", tt.wantCode, resp.Error)
			}
		})
	}
}

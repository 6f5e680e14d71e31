package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altivest/portal-service/internal/sdk/docdb"
	"github.com/altivest/portal-service/internal/sdk/middleware"
	"github.com/altivest/portal-service/internal/sdk/models"
	"github.com/altivest/portal-service/internal/services/events"
	"github.com/altivest/portal-service/internal/services/sentry"
)

// Allowed request types per domain.
var domainTypes = map[string]map[string]bool{
	models.DomainBond: {models.TypeBuy: true, models.TypeSell: true},
	models.DomainIPO:  {models.TypeInvest: true, models.TypeSell: true},
	models.DomainTerm: {models.TypeDeposit: true, models.TypeWithdrawal: true},
}

// HandleCreateBondRequest raises a bond buy or sell intent.
func (a *App) HandleCreateBondRequest(c *gin.Context) {
	a.createTransactionRequest(c, models.DomainBond)
}

// HandleCreateIPORequest raises an IPO investment intent.
func (a *App) HandleCreateIPORequest(c *gin.Context) {
	a.createTransactionRequest(c, models.DomainIPO)
}

// HandleCreateTermRequest raises a term-deposit or withdrawal intent.
func (a *App) HandleCreateTermRequest(c *gin.Context) {
	a.createTransactionRequest(c, models.DomainTerm)
}

func (a *App) HandleListBondRequests(c *gin.Context) {
	a.listTransactionRequests(c, models.DomainBond)
}

func (a *App) HandleListIPORequests(c *gin.Context) {
	a.listTransactionRequests(c, models.DomainIPO)
}

func (a *App) HandleListTermRequests(c *gin.Context) {
	a.listTransactionRequests(c, models.DomainTerm)
}

// createTransactionRequest validates the intent, derives the total from the
// catalog item, and inserts the request as Pending. Every request enters
// Pending; nothing a user submits changes holdings until an admin resolves
// it. The admin notification is best effort and reported in the response,
// never rolled into the request's outcome.
func (a *App) createTransactionRequest(c *gin.Context, domain string) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	var input TransactionRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}
	if input.ItemID == "" || input.Type == "" {
		writeError(c, ErrMissingFields, nil)
		return
	}
	if !domainTypes[domain][input.Type] {
		writeError(c, ErrInvalidRequestType, map[string]string{"type": input.Type})
		return
	}
	if input.Amount <= 0 {
		writeError(c, ErrInvalidAmount, map[string]string{"amount": "must_be_positive"})
		return
	}

	itemName, total, code := a.priceRequest(c, domain, input)
	if code != "" {
		writeError(c, code, nil)
		return
	}

	created, err := a.db.CreateTransactionRequest(c.Request.Context(), models.TransactionRequest{
		UserID:   userID,
		Domain:   domain,
		ItemID:   input.ItemID,
		ItemName: itemName,
		Type:     input.Type,
		Quantity: input.Quantity,
		Amount:   input.Amount,
		Total:    total,
	})
	if err != nil {
		a.toSentry(c, "CreateTransactionRequest", "persist", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	notified := a.notifyAdmin(c, domain, events.TransactionRequested,
		fmt.Sprintf("New %s %s request for %s", domain, created.Type, created.ItemName),
		created)

	c.JSON(http.StatusCreated, TransactionRequestResponse{
		Request:  created,
		Notified: notified,
	})
}

// priceRequest resolves the catalog item and computes the derived total.
func (a *App) priceRequest(c *gin.Context, domain string, input TransactionRequestInput) (name string, total float64, errCode string) {
	ctx := c.Request.Context()

	switch domain {
	case models.DomainBond:
		bond, err := a.db.GetBond(ctx, input.ItemID)
		if err != nil {
			return "", 0, a.catalogErrCode(c, "bond", err)
		}
		if input.Quantity <= 0 {
			return "", 0, ErrInvalidAmount
		}
		return bond.Issuer, float64(input.Quantity) * bond.UnitPrice, ""

	case models.DomainIPO:
		ipo, err := a.db.GetIPO(ctx, input.ItemID)
		if err != nil {
			return "", 0, a.catalogErrCode(c, "ipo", err)
		}
		if input.Quantity < ipo.MinShares {
			return "", 0, ErrInvalidAmount
		}
		return ipo.Company, float64(input.Quantity) * ipo.SharePrice, ""

	case models.DomainTerm:
		product, err := a.db.GetTermProduct(ctx, input.ItemID)
		if err != nil {
			return "", 0, a.catalogErrCode(c, "term_product", err)
		}
		if input.Type == models.TypeDeposit && input.Amount < product.MinDeposit {
			return "", 0, ErrInvalidAmount
		}
		return product.Name, input.Amount, ""
	}

	return "", 0, ErrSomethingWentWrong
}

func (a *App) catalogErrCode(c *gin.Context, step string, err error) string {
	if errors.Is(err, docdb.ErrDBNotFound) {
		return ErrItemNotFound
	}
	a.toSentry(c, "CreateTransactionRequest", "get_"+step, sentry.LevelError, err)
	return ErrSomethingWentWrong
}

func (a *App) listTransactionRequests(c *gin.Context, domain string) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	requests, err := a.db.ListTransactionRequests(c.Request.Context(), userID, domain)
	if err != nil {
		a.toSentry(c, "ListTransactionRequests", "list", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	c.JSON(http.StatusOK, requests)
}

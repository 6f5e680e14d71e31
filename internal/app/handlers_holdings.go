package app

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altivest/portal-service/internal/sdk/docdb"
	"github.com/altivest/portal-service/internal/sdk/middleware"
	"github.com/altivest/portal-service/internal/sdk/models"
	"github.com/altivest/portal-service/internal/services/sentry"
)

// Catalog endpoints. Public reads; the catalog is maintained out of band.

func (a *App) HandleListBonds(c *gin.Context) {
	bonds, err := a.db.ListBonds(c.Request.Context())
	if err != nil {
		a.toSentry(c, "ListBonds", "list", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	c.JSON(http.StatusOK, bonds)
}

func (a *App) HandleListIPOs(c *gin.Context) {
	ipos, err := a.db.ListIPOs(c.Request.Context())
	if err != nil {
		a.toSentry(c, "ListIPOs", "list", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	c.JSON(http.StatusOK, ipos)
}

func (a *App) HandleListTermProducts(c *gin.Context) {
	products, err := a.db.ListTermProducts(c.Request.Context())
	if err != nil {
		a.toSentry(c, "ListTermProducts", "list", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Holdings endpoints. Read-only views over what admin approval created.

func (a *App) HandleListBondHoldings(c *gin.Context) {
	a.listHoldings(c, "ListBondHoldings", func(userID string) (any, error) {
		return a.db.ListBondHoldings(c.Request.Context(), userID)
	})
}

func (a *App) HandleListIPOHoldings(c *gin.Context) {
	a.listHoldings(c, "ListIPOHoldings", func(userID string) (any, error) {
		return a.db.ListIPOHoldings(c.Request.Context(), userID)
	})
}

func (a *App) HandleListTermDeposits(c *gin.Context) {
	a.listHoldings(c, "ListTermDeposits", func(userID string) (any, error) {
		return a.db.ListTermDeposits(c.Request.Context(), userID)
	})
}

func (a *App) HandleListStocks(c *gin.Context) {
	a.listHoldings(c, "ListStocks", func(userID string) (any, error) {
		return a.db.ListStocks(c.Request.Context(), userID)
	})
}

func (a *App) HandleListCashDeposits(c *gin.Context) {
	a.listHoldings(c, "ListCashDeposits", func(userID string) (any, error) {
		return a.db.ListCashDeposits(c.Request.Context(), userID)
	})
}

func (a *App) listHoldings(c *gin.Context, handler string, list func(userID string) (any, error)) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	holdings, err := list(userID)
	if err != nil {
		a.toSentry(c, handler, "list", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	c.JSON(http.StatusOK, holdings)
}

// HandleGetBankingDetails returns the user's payout account, or an empty
// document when none has been saved yet.
func (a *App) HandleGetBankingDetails(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	details, err := a.db.GetBankingDetails(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, docdb.ErrDBNotFound) {
			c.JSON(http.StatusOK, models.BankingDetails{})
			return
		}
		a.toSentry(c, "GetBankingDetails", "get", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	c.JSON(http.StatusOK, details)
}

// HandleUpsertBankingDetails saves or replaces the payout account.
func (a *App) HandleUpsertBankingDetails(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	var details models.BankingDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}
	if details.BankName == "" || details.AccountName == "" || details.AccountNumber == "" {
		writeError(c, ErrMissingFields, nil)
		return
	}
	details.UserID = userID

	if err := a.db.UpsertBankingDetails(c.Request.Context(), details); err != nil {
		a.toSentry(c, "UpsertBankingDetails", "upsert", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	c.JSON(http.StatusOK, details)
}

package app

import (
	"github.com/gin-gonic/gin"

	"github.com/altivest/portal-service/internal/sdk/middleware"
)

// ----------------------------------------------------------------------------
// Route Registration
// ----------------------------------------------------------------------------

func (a *App) RegisterRoutes() *gin.Engine {
	router := gin.New()

	// Global middleware chain
	router.Use(gin.Recovery())      // Panic recovery
	router.Use(middleware.Logger()) // Custom slog logger
	router.Use(middleware.CORS())   // CORS support

	// API v1 route group
	v1 := router.Group("/api/v1")
	{
		// Health check routes (public)
		health := v1.Group("/health")
		{
			health.GET("/readiness", a.HandleReadiness)
			health.GET("/liveness", a.HandleLiveness)
		}

		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register/start", a.HandleRegisterStart)
			auth.POST("/register/resend", a.HandleRegisterResend)
			auth.POST("/register/verify", a.HandleRegisterVerify)
			auth.POST("/login", a.HandleLogin)
			auth.POST("/refresh", a.HandleRefresh)
			auth.POST("/forgot-password", a.HandleForgotPassword)
			auth.GET("/action", a.HandleAction)
			auth.POST("/action/reset", a.HandleResetPassword)
		}

		// Authenticated auth routes
		authed := v1.Group("/auth")
		authed.Use(middleware.Authenticate(a.jwt))
		{
			authed.POST("/logout", a.HandleLogout)
			authed.POST("/send-verify-email", a.HandleSendVerifyEmail)
		}

		// Public catalog and assets
		catalog := v1.Group("/catalog")
		{
			catalog.GET("/bonds", a.HandleListBonds)
			catalog.GET("/ipos", a.HandleListIPOs)
			catalog.GET("/term-deposits", a.HandleListTermProducts)
		}
		v1.GET("/assets/logo", a.HandleGetLogo)

		// User routes (protected - requires authentication)
		user := v1.Group("/user")
		user.Use(middleware.Authenticate(a.jwt))
		{
			user.GET("/me", a.HandleGetMe)
			user.PUT("/profile", a.HandleUpdateProfile)
			user.POST("/change-password", a.HandleChangePassword)
			user.GET("/kyc", a.HandleGetKYC)
			user.PUT("/kyc/:section", a.HandleUpdateKYCSection)

			holdings := user.Group("/holdings")
			{
				holdings.GET("/bonds", a.HandleListBondHoldings)
				holdings.GET("/ipos", a.HandleListIPOHoldings)
				holdings.GET("/term-deposits", a.HandleListTermDeposits)
				holdings.GET("/stocks", a.HandleListStocks)
				holdings.GET("/cash-deposits", a.HandleListCashDeposits)
			}
			user.GET("/banking-details", a.HandleGetBankingDetails)
			user.PUT("/banking-details", a.HandleUpsertBankingDetails)

			requests := user.Group("/requests")
			{
				requests.POST("/bonds", a.HandleCreateBondRequest)
				requests.GET("/bonds", a.HandleListBondRequests)
				requests.POST("/ipos", a.HandleCreateIPORequest)
				requests.GET("/ipos", a.HandleListIPORequests)
				requests.POST("/term-deposits", a.HandleCreateTermRequest)
				requests.GET("/term-deposits", a.HandleListTermRequests)
			}

			user.GET("/notifications", a.HandleListNotifications)
			user.DELETE("/notifications/:id", a.HandleDeleteNotification)
			user.DELETE("/notifications", a.HandleClearNotifications)

			docs := user.Group("/docs")
			{
				docs.POST("", a.HandleUploadDoc)
				docs.GET("", a.HandleListDocs)
				docs.GET("/:name", a.HandleDownloadDoc)
				docs.DELETE("/:name", a.HandleDeleteDoc)
			}
		}

		// Admin routes (protected - requires admin role)
		admin := v1.Group("/admin")
		admin.Use(middleware.Authenticate(a.jwt), middleware.Admin())
		{
			admin.GET("/registration-requests", a.HandleListRegistrationRequests)
			admin.POST("/registration-requests/:id/approve", a.HandleApproveRegistration)
			admin.POST("/registration-requests/:id/reject", a.HandleRejectRegistration)
			admin.GET("/settings/password-policy", a.HandleGetPasswordPolicy)
			admin.PUT("/settings/password-policy", a.HandleSetPasswordPolicy)
			admin.GET("/notifications/:category", a.HandleListAdminNotifications)
		}
	}

	return router
}

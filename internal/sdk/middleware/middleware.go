// Package middleware provides the gin middleware chain for the portal API.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/altivest/portal-service/internal/services/jwt"
)

// Context keys set by Authenticate.
const (
	UserIDKey  = "user_id"
	EmailKey   = "email"
	IsAdminKey = "is_admin"
)

var ErrNoUserInContext = errors.New("no user in context")

const bearerPrefix = "Bearer "

// Logger logs each request through slog.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"ip", c.ClientIP(),
			"duration", time.Since(start),
		)
	}
}

// CORS allows the portal frontend to call the API from another origin.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		c.Header("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-CSRF-Token")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Authenticate validates the bearer access token and stores the claims on
// the context.
func Authenticate(tokens *jwt.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_authorization_header"})
			return
		}
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_authorization_header"})
			return
		}

		claims, err := tokens.ParseAccessToken(strings.TrimPrefix(authHeader, bearerPrefix))
		if err != nil {
			code := "invalid_token"
			if errors.Is(err, jwt.ErrExpiredToken) {
				code = "expired_token"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Set(IsAdminKey, claims.IsAdmin)
		c.Next()
	}
}

// Admin requires the is_admin claim set by Authenticate.
func Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdminVal, exists := c.Get(IsAdminKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		isAdmin, ok := isAdminVal.(bool)
		if !ok || !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user's ID from the context.
func GetUserID(c *gin.Context) (string, error) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return "", ErrNoUserInContext
	}
	userID, ok := v.(string)
	if !ok || userID == "" {
		return "", ErrNoUserInContext
	}
	return userID, nil
}

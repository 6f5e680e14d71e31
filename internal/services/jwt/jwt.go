// Package jwt provides session token generation and validation.
package jwt

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	Issuer           = "portal-service"
	audience         = "portal-api"
)

// Claims are the portal's JWT claims.
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	Type    string `json:"type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// TokenService signs and parses access/refresh token pairs. Sessions are
// short-lived: the portal does not remember users across browser restarts,
// so the pair covers a working session and nothing more.
type TokenService struct {
	accessSecretKey      []byte
	refreshSecretKey     []byte
	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration
}

func NewTokenService() *TokenService {
	return &TokenService{
		accessSecretKey:      []byte(os.Getenv("JWT_ACCESS_SECRET")),
		refreshSecretKey:     []byte(os.Getenv("JWT_REFRESH_SECRET")),
		accessTokenDuration:  15 * time.Minute,
		refreshTokenDuration: 12 * time.Hour,
	}
}

// TokenPair represents an access and refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RefreshTokenDuration exposes the refresh TTL for the stored-token mirror.
func (s *TokenService) RefreshTokenDuration() time.Duration {
	return s.refreshTokenDuration
}

func (s *TokenService) createToken(userID, email string, isAdmin bool, tokenType string, duration time.Duration, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("creating " + tokenType + " token: missing secret")
	}

	now := time.Now()
	claims := &Claims{
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
		Type:    tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// GenerateTokens creates both access and refresh tokens for a user.
func (s *TokenService) GenerateTokens(userID, email string, isAdmin bool) (*TokenPair, error) {
	accessToken, err := s.createToken(userID, email, isAdmin, TokenTypeAccess, s.accessTokenDuration, s.accessSecretKey)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.createToken(userID, email, isAdmin, TokenTypeRefresh, s.refreshTokenDuration, s.refreshSecretKey)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ParseAccessToken parses and validates an access token.
func (s *TokenService) ParseAccessToken(tokenString string) (*Claims, error) {
	claims, err := s.parseTokenWithSecret(tokenString, s.accessSecretKey)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeAccess {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}

// ParseRefreshToken parses and validates a refresh token.
func (s *TokenService) ParseRefreshToken(tokenString string) (*Claims, error) {
	claims, err := s.parseTokenWithSecret(tokenString, s.refreshSecretKey)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeRefresh {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}

func (s *TokenService) parseTokenWithSecret(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(audience),
	)

	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	return claims, nil
}

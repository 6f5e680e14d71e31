package jwt

import (
	"errors"
	"os"
	"strings"
	"testing"
)

const (
	testAccessSecret  = "test-access-secret"
	testRefreshSecret = "test-refresh-secret"
)

func TestMain(m *testing.M) {
	_ = os.Setenv("JWT_ACCESS_SECRET", testAccessSecret)
	_ = os.Setenv("JWT_REFRESH_SECRET", testRefreshSecret)

	code := m.Run()
	os.Exit(code)
}

func TestGenerateTokens(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := NewTokenService()
		pair, err := srv.GenerateTokens("user-123", "u@example.com", false)
		if err != nil {
			t.Fatalf("GenerateTokens returned error: %v", err)
		}
		if pair.AccessToken == "" {
			t.Fatal("expected non-empty access token")
		}
		if pair.RefreshToken == "" {
			t.Fatal("expected non-empty refresh token")
		}
	})

	t.Run("missing access secret", func(t *testing.T) {
		srv := NewTokenService()
		srv.accessSecretKey = nil

		_, err := srv.GenerateTokens("user-123", "u@example.com", false)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "missing secret") {
			t.Fatalf("expected missing-secret error, got %v", err)
		}
	})
}

func TestParseAccessToken(t *testing.T) {
	srv := NewTokenService()
	pair, err := srv.GenerateTokens("user-123", "u@example.com", true)
	if err != nil {
		t.Fatalf("GenerateTokens returned error: %v", err)
	}

	t.Run("valid access token", func(t *testing.T) {
		claims, err := srv.ParseAccessToken(pair.AccessToken)
		if err != nil {
			t.Fatalf("ParseAccessToken returned error: %v", err)
		}
		if claims.UserID != "user-123" {
			t.Fatalf("expected user-123, got %q", claims.UserID)
		}
		if !claims.IsAdmin {
			t.Fatal("expected is_admin claim to survive the round trip")
		}
	})

	t.Run("refresh token rejected as access", func(t *testing.T) {
		_, err := srv.ParseAccessToken(pair.RefreshToken)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := srv.ParseAccessToken("not.a.token")
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestParseRefreshToken(t *testing.T) {
	srv := NewTokenService()
	pair, err := srv.GenerateTokens("user-456", "r@example.com", false)
	if err != nil {
		t.Fatalf("GenerateTokens returned error: %v", err)
	}

	claims, err := srv.ParseRefreshToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("ParseRefreshToken returned error: %v", err)
	}
	if claims.Type != TokenTypeRefresh {
		t.Fatalf("expected refresh type, got %q", claims.Type)
	}

	if _, err := srv.ParseRefreshToken(pair.AccessToken); !errors.Is(err, ErrInvalidTokenType) {
		// Access tokens are signed with a different secret, so either error is
		// acceptable here as long as parsing fails.
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected rejection, got %v", err)
		}
	}
}

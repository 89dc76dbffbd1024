package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, "sid-1", "u1", model.RoleAdmin, time.Now().Add(DefaultExpiry))
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.ID != "sid-1" {
		t.Errorf("expected session id 'sid-1', got %q", claims.ID)
	}
	if claims.UserID != "u1" {
		t.Errorf("expected user id 'u1', got %q", claims.UserID)
	}
	if claims.Role != model.RoleAdmin {
		t.Errorf("expected role 'admin', got %q", claims.Role)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret1", "sid-1", "u1", model.RoleRegular, time.Now().Add(time.Hour))

	_, err := ValidateToken("secret2", token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	token, _ := GenerateToken("secret", "sid-1", "u1", model.RoleRegular, time.Now().Add(-time.Minute))

	if _, err := ValidateToken("secret", token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected expired token rejected, got %v", err)
	}
}

func TestGenerateTokenRequiresSession(t *testing.T) {
	if _, err := GenerateToken("secret", "", "u1", model.RoleRegular, time.Now().Add(time.Hour)); err == nil {
		t.Error("expected error for empty session id")
	}
}

func TestTokenExpiry(t *testing.T) {
	secret := "test"
	want := time.Now().Add(DefaultExpiry)
	token, _ := GenerateToken(secret, "sid-1", "u1", model.RoleRegular, want)
	claims, _ := ValidateToken(secret, token)

	// Should be within a few seconds.
	diff := want.Sub(claims.ExpiresAt.Time)
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}

package loadbalancer

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestSessionKeyFromClaim_ExtractsStringClaim(t *testing.T) {
	claims := jwt.MapClaims{"sub": "user-123"}
	if got := SessionKeyFromClaim(claims, "sub"); got != "user-123" {
		t.Fatalf("expected user-123, got %q", got)
	}
}

func TestSessionKeyFromClaim_MissingClaimReturnsEmpty(t *testing.T) {
	claims := jwt.MapClaims{"sub": "user-123"}
	if got := SessionKeyFromClaim(claims, "tenant"); got != "" {
		t.Fatalf("expected empty string for missing claim, got %q", got)
	}
}

func TestSessionKeyFromClaim_NonStringClaimReturnsEmpty(t *testing.T) {
	claims := jwt.MapClaims{"exp": float64(1234567890)}
	if got := SessionKeyFromClaim(claims, "exp"); got != "" {
		t.Fatalf("expected empty string for non-string claim, got %q", got)
	}
}

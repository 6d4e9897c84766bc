package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"contas/internal/remote"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestVerifyOK(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "user-1",
		"email": "user@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "user@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejections(t *testing.T) {
	v := NewVerifier(testSecret)
	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"wrong secret", signToken(t, "other-secret", jwt.MapClaims{
			"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"expired", signToken(t, testSecret, jwt.MapClaims{
			"sub": "user-1", "exp": time.Now().Add(-time.Hour).Unix(),
		})},
		{"no expiry", signToken(t, testSecret, jwt.MapClaims{"sub": "user-1"})},
		{"no subject", signToken(t, testSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
	}
	for _, tc := range cases {
		_, err := v.Verify(tc.token)
		if err == nil {
			t.Errorf("%s: expected rejection", tc.name)
			continue
		}
		if remote.KindOf(err) != remote.KindUnauthenticated {
			t.Errorf("%s: expected unauthenticated kind, got %v", tc.name, err)
		}
	}
}

func TestTokenContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := TokenFromContext(ctx); ok {
		t.Error("empty context should have no token")
	}
	ctx = WithToken(ctx, "abc")
	if token, ok := TokenFromContext(ctx); !ok || token != "abc" {
		t.Errorf("expected token abc, got %q (ok=%v)", token, ok)
	}

	ctx = WithClaims(ctx, Claims{UserID: "u1"})
	if claims, ok := ClaimsFromContext(ctx); !ok || claims.UserID != "u1" {
		t.Errorf("unexpected claims: %+v (ok=%v)", claims, ok)
	}
}

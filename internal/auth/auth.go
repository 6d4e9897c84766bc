// Package auth verifies bearer credentials issued by the external
// identity provider and threads them through request contexts. The
// service never issues credentials itself.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"contas/internal/remote"
)

type contextKey int

const (
	tokenKey contextKey = iota
	claimsKey
)

// Claims is the subset of token claims the service cares about.
type Claims struct {
	UserID string
	Email  string
}

// Verifier validates HS256 tokens against the provider's shared secret.
type Verifier struct {
	secret []byte
	leeway time.Duration
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), leeway: 30 * time.Second}
}

// Verify checks the token's signature and expiry and extracts claims.
// All failures map to an unauthenticated error.
func (v *Verifier) Verify(tokenString string) (Claims, error) {
	if tokenString == "" {
		return Claims{}, remote.ErrUnauthenticated
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithLeeway(v.leeway), jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, remote.NewError(remote.KindUnauthenticated, 0, err.Error())
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, remote.NewError(remote.KindUnauthenticated, 0, "unexpected claims shape")
	}

	claims := Claims{}
	if sub, err := mapClaims.GetSubject(); err == nil {
		claims.UserID = sub
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if claims.UserID == "" {
		return Claims{}, remote.NewError(remote.KindUnauthenticated, 0, "token has no subject")
	}
	return claims, nil
}

// WithToken stores the raw bearer token for downstream record store
// calls.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the raw bearer token, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}

// WithClaims stores verified claims on the context.
func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the verified claims, if any.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}

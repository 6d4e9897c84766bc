package http

import (
	"net"
	"net/http"
	"strings"

	"contas/internal/auth"
	"contas/internal/remote"
)

// authenticate verifies the bearer credential and threads both the raw
// token and the verified claims through the request context. The raw
// token travels onward to the record store; requests without one never
// reach a handler.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, r, remote.ErrUnauthenticated)
			return
		}

		claims, err := s.verifier.Verify(token)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := auth.WithToken(r.Context(), token)
		ctx = auth.WithClaims(ctx, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP prefers X-Forwarded-For, set by the reverse proxy in front
// of the service.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.Index(fwd, ","); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

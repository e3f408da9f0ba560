package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/syndly/syndly/pkg/jwtx"
)

type ctxKey string

// CtxKeyClaims holds the verified *jwtx.SessionClaims for the request.
const CtxKeyClaims ctxKey = "session_claims"

// Verifier validates a presented session token.
type Verifier interface {
	Verify(token string) (*jwtx.SessionClaims, error)
}

// ClaimsFromContext returns the session claims injected by AuthnMiddleware.
func ClaimsFromContext(ctx context.Context) (*jwtx.SessionClaims, bool) {
	claims, ok := ctx.Value(CtxKeyClaims).(*jwtx.SessionClaims)
	return claims, ok
}

// AuthnMiddleware verifies the Bearer token and injects its claims into
// the request context. Missing or invalid tokens are rejected with 401.
func AuthnMiddleware(verifier Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				WriteError(w, http.StatusUnauthorized, "invalid_token", "missing bearer token")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "invalid_token", "token verification failed")
				return
			}

			ctx := context.WithValue(r.Context(), CtxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsKeyExtractor groups rate-limited requests by the authenticated
// subject, falling back to the remote address before authentication.
func ClaimsKeyExtractor(r *http.Request) string {
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		return claims.Subject
	}
	return IPKeyExtractor(r)
}

package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const userKey contextKey = "user"

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (User, bool) {
	v, ok := ctx.Value(userKey).(User)
	return v, ok
}

// WithUser stores u in ctx.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// Verifier checks tokens issued by CreateSessionToken.
type Verifier struct {
	Secret []byte
	Issuer string
}

func (v Verifier) userFromRequest(r *http.Request) (User, bool, error) {
	token := tokenFromRequest(r)
	if token == "" {
		return User{}, false, nil
	}
	u, err := VerifySessionToken(token, v.Secret, v.Issuer)
	if err != nil {
		return User{}, true, err
	}
	return u, true, nil
}

// tokenFromRequest prefers the session cookie over an Authorization bearer token.
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName()); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAuth rejects requests without a valid session token.
func RequireAuth(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, present, err := v.userFromRequest(r)
			if !present {
				writeUnauthorized(w, "unauthorized")
				return
			}
			if err != nil {
				writeUnauthorized(w, "invalid_session")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// OptionalAuth attaches the user when a valid token is present and otherwise
// passes the request through unchanged.
func OptionalAuth(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, present, err := v.userFromRequest(r); present && err == nil {
				r = r.WithContext(WithUser(r.Context(), u))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DevUser is injected by DevAuth when AUTH_REQUIRED=false.
var DevUser = User{ID: "dev-user-id", Name: "Developer", Email: "dev@example.com"}

// DevAuth sets DevUser on every request.
func DevAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), DevUser)))
	})
}

func writeUnauthorized(w http.ResponseWriter, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + code + `"}`))
}

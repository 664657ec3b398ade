package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"rfpdesk.io/internal/account"
	"rfpdesk.io/internal/audit"
)

const (
	authHeader    = "Authorization"
	bearer        = "Bearer "
	sessionCookie = "rfpdesk_session"
)

const currentUserKey ctxKey = "current_user"

var publicPaths = []string{
	"/",
	"/healthz",
	"/readyz",
	"/metrics",
	"/v1/info",
	"/v1/auth/register",
	"/v1/auth/verify",
	"/v1/auth/login",
	"/v1/auth/password-reset/request",
	"/v1/auth/password-reset/confirm",
}

// withAuth validates the presented session token and attaches the
// authenticated user to the context. Auth flow endpoints and the
// operational probes stay public.
func (a *API) withAuth(next http.Handler) http.Handler {
	if a.accounts == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := sessionToken(r)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}

		user, err := a.accounts.ValidateSession(r.Context(), token)
		if err != nil {
			if errors.Is(err, account.ErrAuthentication) {
				writeError(w, r, http.StatusUnauthorized, "invalid or expired session")
				return
			}
			writeError(w, r, http.StatusInternalServerError, "authentication error")
			return
		}

		ctx := context.WithValue(r.Context(), currentUserKey, user)
		ctx = audit.WithUser(ctx, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*account.User, bool) {
	u, ok := ctx.Value(currentUserKey).(*account.User)
	return u, ok
}

// sessionToken takes the bearer header when present, falling back to
// the session cookie for browser clients.
func sessionToken(r *http.Request) (string, error) {
	if header := strings.TrimSpace(r.Header.Get(authHeader)); header != "" {
		return extractBearerToken(header)
	}
	if c, err := r.Cookie(sessionCookie); err == nil && strings.TrimSpace(c.Value) != "" {
		return c.Value, nil
	}
	return "", errors.New("missing bearer token")
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

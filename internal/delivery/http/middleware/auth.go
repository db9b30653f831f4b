package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	h "evently/internal/delivery/http/helpers"
	"evently/internal/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// SessionCookie is the cookie the hosted auth provider sets with the session token.
const SessionCookie = "session"

var (
	errMissingToken  = errors.New("missing authorization header")
	errInvalidFormat = errors.New("invalid authorization format")
	errEmptyToken    = errors.New("missing token")
)

// SetIdentity returns a context carrying the authenticated identity.
func SetIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the authenticated identity from the context, if present.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	return id, ok
}

// UserIDFromContext returns the authenticated user ID from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok || id.UserID == "" {
		return "", false
	}
	return id.UserID, true
}

// tokenFromRequest reads the Bearer token, falling back to the session cookie.
func tokenFromRequest(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
			return c.Value, nil
		}
		return "", errMissingToken
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", errInvalidFormat
	}
	token := strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		return "", errEmptyToken
	}
	return token, nil
}

func authenticate(verifier domain.TokenVerifier, r *http.Request) (domain.Identity, error) {
	token, err := tokenFromRequest(r)
	if err != nil {
		return domain.Identity{}, err
	}
	return verifier.Verify(token)
}

// RequireAuth returns a wrapper that validates the token and sets the identity in the request context.
// If the token is missing or invalid, it responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			identity, err := authenticate(verifier, r)
			if err != nil {
				msg := err.Error()
				if !errors.Is(err, errMissingToken) && !errors.Is(err, errInvalidFormat) && !errors.Is(err, errEmptyToken) {
					logger.DebugContext(r.Context(), "token rejected", "path", r.URL.Path, "err", err)
					msg = "invalid or expired token"
				}
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, msg)
				return
			}
			next(w, r.WithContext(SetIdentity(r.Context(), identity)))
		}
	}
}

// RequirePageAuth is RequireAuth for HTML pages: unauthenticated visitors are
// redirected to signInURL with the current path as redirect_url.
func RequirePageAuth(verifier domain.TokenVerifier, signInURL string, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			identity, err := authenticate(verifier, r)
			if err != nil {
				logger.DebugContext(r.Context(), "redirecting to sign-in", "path", r.URL.Path, "err", err)
				http.Redirect(w, r, SignInRedirect(signInURL, r.URL.RequestURI()), http.StatusSeeOther)
				return
			}
			next(w, r.WithContext(SetIdentity(r.Context(), identity)))
		}
	}
}

// OptionalAuth sets the identity when a valid token is present and always calls next.
func OptionalAuth(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if identity, err := authenticate(verifier, r); err == nil {
				r = r.WithContext(SetIdentity(r.Context(), identity))
			}
			next(w, r)
		}
	}
}

// SignInRedirect builds the sign-in URL that returns the user to back after authenticating.
func SignInRedirect(signInURL, back string) string {
	u, err := url.Parse(signInURL)
	if err != nil {
		return signInURL
	}
	q := u.Query()
	q.Set("redirect_url", back)
	u.RawQuery = q.Encode()
	return u.String()
}

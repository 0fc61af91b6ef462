package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/isdelr/storefront-be/internal/apperr"
	"github.com/isdelr/storefront-be/internal/httpx"
	"github.com/isdelr/storefront-be/internal/models"
)

// CookieName is the cookie that carries the token for browser clients.
const CookieName = "token"

// Rejection messages. They never say why a present token failed.
const (
	MsgNoCredential          = "no credential"
	MsgInvalidCredential     = "invalid credential"
	MsgInsufficientPrivilege = "insufficient privilege"
)

type contextKey string

const identityKey = contextKey("identity")

// TokenVerifier validates a raw token.
type TokenVerifier interface {
	Verify(tokenStr string) (Identity, error)
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity attached by Authenticate.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// TokenFromRequest extracts the raw token. A non-empty Authorization header
// wins over the cookie; a header that is not a Bearer credential yields
// present=true with an empty token so that it is rejected rather than
// silently falling back to the cookie.
func TokenFromRequest(r *http.Request) (token string, present bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		const prefix = "Bearer "
		if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
			return strings.TrimSpace(header[len(prefix):]), true
		}
		return "", true
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Authenticate creates a middleware that rejects requests without a valid token
// and attaches the caller's Identity to the context otherwise.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, present := TokenFromRequest(r)
			if !present {
				httpx.Error(w, apperr.Token(MsgNoCredential))
				return
			}

			identity, err := verifier.Verify(tokenStr)
			if err != nil {
				httpx.Error(w, apperr.Token(MsgInvalidCredential))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRole wraps a handler and ensures the authenticated identity has role.
// It must run after Authenticate.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				httpx.Error(w, apperr.Token(MsgNoCredential))
				return
			}
			if !allowed(identity.Role, role) {
				httpx.Error(w, apperr.Privilege(MsgInsufficientPrivilege))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func allowed(have, want models.Role) bool {
	switch want {
	case models.RoleAdmin:
		return have == models.RoleAdmin
	case models.RoleUser:
		return have == models.RoleUser
	default:
		return false
	}
}

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// IdentityLoader resolves the stored identity behind a token subject. It
// returns ErrInvalidToken when the account no longer exists or is inactive.
type IdentityLoader interface {
	LoadIdentity(ctx context.Context, userID string) (Identity, error)
}

// Middleware validates JWTs and enforces RBAC.
type Middleware struct {
	Secret []byte
	Policy Policy
	Loader IdentityLoader
}

// NewMiddleware constructs an auth middleware. A nil loader trusts the
// token claims as issued.
func NewMiddleware(secret []byte, policy Policy, loader IdentityLoader) *Middleware {
	return &Middleware{Secret: secret, Policy: policy, Loader: loader}
}

// Wrap applies auth and RBAC to the handler.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}

		required, ok := m.Policy.RequiredRole(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		token := extractBearer(r)
		claims, err := ParseJWT(token, m.Secret)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		identity := claims.Identity()
		if m.Loader != nil {
			identity, err = m.Loader.LoadIdentity(r.Context(), claims.Subject)
			if errors.Is(err, ErrInvalidToken) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}
		ctx := WithIdentity(r.Context(), identity)
		if !identity.Superuser && !RoleAtLeast(identity.Role, required) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearer(r *http.Request) string {
	if r == nil {
		return ""
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAuthMiddleware_NoToken(t *testing.T) {
	secret := []byte("test-secret")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy, nil)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthMiddleware_StudentForbiddenProjectCreate(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, Identity{UserID: "user-1", Role: RoleStudent})
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil), nil)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_CenterDirectorForbiddenNationalDashboard(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, Identity{UserID: "user-2", Role: RoleCenterDirector, OrganizationID: "org-1"})
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil), nil)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboards/national", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_SuperuserPassesAndCarriesIdentity(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, Identity{UserID: "root", Superuser: true})
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil), nil)
	var got Identity
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboards/national", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got.UserID != "root" || !got.Superuser {
		t.Fatalf("unexpected identity %+v", got)
	}
}

func TestAuthMiddleware_ExemptPath(t *testing.T) {
	mw := NewMiddleware([]byte("test-secret"), NewDefaultPolicy([]string{"/healthz"}, []string{"/api/v1/public/"}), nil)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/healthz", "/api/v1/public/summary"} {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
	}
}

type loaderFunc func(ctx context.Context, userID string) (Identity, error)

func (f loaderFunc) LoadIdentity(ctx context.Context, userID string) (Identity, error) {
	return f(ctx, userID)
}

func TestAuthMiddleware_LoaderOverridesTokenClaims(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, Identity{UserID: "user-3", Role: RoleProfessor, OrganizationID: "org-1"})

	cases := []struct {
		name   string
		loader loaderFunc
		want   int
	}{
		{
			name: "demoted",
			loader: func(_ context.Context, userID string) (Identity, error) {
				return Identity{UserID: userID, Role: RoleStudent, OrganizationID: "org-1"}, nil
			},
			want: http.StatusForbidden,
		},
		{
			name: "deactivated",
			loader: func(context.Context, string) (Identity, error) {
				return Identity{}, ErrInvalidToken
			},
			want: http.StatusUnauthorized,
		},
		{
			name: "store failure",
			loader: func(context.Context, string) (Identity, error) {
				return Identity{}, errors.New("connection refused")
			},
			want: http.StatusInternalServerError,
		},
		{
			name: "unchanged",
			loader: func(_ context.Context, userID string) (Identity, error) {
				return Identity{UserID: userID, Role: RoleProfessor, OrganizationID: "org-1"}, nil
			},
			want: http.StatusOK,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil), tc.loader)
			handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.Code)
			}
		})
	}
}

func TestNormalizeRole(t *testing.T) {
	role, ok := NormalizeRole(" director_nacional ")
	if !ok || role != RoleNationalDirector {
		t.Fatalf("unexpected role %q %v", role, ok)
	}
	if _, ok := NormalizeRole("ADMIN"); ok {
		t.Fatalf("ADMIN should not be a role")
	}
}

func mustToken(t *testing.T, secret []byte, identity Identity) string {
	t.Helper()
	signed, err := IssueToken(identity, secret, time.Hour, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

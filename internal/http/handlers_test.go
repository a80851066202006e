package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Flarenzy/stateless-auth/internal/auth"
	"github.com/Flarenzy/stateless-auth/internal/domain"
)

func newHandlerTestAPI(service domain.UserService, healthErr error, keys KeySetProvider) *API {
	return NewAPI(discardLogger(), stubHealthChecker{err: healthErr}, service, keys, nil)
}

func asPrincipal(req *http.Request, username string, roles ...string) *http.Request {
	return req.WithContext(auth.WithPrincipal(req.Context(), auth.NewPrincipal(username, roles...)))
}

func serve(api *API, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)
	return rec
}

func TestReadyzReturnsServiceUnavailableWhenHealthCheckFails(t *testing.T) {
	api := newHandlerTestAPI(stubUserService{}, context.Canceled, nil)

	rec := serve(api, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestHealthzReturnsOK(t *testing.T) {
	api := newHandlerTestAPI(stubUserService{}, nil, nil)

	rec := serve(api, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("expected 200 ok, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestJWKSNotFoundForSymmetricKeys(t *testing.T) {
	api := newHandlerTestAPI(stubUserService{}, nil, newTestTokens(t, nil))

	rec := serve(api, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestJWKSPublishesEdDSAKey(t *testing.T) {
	key, err := auth.GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tokens, err := auth.NewTokenService(context.Background(), auth.TokenConfig{
		Algorithm:  auth.AlgorithmEdDSA,
		SigningKey: key,
		TTL:        time.Hour,
	})
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	api := newHandlerTestAPI(stubUserService{}, nil, tokens)

	rec := serve(api, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}

	var set struct {
		Keys []struct {
			KTY string `json:"kty"`
			CRV string `json:"crv"`
			KID string `json:"kid"`
		} `json:"keys"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &set); err != nil {
		t.Fatalf("decode jwks: %v", err)
	}
	if len(set.Keys) != 1 || set.Keys[0].KTY != "OKP" || set.Keys[0].CRV != "Ed25519" || set.Keys[0].KID == "" {
		t.Fatalf("unexpected jwks: %s", rec.Body.String())
	}
}

func TestGetUserReturnsNotFound(t *testing.T) {
	api := newHandlerTestAPI(stubUserService{
		getUserFn: func(context.Context, string) (domain.User, error) {
			return domain.User{}, domain.ErrNotFound
		},
	}, nil, nil)

	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/api/v1/users/ghost", nil), "alice", RoleAdmin)
	rec := serve(api, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestGetUserReturnsBadRequestOnInvalidInput(t *testing.T) {
	api := newHandlerTestAPI(stubUserService{
		getUserFn: func(context.Context, string) (domain.User, error) {
			return domain.User{}, domain.ErrInvalidInput
		},
	}, nil, nil)

	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/api/v1/users/%20", nil), "alice", RoleAdmin)
	rec := serve(api, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestGetUserOmitsPasswordHash(t *testing.T) {
	api := newHandlerTestAPI(stubUserService{
		getUserFn: func(_ context.Context, username string) (domain.User, error) {
			return domain.User{Username: username, Roles: []string{"USER"}}, nil
		},
	}, nil, nil)

	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/api/v1/users/bob", nil), "alice", RoleAdmin)
	rec := serve(api, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}

	var user UserResponse
	decodeResult(t, rec, &user)
	if user.Username != "bob" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("unexpected password field: %s", rec.Body.String())
	}
}

func TestListUsersReturnsInternalErrorOnStoreFailure(t *testing.T) {
	api := newHandlerTestAPI(stubUserService{
		listUsersFn: func(context.Context) ([]domain.User, error) {
			return nil, errors.New("redis down")
		},
	}, nil, nil)

	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/api/v1/users", nil), "alice", RoleAdmin)
	rec := serve(api, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}

func TestRequireRoleWithoutPrincipalIsUnauthorized(t *testing.T) {
	api := newHandlerTestAPI(stubUserService{}, nil, nil)

	rec := serve(api, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestIndexNegotiatesRepresentation(t *testing.T) {
	api := newHandlerTestAPI(stubUserService{}, nil, nil)

	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/index", nil), "alice", "ADMIN", "USER")
	req.Header.Set("Accept", "text/html")
	rec := serve(api, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Welcome, alice") {
		t.Fatalf("expected html greeting, got %s", rec.Body.String())
	}

	req = asPrincipal(httptest.NewRequest(http.MethodGet, "/index", nil), "alice", "ADMIN", "USER")
	req.Header.Set("Accept", "application/json")
	rec = serve(api, req)

	var me PrincipalResponse
	decodeResult(t, rec, &me)
	if me.Username != "alice" || len(me.Roles) != 2 {
		t.Fatalf("unexpected principal: %+v", me)
	}
}

func TestLoginPageRendersForm(t *testing.T) {
	api := newHandlerTestAPI(stubUserService{}, nil, nil)

	rec := serve(api, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `action="/login"`) {
		t.Fatalf("expected form posting to /login, got %s", rec.Body.String())
	}
}

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    bool
	}{
		{"no accept", nil, true},
		{"json accept", map[string]string{"Accept": "application/json"}, true},
		{"browser", map[string]string{"Accept": "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"}, false},
		{"json body", map[string]string{"Content-Type": "application/json; charset=utf-8", "Accept": "text/html"}, true},
		{"xhr", map[string]string{"X-Requested-With": "XMLHttpRequest", "Accept": "text/html"}, true},
		{"image only", map[string]string{"Accept": "image/png"}, false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for k, v := range tt.headers {
			req.Header.Set(k, v)
		}
		if got := wantsJSON(req); got != tt.want {
			t.Fatalf("%s: wantsJSON = %v, want %v", tt.name, got, tt.want)
		}
	}
}

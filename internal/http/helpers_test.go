package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Flarenzy/stateless-auth/internal/auth"
	"github.com/Flarenzy/stateless-auth/internal/db"
	"github.com/Flarenzy/stateless-auth/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type captureHandler struct {
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *captureHandler) Handle(_ context.Context, record slog.Record) error {
	clone := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		clone.AddAttrs(attr)
		return true
	})
	h.records = append(h.records, clone)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler {
	return h
}

func (h *captureHandler) WithGroup(string) slog.Handler {
	return h
}

type stubHealthChecker struct {
	err error
}

func (s stubHealthChecker) Ping(context.Context) error {
	return s.err
}

type stubUserService struct {
	listUsersFn func(context.Context) ([]domain.User, error)
	getUserFn   func(context.Context, string) (domain.User, error)
}

func (s stubUserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	if s.listUsersFn == nil {
		return nil, nil
	}
	return s.listUsersFn(ctx)
}

func (s stubUserService) GetUser(ctx context.Context, username string) (domain.User, error) {
	if s.getUserFn == nil {
		return domain.User{}, nil
	}
	return s.getUserFn(ctx, username)
}

type stubCredentialChecker struct {
	checkFn func(context.Context, auth.CredentialRequest) (auth.Principal, error)
}

func (s stubCredentialChecker) Check(ctx context.Context, req auth.CredentialRequest) (auth.Principal, error) {
	return s.checkFn(ctx, req)
}

type testResult struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustHash(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hash)
}

func newTestStore(t *testing.T) *db.MemoryUserRepository {
	t.Helper()

	return db.NewMemoryUserRepository(
		domain.User{Username: "alice", PasswordHash: mustHash(t, "wonderland"), Roles: []string{"USER", "ADMIN"}},
		domain.User{Username: "bob", PasswordHash: mustHash(t, "builder"), Roles: []string{"USER"}},
	)
}

func newTestTokens(t *testing.T, now func() time.Time) *auth.TokenService {
	t.Helper()

	tokens, err := auth.NewTokenService(context.Background(), auth.TokenConfig{
		Secret: testSecret,
		Issuer: "stateless-auth-test",
		TTL:    time.Hour,
		Now:    now,
	})
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	return tokens
}

type testStack struct {
	api    *API
	tokens *auth.TokenService
	logs   *captureHandler
}

func newTestStack(t *testing.T) testStack {
	t.Helper()
	return newTestStackWithClock(t, nil)
}

func newTestStackWithClock(t *testing.T, now func() time.Time) testStack {
	t.Helper()

	store := newTestStore(t)
	verifier, err := auth.NewCredentialVerifier(store)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	tokens := newTestTokens(t, now)

	logs := &captureHandler{}
	logger := slog.New(logs)
	gate := NewGate(logger, GateConfig{}, nil, verifier, tokens, tokens)

	return testStack{
		api:    NewAPI(logger, store, domain.NewUserService(store), tokens, gate),
		tokens: tokens,
		logs:   logs,
	}
}

func (s testStack) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.api.Router().ServeHTTP(rec, req)
	return rec
}

func jsonLogin(username, password string) *http.Request {
	body, _ := json.Marshal(LoginRequest{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (s testStack) mustLogin(t *testing.T, username, password string) string {
	t.Helper()

	rec := s.do(jsonLogin(username, password))
	if rec.Code != http.StatusOK {
		t.Fatalf("login as %s: expected 200, got %d: %s", username, rec.Code, rec.Body.String())
	}

	var token TokenResponse
	decodeResult(t, rec, &token)
	return token.Token
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder, data any) testResult {
	t.Helper()

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected json response, got %q: %s", ct, rec.Body.String())
	}

	var result testResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if data != nil {
		if err := json.Unmarshal(result.Data, data); err != nil {
			t.Fatalf("decode result data: %v", err)
		}
	}
	return result
}

package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Flarenzy/stateless-auth/internal/domain"
	httpSwagger "github.com/swaggo/http-swagger"
)

const RoleAdmin = "ADMIN"

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type KeySetProvider interface {
	JWKS(ctx context.Context) (json.RawMessage, error)
}

type API struct {
	Logger *slog.Logger
	Health HealthChecker
	Users  domain.UserService
	Keys   KeySetProvider
	Gate   *Gate
}

func NewAPI(logger *slog.Logger, health HealthChecker, users domain.UserService, keys KeySetProvider, gate *Gate) *API {
	return &API{
		Logger: logger,
		Health: health,
		Users:  users,
		Keys:   keys,
		Gate:   gate,
	}
}

func (a *API) loginPath() string {
	if a.Gate == nil {
		return "/login"
	}
	return a.Gate.LoginPath()
}

func (a *API) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", a.handleHealthz)
	mux.HandleFunc("GET /readyz", a.handleReadyz)
	mux.HandleFunc("GET /.well-known/jwks.json", a.handleJWKS)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS())))
	mux.HandleFunc("GET "+a.loginPath(), a.handleLoginPage)
	mux.HandleFunc("GET /index", a.handleIndex)
	mux.HandleFunc("GET /api/v1/me", a.handleMe)
	mux.Handle("GET /api/v1/users", a.requireRole(RoleAdmin, a.handleListUsers))
	mux.Handle("GET /api/v1/users/{username}", a.requireRole(RoleAdmin, a.handleGetUser))

	if a.Gate == nil {
		return mux
	}
	return a.Gate.Wrap(mux)
}

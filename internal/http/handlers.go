package http

import (
	"errors"
	"net/http"

	"github.com/Flarenzy/stateless-auth/internal/auth"
	"github.com/Flarenzy/stateless-auth/internal/domain"
)

// @Summary Health check
// @Tags health
// @Success 200 {string} string "ok"
// @Router /healthz [get]
func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// @Summary Readiness check
// @Tags health
// @Success 200 {string} string "ready"
// @Failure 503 {string} string "credential store unavailable"
// @Router /readyz [get]
func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if a.Health != nil {
		if err := a.Health.Ping(ctx); err != nil {
			a.Logger.ErrorContext(ctx, "credential store ping failed", "err", err.Error())
			http.Error(w, "credential store unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// @Summary Public signing keys
// @Description JWK set used to verify issued tokens. Only available with asymmetric signing.
// @Tags auth
// @Produce json
// @Success 200 {object} object
// @Failure 404 {object} Result
// @Router /.well-known/jwks.json [get]
func (a *API) handleJWKS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if a.Keys == nil {
		a.respondError(w, r, http.StatusNotFound, "not found")
		return
	}

	raw, err := a.Keys.JWKS(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrNoPublicKeys) {
			a.respondError(w, r, http.StatusNotFound, "not found")
			return
		}
		a.Logger.ErrorContext(ctx, "reading jwks", "err", err.Error())
		a.respondError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// @Summary Login page
// @Tags auth
// @Produce html
// @Success 200 {string} string "login form"
// @Router /login [get]
func (a *API) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pages.ExecuteTemplate(w, "login.html", struct{ LoginPath string }{a.loginPath()})
	if err != nil {
		a.Logger.ErrorContext(r.Context(), "rendering login page", "err", err.Error())
	}
}

// @Summary Landing page
// @Tags auth
// @Produce json,html
// @Security BearerAuth
// @Success 200 {object} Result{data=PrincipalResponse}
// @Failure 401 {object} Result
// @Router /index [get]
func (a *API) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		a.respondError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	if wantsJSON(r) {
		a.respondResult(w, r, http.StatusOK, principalToResponse(p), "ok")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, "index.html", principalToResponse(p)); err != nil {
		a.Logger.ErrorContext(ctx, "rendering index page", "err", err.Error())
	}
}

// @Summary Current principal
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Result{data=PrincipalResponse}
// @Failure 401 {object} Result
// @Router /api/v1/me [get]
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		a.respondError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	a.respondResult(w, r, http.StatusOK, principalToResponse(p), "ok")
}

// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Result{data=[]UserResponse}
// @Failure 401 {object} Result
// @Failure 403 {object} Result
// @Failure 500 {object} Result
// @Router /api/v1/users [get]
func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.Users.ListUsers(r.Context())
	if err != nil {
		a.respondError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	a.respondResult(w, r, http.StatusOK, usersToResponse(users), "ok")
}

// @Summary Get user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} Result{data=UserResponse}
// @Failure 400 {object} Result
// @Failure 401 {object} Result
// @Failure 403 {object} Result
// @Failure 404 {object} Result
// @Failure 500 {object} Result
// @Router /api/v1/users/{username} [get]
func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.Users.GetUser(r.Context(), r.PathValue("username"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			a.respondError(w, r, http.StatusNotFound, "user not found")
		case errors.Is(err, domain.ErrInvalidInput):
			a.respondError(w, r, http.StatusBadRequest, "bad request")
		default:
			a.respondError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	a.respondResult(w, r, http.StatusOK, userToResponse(user), "ok")
}

// requireRole rejects authenticated callers that lack role with 403. Requests
// without a principal never passed the gate and get 401.
func (a *API) requireRole(role string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		p, ok := auth.PrincipalFromContext(ctx)
		if !ok {
			a.respondError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !p.HasRole(role) {
			a.Logger.InfoContext(ctx, "access denied", "username", p.Username(), "required_role", role, "path", r.URL.Path)
			a.respondError(w, r, http.StatusForbidden, auth.ErrForbidden.Error())
			return
		}
		next(w, r)
	})
}

func (a *API) respondResult(w http.ResponseWriter, r *http.Request, status int, data any, message string) {
	if err := writeResult(w, r, status, data, message); err != nil {
		a.Logger.ErrorContext(r.Context(), "responding to client", "err", err.Error())
	}
}

func (a *API) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if err := writeError(w, r, status, message); err != nil {
		a.Logger.ErrorContext(r.Context(), "responding to client", "err", err.Error())
	}
}

func principalToResponse(p auth.Principal) PrincipalResponse {
	roles := p.Roles()
	if roles == nil {
		roles = []string{}
	}
	return PrincipalResponse{Username: p.Username(), Roles: roles}
}

package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/Flarenzy/stateless-auth/internal/auth"
	"github.com/elnormous/contenttype"
)

type Action int

const (
	ActionAuthenticate Action = iota
	ActionLogin
	ActionLogout
	ActionPermit
)

func (a Action) String() string {
	switch a {
	case ActionLogin:
		return "login"
	case ActionLogout:
		return "logout"
	case ActionPermit:
		return "permit"
	default:
		return "authenticate"
	}
}

type RequestMatcher func(*http.Request) bool

// Rule routes matching requests to an Action. Rules are evaluated in order and
// the first match wins.
type Rule struct {
	Name   string
	Match  RequestMatcher
	Action Action
}

type GateConfig struct {
	LoginPath   string
	LogoutPath  string
	SuccessURL  string
	PublicPaths []string
}

var defaultPublicPaths = []string{
	"/static/**",
	"/login",
	"/css/**",
	"/js/*",
	"/image/*",
	"/healthz",
	"/readyz",
	"/swagger/**",
	"/.well-known/jwks.json",
}

func (c GateConfig) withDefaults() GateConfig {
	if c.LoginPath == "" {
		c.LoginPath = "/login"
	}
	if c.LogoutPath == "" {
		c.LogoutPath = "/logout"
	}
	if c.SuccessURL == "" {
		c.SuccessURL = "/index"
	}
	return c
}

func DefaultRules(cfg GateConfig) []Rule {
	cfg = cfg.withDefaults()

	public := append([]string{}, defaultPublicPaths...)
	if cfg.LoginPath != "/login" {
		public = append(public, cfg.LoginPath)
	}
	public = append(public, cfg.PublicPaths...)

	return []Rule{
		{Name: "login", Match: MatchMethodPath(http.MethodPost, cfg.LoginPath), Action: ActionLogin},
		{Name: "logout", Match: MatchPath(cfg.LogoutPath), Action: ActionLogout},
		{Name: "public", Match: MatchMethodPath(http.MethodGet, public...), Action: ActionPermit},
		{Name: "default", Match: func(*http.Request) bool { return true }, Action: ActionAuthenticate},
	}
}

// MatchMethodPath matches requests with the given method whose cleaned path
// matches one of the patterns. GET patterns also admit HEAD.
func MatchMethodPath(method string, patterns ...string) RequestMatcher {
	paths := MatchPath(patterns...)
	return func(r *http.Request) bool {
		m := r.Method
		if m == http.MethodHead && method == http.MethodGet {
			m = http.MethodGet
		}
		return m == method && paths(r)
	}
}

func MatchPath(patterns ...string) RequestMatcher {
	return func(r *http.Request) bool {
		p := cleanPath(r.URL.Path)
		for _, pattern := range patterns {
			if matchPattern(pattern, p) {
				return true
			}
		}
		return false
	}
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}

// matchPattern implements the ant subset used by the rules: "*" matches within
// a single segment and a trailing "/**" matches the base path and anything
// below it.
func matchPattern(pattern, p string) bool {
	if base, ok := strings.CutSuffix(pattern, "/**"); ok {
		if base == "" {
			return true
		}
		if matchSegments(base, p) {
			return true
		}
		prefix := strings.Count(base, "/")
		segs := strings.Split(p, "/")
		if len(segs) <= prefix+1 {
			return false
		}
		return matchSegments(base, strings.Join(segs[:prefix+1], "/"))
	}
	return matchSegments(pattern, p)
}

func matchSegments(pattern, p string) bool {
	ok, err := path.Match(pattern, p)
	return err == nil && ok
}

type gateState string

const (
	stateUnauthenticated gateState = "unauthenticated"
	stateLoginInFlight   gateState = "login_in_flight"
	stateAuthenticated   gateState = "authenticated"
	stateRejected        gateState = "rejected"
)

type CredentialChecker interface {
	Check(ctx context.Context, req auth.CredentialRequest) (auth.Principal, error)
}

type TokenIssuer interface {
	Issue(p auth.Principal) (string, error)
	TTL() time.Duration
}

// Gate authenticates every request before it reaches the wrapped handler. It
// keeps no per-client state between requests.
type Gate struct {
	logger     *slog.Logger
	rules      []Rule
	verifier   CredentialChecker
	issuer     TokenIssuer
	authn      auth.Authenticator
	loginPath  string
	successURL string
}

func NewGate(logger *slog.Logger, cfg GateConfig, rules []Rule, verifier CredentialChecker, issuer TokenIssuer, authn auth.Authenticator) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	if rules == nil {
		rules = DefaultRules(cfg)
	}

	return &Gate{
		logger:     logger,
		rules:      rules,
		verifier:   verifier,
		issuer:     issuer,
		authn:      authn,
		loginPath:  cfg.LoginPath,
		successURL: cfg.SuccessURL,
	}
}

func (g *Gate) LoginPath() string {
	return g.loginPath
}

func (g *Gate) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rule, ok := g.match(r)
		if !ok {
			rule = Rule{Name: "unmatched", Action: ActionAuthenticate}
		}

		switch rule.Action {
		case ActionLogin:
			g.login(w, r)
		case ActionLogout:
			g.logout(w, r)
		case ActionPermit:
			next.ServeHTTP(w, r)
		default:
			g.authenticate(w, r, next)
		}
	})
}

func (g *Gate) match(r *http.Request) (Rule, bool) {
	for _, rule := range g.rules {
		if rule.Match != nil && rule.Match(r) {
			return rule, true
		}
	}
	return Rule{}, false
}

func (g *Gate) transition(ctx context.Context, r *http.Request, from, to gateState) {
	g.logger.DebugContext(ctx, "gate transition", "method", r.Method, "path", r.URL.Path, "from", from, "to", to)
}

// @Summary Log in
// @Description Exchanges a username and password for a bearer token. Accepts JSON or form bodies.
// @Description Non-JSON clients are redirected to the landing page on success.
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} Result{data=TokenResponse}
// @Success 302 {string} string "redirect to the landing page"
// @Failure 400 {object} Result
// @Failure 401 {object} Result
// @Failure 500 {object} Result
// @Router /login [post]
func (g *Gate) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	g.transition(ctx, r, stateUnauthenticated, stateLoginInFlight)

	creds, err := readCredentials(w, r)
	if err != nil {
		g.transition(ctx, r, stateLoginInFlight, stateRejected)
		g.logger.InfoContext(ctx, "unreadable login request", "err", err.Error())
		g.respondError(w, r, http.StatusBadRequest, "bad request")
		return
	}

	principal, err := g.verifier.Check(ctx, creds)
	if err != nil {
		g.transition(ctx, r, stateLoginInFlight, stateRejected)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			g.logger.InfoContext(ctx, "login failed", "username", creds.Username)
			g.respondError(w, r, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
			return
		}
		g.logger.ErrorContext(ctx, "checking credentials", "username", creds.Username, "err", err.Error())
		g.respondError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	token, err := g.issuer.Issue(principal)
	if err != nil {
		g.transition(ctx, r, stateLoginInFlight, stateRejected)
		g.logger.ErrorContext(ctx, "issuing token", "username", principal.Username(), "err", err.Error())
		g.respondError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	g.transition(ctx, r, stateLoginInFlight, stateAuthenticated)
	g.logger.InfoContext(ctx, "login succeeded", "username", principal.Username())
	w.Header().Set("Authorization", "Bearer "+token)

	if !wantsJSON(r) {
		http.Redirect(w, r, g.successURL, http.StatusFound)
		return
	}

	err = writeResult(w, r, http.StatusOK, TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(g.issuer.TTL() / time.Second),
	}, "ok")
	if err != nil {
		g.logger.ErrorContext(ctx, "responding to client", "err", err.Error())
	}
}

// @Summary Log out
// @Description Acknowledges a logout. Tokens are not revoked; clients discard them.
// @Tags auth
// @Produce json
// @Success 200 {object} Result
// @Router /logout [post]
func (g *Gate) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := writeResult(w, r, http.StatusOK, nil, "logout success"); err != nil {
		g.logger.ErrorContext(ctx, "responding to client", "err", err.Error())
	}
}

func (g *Gate) authenticate(w http.ResponseWriter, r *http.Request, next http.Handler) {
	ctx := r.Context()

	principal, err := g.authn.Authenticate(ctx, bearerToken(r))
	if err != nil {
		g.transition(ctx, r, stateUnauthenticated, stateRejected)
		if auth.IsTokenError(err) {
			g.logger.InfoContext(ctx, "authentication rejected", "path", r.URL.Path, "reason", err.Error())
			g.respondError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		g.logger.ErrorContext(ctx, "authenticating request", "path", r.URL.Path, "err", err.Error())
		g.respondError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	g.transition(ctx, r, stateUnauthenticated, stateAuthenticated)
	next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(ctx, principal)))
}

func (g *Gate) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if err := writeError(w, r, status, message); err != nil {
		g.logger.ErrorContext(r.Context(), "responding to client", "err", err.Error())
	}
}

// bearerToken returns the credentials of an Authorization header using the
// Bearer scheme, or "" when there is none.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func readCredentials(w http.ResponseWriter, r *http.Request) (auth.CredentialRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if hasJSONBody(r) {
		req, err := decode[LoginRequest](r)
		if err != nil {
			return auth.CredentialRequest{}, err
		}
		return auth.CredentialRequest{Username: req.Username, Password: req.Password}, nil
	}

	if ctype, err := contenttype.GetMediaType(r); err == nil && ctype.Matches(multipartMediaType) {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return auth.CredentialRequest{}, err
		}
	} else if err := r.ParseForm(); err != nil {
		return auth.CredentialRequest{}, err
	}

	return auth.CredentialRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}, nil
}

var multipartMediaType = contenttype.NewMediaType("multipart/form-data")

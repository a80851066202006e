package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Flarenzy/stateless-auth/internal/auth"
	appdb "github.com/Flarenzy/stateless-auth/internal/db"
	"github.com/Flarenzy/stateless-auth/internal/domain"
	apihttp "github.com/Flarenzy/stateless-auth/internal/http"
	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	Port            string        `env:"PORT,default=4040"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT,default=3s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT,default=3s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	LogFormat       string        `env:"LOG_FORMAT,default=text"`

	CredentialStore string `env:"CREDENTIAL_STORE,default=memory"`
	DSN             string `env:"DB_CONN"`
	RedisAddr       string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisKeyPrefix  string `env:"REDIS_KEY_PREFIX,default=auth:"`
	UsersFile       string `env:"USERS_FILE"`

	SecurityUser SecurityUserConfig
	JWT          JWTConfig

	LoginPath       string   `env:"LOGIN_PATH,default=/login"`
	LogoutPath      string   `env:"LOGOUT_PATH,default=/logout"`
	LoginSuccessURL string   `env:"LOGIN_SUCCESS_URL,default=/index"`
	PublicPaths     []string `env:"PUBLIC_PATHS"`
}

// SecurityUserConfig describes a single user kept in memory next to the
// configured credential store.
type SecurityUserConfig struct {
	Name         string `env:"SECURITY_USER_NAME"`
	Password     string `env:"SECURITY_USER_PASSWORD"`
	PasswordHash string `env:"SECURITY_USER_PASSWORD_HASH"`
	Roles        string `env:"SECURITY_USER_ROLES,default=USER"`
}

type JWTConfig struct {
	Algorithm      string        `env:"JWT_ALGORITHM,default=HS256"`
	Secret         string        `env:"JWT_SECRET"`
	SigningKeySeed string        `env:"JWT_SIGNING_KEY_SEED"`
	Issuer         string        `env:"JWT_ISSUER,default=stateless-auth"`
	TTL            time.Duration `env:"JWT_TTL,default=1h"`
	Leeway         time.Duration `env:"JWT_LEEWAY,default=5s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.CredentialStore {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		if c.DSN == "" {
			return errors.New("missing required environment variable: DB_CONN")
		}
	default:
		return fmt.Errorf("unknown CREDENTIAL_STORE %q", c.CredentialStore)
	}

	switch c.JWT.Algorithm {
	case auth.AlgorithmHS256:
		if c.JWT.Secret == "" {
			return errors.New("missing required environment variable: JWT_SECRET")
		}
	case auth.AlgorithmEdDSA:
	default:
		return fmt.Errorf("unknown JWT_ALGORITHM %q", c.JWT.Algorithm)
	}

	if c.JWT.TTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.SecurityUser.Name != "" && c.SecurityUser.Password == "" && c.SecurityUser.PasswordHash == "" {
		return errors.New("SECURITY_USER_NAME requires SECURITY_USER_PASSWORD or SECURITY_USER_PASSWORD_HASH")
	}
	return nil
}

func newLogger(cfg Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func Run(ctx context.Context, cfg Config) error {
	listener, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
	}
	return Serve(ctx, cfg, listener)
}

// Serve wires the service together and serves on listener until ctx is done.
// Startup failures are returned before the listener accepts any request.
func Serve(ctx context.Context, cfg Config, listener net.Listener) error {
	logger := newLogger(cfg, os.Stdout)

	users, closeUsers, err := newUserRepository(ctx, cfg, logger)
	if err != nil {
		_ = listener.Close()
		return err
	}
	defer closeUsers()

	tokens, err := newTokenService(ctx, cfg, logger)
	if err != nil {
		_ = listener.Close()
		return err
	}

	verifier, err := auth.NewCredentialVerifier(users)
	if err != nil {
		_ = listener.Close()
		return err
	}

	gateCfg := apihttp.GateConfig{
		LoginPath:   cfg.LoginPath,
		LogoutPath:  cfg.LogoutPath,
		SuccessURL:  cfg.LoginSuccessURL,
		PublicPaths: cfg.PublicPaths,
	}
	gate := apihttp.NewGate(logger, gateCfg, nil, verifier, tokens, tokens)
	userService := domain.NewLoggingUserService(logger, domain.NewUserService(users))
	api := apihttp.NewAPI(logger, users, userService, tokens, gate)

	server := &http.Server{
		Handler:      api.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", listener.Addr().String(), "store", cfg.CredentialStore, "alg", tokens.Algorithm())
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func (c Config) shutdownTimeout() time.Duration {
	if c.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return c.ShutdownTimeout
}

// newUserRepository builds the configured store with the in-memory users
// chained in front of it.
func newUserRepository(ctx context.Context, cfg Config, logger *slog.Logger) (appdb.Store, func(), error) {
	memUsers, err := memoryUsers(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	memory := appdb.NewMemoryUserRepository(memUsers...)

	switch cfg.CredentialStore {
	case StorePostgres:
		pool, err := appdb.NewPool(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		repo := appdb.NewPostgresUserRepository(pool)
		return appdb.NewChainUserRepository(memory, repo), pool.Close, nil
	case StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		repo := appdb.NewRedisUserRepository(client, cfg.RedisKeyPrefix)
		return appdb.NewChainUserRepository(memory, repo), func() { _ = client.Close() }, nil
	default:
		if memory.Len() == 0 {
			logger.Warn("memory credential store is empty; every login will fail")
		}
		return memory, func() {}, nil
	}
}

func memoryUsers(cfg Config, logger *slog.Logger) ([]domain.User, error) {
	var users []domain.User
	if cfg.UsersFile != "" {
		fromFile, err := appdb.LoadUsersFile(cfg.UsersFile)
		if err != nil {
			return nil, err
		}
		users = append(users, fromFile...)
	}

	su := cfg.SecurityUser
	if su.Name == "" {
		return users, nil
	}

	hash := su.PasswordHash
	if hash == "" {
		raw, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash SECURITY_USER_PASSWORD: %w", err)
		}
		hash = string(raw)
		logger.Warn("SECURITY_USER_PASSWORD is set in plain text; prefer SECURITY_USER_PASSWORD_HASH")
	}

	var roles []string
	for r := range strings.SplitSeq(su.Roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}

	for _, u := range users {
		if u.Username == su.Name {
			return nil, fmt.Errorf("%w: SECURITY_USER_NAME %q is also defined in %s", domain.ErrInvalidInput, su.Name, cfg.UsersFile)
		}
	}
	return append(users, domain.User{Username: su.Name, PasswordHash: hash, Roles: roles}), nil
}

func newTokenService(ctx context.Context, cfg Config, logger *slog.Logger) (*auth.TokenService, error) {
	tc := auth.TokenConfig{
		Algorithm: cfg.JWT.Algorithm,
		Secret:    []byte(cfg.JWT.Secret),
		Issuer:    cfg.JWT.Issuer,
		TTL:       cfg.JWT.TTL,
		Leeway:    cfg.JWT.Leeway,
	}

	if cfg.JWT.Algorithm == auth.AlgorithmEdDSA {
		var err error
		if cfg.JWT.SigningKeySeed != "" {
			tc.SigningKey, err = auth.SigningKeyFromSeed(cfg.JWT.SigningKeySeed)
		} else {
			logger.Warn("JWT_SIGNING_KEY_SEED not set; generated a signing key that lasts until restart")
			tc.SigningKey, err = auth.GenerateSigningKey()
		}
		if err != nil {
			return nil, err
		}
	}

	return auth.NewTokenService(ctx, tc)
}

package auth

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AlgorithmHS256 = "HS256"
	AlgorithmEdDSA = "EdDSA"

	minSecretLength = 32
)

type TokenConfig struct {
	Algorithm  string
	Secret     []byte
	SigningKey ed25519.PrivateKey
	Issuer     string
	TTL        time.Duration
	Leeway     time.Duration
	// Now replaces time.Now for both issuing and validating.
	Now func() time.Time
}

type tokenClaims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenService mints and validates signed bearer tokens. It holds no mutable
// state, so one instance serves every request concurrently.
type TokenService struct {
	method  jwt.SigningMethod
	signKey any
	kid     string
	keys    keyfunc.Keyfunc
	verify  jwt.Keyfunc
	issuer  string
	ttl     time.Duration
	leeway  time.Duration
	now     func() time.Time
}

func NewTokenService(ctx context.Context, cfg TokenConfig) (*TokenService, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	s := &TokenService{
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		leeway: cfg.Leeway,
		now:    cfg.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}

	switch cfg.Algorithm {
	case "", AlgorithmHS256:
		if len(cfg.Secret) < minSecretLength {
			return nil, fmt.Errorf("hmac secret must be at least %d bytes", minSecretLength)
		}
		secret := slices.Clone(cfg.Secret)
		s.method = jwt.SigningMethodHS256
		s.signKey = secret
		s.verify = func(*jwt.Token) (any, error) {
			return secret, nil
		}
	case AlgorithmEdDSA:
		if len(cfg.SigningKey) != ed25519.PrivateKeySize {
			return nil, errors.New("ed25519 signing key is required")
		}
		kf, kid, err := newKeySet(ctx, cfg.SigningKey.Public().(ed25519.PublicKey))
		if err != nil {
			return nil, err
		}
		s.method = jwt.SigningMethodEdDSA
		s.signKey = cfg.SigningKey
		s.kid = kid
		s.keys = kf
		s.verify = kf.Keyfunc
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}

	return s, nil
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) Algorithm() string {
	return s.method.Alg()
}

func (s *TokenService) Issue(p Principal) (string, error) {
	if p.username == "" {
		return "", errors.New("cannot issue a token for an anonymous principal")
	}

	now := s.now()
	claims := tokenClaims{
		Roles: p.Roles(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   p.username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(s.method, claims)
	if s.kid != "" {
		token.Header["kid"] = s.kid
	}

	signed, err := token.SignedString(s.signKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks the token's signature before any of its claims, so a token
// that was altered in any way, including one whose segments no longer split
// in three, reports ErrSignatureInvalid. ErrTokenMalformed is kept for empty
// input and for authentic tokens whose claims are rejected.
func (s *TokenService) Validate(token string) (Principal, error) {
	if strings.TrimSpace(token) == "" {
		return Principal{}, ErrTokenMalformed
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(s.leeway),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims tokenClaims
	if _, err := jwt.NewParser(opts...).ParseWithClaims(token, &claims, s.verify); err != nil {
		return Principal{}, classifyParseError(err)
	}
	if claims.Subject == "" {
		return Principal{}, fmt.Errorf("%w: missing subject", ErrTokenMalformed)
	}

	return NewPrincipal(claims.Subject, claims.Roles...), nil
}

func (s *TokenService) Authenticate(_ context.Context, bearerToken string) (Principal, error) {
	if strings.TrimSpace(bearerToken) == "" {
		return Principal{}, ErrTokenMissing
	}
	return s.Validate(bearerToken)
}

// JWKS returns the public key set used to verify tokens.
func (s *TokenService) JWKS(ctx context.Context) (json.RawMessage, error) {
	if s.keys == nil {
		return nil, ErrNoPublicKeys
	}

	raw, err := s.keys.Storage().JSONPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("marshal jwks: %w", err)
	}
	return raw, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	default:
		// A wrong segment count, undecodable segments, a foreign alg, an unknown
		// kid and a bad MAC all mean the token was not produced by this service.
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
}

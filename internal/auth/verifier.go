package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Flarenzy/stateless-auth/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier checks username/password pairs against a CredentialStore.
// Unknown users and wrong passwords cost one bcrypt comparison each and fail
// with the same error, so callers cannot tell them apart.
type CredentialVerifier struct {
	store     CredentialStore
	dummyHash []byte
}

func NewCredentialVerifier(store CredentialStore) (*CredentialVerifier, error) {
	if store == nil {
		return nil, errors.New("credential store is required")
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("unknown-user-placeholder"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &CredentialVerifier{store: store, dummyHash: dummy}, nil
}

func (v *CredentialVerifier) Check(ctx context.Context, req CredentialRequest) (Principal, error) {
	if err := ctx.Err(); err != nil {
		return Principal{}, err
	}

	if req.Username == "" || req.Password == "" {
		v.compareDummy(req.Password)
		return Principal{}, ErrInvalidCredentials
	}

	user, err := v.store.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			v.compareDummy(req.Password)
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, fmt.Errorf("lookup credentials: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return Principal{}, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	switch {
	case err == nil:
		return NewPrincipal(user.Username, user.Roles...), nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return Principal{}, ErrInvalidCredentials
	default:
		return Principal{}, fmt.Errorf("compare password hash for %q: %w", user.Username, err)
	}
}

func (v *CredentialVerifier) compareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(v.dummyHash, []byte(password))
}

package auth

import (
	"context"

	"github.com/Flarenzy/stateless-auth/internal/domain"
)

type Authenticator interface {
	Authenticate(ctx context.Context, bearerToken string) (Principal, error)
}

// CredentialStore looks up stored credential records. It returns
// domain.ErrNotFound for unknown usernames.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (domain.User, error)
}

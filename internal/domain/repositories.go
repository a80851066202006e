package domain

import "context"

// UserRepository is the source of truth for credentials. Implementations return
// ErrNotFound when a username is unknown.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (User, error)
	List(ctx context.Context) ([]User, error)
}

package domain

import "context"

type UserService interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, username string) (User, error)
}

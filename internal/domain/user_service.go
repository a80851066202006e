package domain

import (
	"context"
	"fmt"
	"strings"
)

type userService struct {
	users UserRepository
}

func NewUserService(users UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, withoutSecret(u))
	}
	return out, nil
}

func (s *userService) GetUser(ctx context.Context, username string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, fmt.Errorf("%w: empty username", ErrInvalidInput)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return User{}, err
	}
	return withoutSecret(user), nil
}

// withoutSecret strips the password hash so it never leaves the service layer.
func withoutSecret(u User) User {
	u.PasswordHash = ""
	return u
}

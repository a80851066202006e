package domain

import (
	"context"
	"errors"
	"log/slog"
)

type loggingUserService struct {
	logger *slog.Logger
	next   UserService
}

func NewLoggingUserService(logger *slog.Logger, next UserService) UserService {
	if logger == nil || next == nil {
		return next
	}

	return &loggingUserService{
		logger: logger,
		next:   next,
	}
}

func (s *loggingUserService) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.next.ListUsers(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "list users failed", "err", err.Error())
		return nil, err
	}

	s.logger.DebugContext(ctx, "users listed", "count", len(users))
	return users, nil
}

func (s *loggingUserService) GetUser(ctx context.Context, username string) (User, error) {
	user, err := s.next.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
			s.logger.InfoContext(ctx, "get user rejected", "username", username, "err", err.Error())
		} else {
			s.logger.ErrorContext(ctx, "get user failed", "username", username, "err", err.Error())
		}
	}
	return user, err
}

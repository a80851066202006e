package db

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/Flarenzy/stateless-auth/internal/domain"
)

// Store is a user repository that can report its own health.
type Store interface {
	domain.UserRepository
	Ping(ctx context.Context) error
}

// ChainUserRepository consults each store in order. A username found in an
// earlier store shadows the same name further down the chain.
type ChainUserRepository struct {
	stores []Store
}

func NewChainUserRepository(stores ...Store) *ChainUserRepository {
	return &ChainUserRepository{stores: stores}
}

func (c *ChainUserRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	for _, s := range c.stores {
		u, err := s.FindByUsername(ctx, username)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, err
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (c *ChainUserRepository) List(ctx context.Context) ([]domain.User, error) {
	seen := make(map[string]struct{})
	var out []domain.User
	for _, s := range c.stores {
		users, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			if _, ok := seen[u.Username]; ok {
				continue
			}
			seen[u.Username] = struct{}{}
			out = append(out, u)
		}
	}

	slices.SortFunc(out, func(a, b domain.User) int {
		return strings.Compare(a.Username, b.Username)
	})
	return out, nil
}

func (c *ChainUserRepository) Ping(ctx context.Context) error {
	var errs []error
	for _, s := range c.stores {
		if err := s.Ping(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package db

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/Flarenzy/stateless-auth/internal/domain"
	"gopkg.in/yaml.v3"
)

// MemoryUserRepository is a fixed set of users held in process memory.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewMemoryUserRepository(users ...domain.User) *MemoryUserRepository {
	r := &MemoryUserRepository{users: make(map[string]domain.User, len(users))}
	for _, u := range users {
		r.users[u.Username] = cloneUser(u)
	}
	return r
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) List(context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	slices.SortFunc(out, func(a, b domain.User) int {
		return strings.Compare(a.Username, b.Username)
	})
	return out, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, u domain.User) error {
	if u.Username == "" || u.PasswordHash == "" {
		return fmt.Errorf("%w: username and password hash are required", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.Username]; ok {
		return domain.ErrConflict
	}
	r.users[u.Username] = cloneUser(u)
	return nil
}

func (r *MemoryUserRepository) Ping(context.Context) error {
	return nil
}

func (r *MemoryUserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func cloneUser(u domain.User) domain.User {
	u.Roles = slices.Clone(u.Roles)
	return u
}

type usersFile struct {
	Users []struct {
		Username     string   `yaml:"username"`
		PasswordHash string   `yaml:"password_hash"`
		Roles        []string `yaml:"roles"`
	} `yaml:"users"`
}

// LoadUsersFile reads a YAML document of the form
//
//	users:
//	  - username: alice
//	    password_hash: $2a$10$...
//	    roles: [USER, ADMIN]
func LoadUsersFile(path string) ([]domain.User, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}

	var doc usersFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse users file %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(doc.Users))
	out := make([]domain.User, 0, len(doc.Users))
	for i, entry := range doc.Users {
		if entry.Username == "" || entry.PasswordHash == "" {
			return nil, fmt.Errorf("%w: users[%d] needs username and password_hash", domain.ErrInvalidInput, i)
		}
		if _, dup := seen[entry.Username]; dup {
			return nil, fmt.Errorf("%w: duplicate user %q", domain.ErrInvalidInput, entry.Username)
		}
		seen[entry.Username] = struct{}{}

		out = append(out, domain.User{
			Username:     entry.Username,
			PasswordHash: entry.PasswordHash,
			Roles:        entry.Roles,
		})
	}

	return out, nil
}

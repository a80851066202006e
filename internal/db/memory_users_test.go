package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/Flarenzy/stateless-auth/internal/domain"
)

func TestMemoryRepositoryIsolatesCallers(t *testing.T) {
	roles := []string{"USER"}
	repo := NewMemoryUserRepository(domain.User{Username: "alice", PasswordHash: "h", Roles: roles})
	roles[0] = "ADMIN"

	u, err := repo.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("find alice: %v", err)
	}
	if !slices.Equal(u.Roles, []string{"USER"}) {
		t.Fatalf("expected stored roles to be copied, got %v", u.Roles)
	}

	u.Roles[0] = "ROOT"
	again, _ := repo.FindByUsername(context.Background(), "alice")
	if again.Roles[0] != "USER" {
		t.Fatalf("expected returned roles to be copied, got %v", again.Roles)
	}
}

func TestMemoryRepositoryCreate(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, domain.User{Username: "bob", PasswordHash: "h"}); err != nil {
		t.Fatalf("create bob: %v", err)
	}
	if err := repo.Create(ctx, domain.User{Username: "bob", PasswordHash: "h2"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := repo.FindByUsername(ctx, "carol"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	users, err := repo.List(ctx)
	if err != nil || len(users) != 1 {
		t.Fatalf("expected one user, got %v (%v)", users, err)
	}
}

func TestLoadUsersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	doc := `users:
  - username: alice
    password_hash: "$2a$10$abc"
    roles: [USER, ADMIN]
  - username: bob
    password_hash: "$2a$10$def"
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write users file: %v", err)
	}

	users, err := LoadUsersFile(path)
	if err != nil {
		t.Fatalf("load users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Username != "alice" || !slices.Equal(users[0].Roles, []string{"USER", "ADMIN"}) {
		t.Fatalf("unexpected first user: %+v", users[0])
	}
	if users[1].Roles != nil {
		t.Fatalf("expected bob to have no roles, got %v", users[1].Roles)
	}
}

func TestLoadUsersFileRejectsBadEntries(t *testing.T) {
	tests := map[string]string{
		"missing hash": "users:\n  - username: alice\n",
		"duplicate":    "users:\n  - {username: a, password_hash: x}\n  - {username: a, password_hash: y}\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "users.yaml")
			if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
				t.Fatalf("write users file: %v", err)
			}
			if _, err := LoadUsersFile(path); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	if _, err := LoadUsersFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing file to fail")
	}
}

package auth

import (
	"context"
	"slices"
	"testing"
)

func TestNewPrincipalNormalisesRoles(t *testing.T) {
	p := NewPrincipal("alice", "USER", "ADMIN", "USER", "")

	if !slices.Equal(p.Roles(), []string{"ADMIN", "USER"}) {
		t.Fatalf("unexpected roles: %v", p.Roles())
	}
	if !p.HasRole("ADMIN") || p.HasRole("ROOT") {
		t.Fatalf("unexpected role membership for %v", p.Roles())
	}
}

func TestPrincipalRolesReturnsCopy(t *testing.T) {
	p := NewPrincipal("alice", "USER")

	roles := p.Roles()
	roles[0] = "ADMIN"

	if p.HasRole("ADMIN") {
		t.Fatal("expected principal to be unaffected by caller mutation")
	}
}

func TestPrincipalFromContext(t *testing.T) {
	if _, ok := PrincipalFromContext(context.Background()); ok {
		t.Fatal("expected no principal on empty context")
	}
	if _, ok := PrincipalFromContext(WithPrincipal(context.Background(), Principal{})); ok {
		t.Fatal("expected anonymous principal to be ignored")
	}

	ctx := WithPrincipal(context.Background(), NewPrincipal("alice", "USER"))
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		t.Fatal("expected principal in context")
	}
	if p.Username() != "alice" {
		t.Fatalf("unexpected username: %q", p.Username())
	}
}

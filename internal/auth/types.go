package auth

import "slices"

// Principal is an authenticated identity and its role set. The zero value is an
// anonymous principal with no roles. A Principal never changes after NewPrincipal
// returns; Roles hands out copies.
type Principal struct {
	username string
	roles    []string
}

func NewPrincipal(username string, roles ...string) Principal {
	var set []string
	for _, r := range roles {
		if r != "" {
			set = append(set, r)
		}
	}
	slices.Sort(set)
	set = slices.Compact(set)

	return Principal{username: username, roles: set}
}

func (p Principal) Username() string {
	return p.username
}

func (p Principal) Roles() []string {
	return slices.Clone(p.roles)
}

func (p Principal) HasRole(role string) bool {
	_, found := slices.BinarySearch(p.roles, role)
	return found
}

func (p Principal) Equal(other Principal) bool {
	return p.username == other.username && slices.Equal(p.roles, other.roles)
}

// CredentialRequest is a submitted username/password pair. It lives only for the
// duration of one login attempt.
type CredentialRequest struct {
	Username string
	Password string
}

package http

import "github.com/Flarenzy/stateless-auth/internal/domain"

// Result is the envelope every JSON response is wrapped in.
type Result struct {
	Code    int    `json:"code" example:"200"`
	Data    any    `json:"data"`
	Message string `json:"message" example:"ok"`
}

// LoginRequest is the JSON payload accepted by the login endpoint.
type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"s3cret"`
}

// TokenResponse is returned in Result.Data after a successful login.
type TokenResponse struct {
	Token     string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType string `json:"token_type" example:"Bearer"`
	ExpiresIn int64  `json:"expires_in" example:"3600"`
}

// PrincipalResponse describes the caller behind a bearer token.
type PrincipalResponse struct {
	Username string   `json:"username" example:"alice"`
	Roles    []string `json:"roles" example:"ADMIN,USER"`
}

// UserResponse is a stored user without its password hash.
type UserResponse struct {
	Username string   `json:"username" example:"bob"`
	Roles    []string `json:"roles" example:"USER"`
}

func userToResponse(u domain.User) UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return UserResponse{Username: u.Username, Roles: roles}
}

func usersToResponse(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userToResponse(u))
	}
	return out
}

package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenMissing       = errors.New("token missing")
	ErrTokenMalformed     = errors.New("token malformed")
	ErrTokenExpired       = errors.New("token expired")
	ErrSignatureInvalid   = errors.New("token signature invalid")
	ErrForbidden          = errors.New("forbidden")
	ErrNoPublicKeys       = errors.New("no public keys for symmetric signing")
)

// IsTokenError reports whether err is one of the bearer token failures that
// clients only ever see as a plain 401.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenMissing) ||
		errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrSignatureInvalid)
}

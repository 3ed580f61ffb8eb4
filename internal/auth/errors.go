package auth

import "errors"

// Login and registration failures. ErrInvalidCredentials deliberately covers
// both an unknown username and a wrong password so callers cannot enumerate
// accounts.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already in use")
)

// Token verification failures. All three collapse to a single
// unauthenticated outcome at the HTTP boundary.
var (
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenExpired          = errors.New("token is expired")
)

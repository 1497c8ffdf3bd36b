package users

import "errors"

var (
	// ErrNotFound indicates the requested user doesn't exist.
	ErrNotFound = errors.New("user not found")

	// ErrUserExists indicates a registration with an already-taken e-mail
	// address or username.
	ErrUserExists = errors.New("user already exists")

	// ErrCredentials indicates a failed login.
	ErrCredentials = errors.New("invalid credentials")

	// ErrEmailNotConfirmed indicates a login before the e-mail address was
	// confirmed.
	ErrEmailNotConfirmed = errors.New("email address not confirmed")

	// ErrTokenInvalid indicates an unparseable, unknown or expired token.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrUnauthorized indicates a caller without the required role.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates a caller acting on somebody else's account.
	ErrForbidden = errors.New("forbidden")

	// ErrPassword indicates a password that doesn't meet the minimal
	// requirements.
	ErrPassword = errors.New("invalid password")
)

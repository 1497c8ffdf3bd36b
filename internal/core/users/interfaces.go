package users

import "context"

// Gateway defines the data access interface for user accounts.
type Gateway interface {
	// CreateUser inserts a new user. Fails on duplicate e-mail or
	// username.
	CreateUser(ctx context.Context, user *User) error

	// UpdateUser overwrites an existing user.
	UpdateUser(ctx context.Context, user *User) error

	// GetUserByEmail returns the user with the given e-mail address,
	// matched case-insensitively. Returns ErrNotFound when missing.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// TryGetUserByEmail probes for a user, returning nil without error
	// when missing.
	TryGetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByUsername returns the user with the given username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// AllUsers returns every user.
	AllUsers(ctx context.Context) ([]User, error)

	// DeleteUserByEmail removes a user account.
	DeleteUserByEmail(ctx context.Context, email string) error
}

// TokenRepo defines the data access interface for user tokens.
type TokenRepo interface {
	// ReplaceUserToken stores the token, replacing any existing token of
	// the same user.
	ReplaceUserToken(ctx context.Context, token UserToken) error

	// ConsumeUserToken deletes and returns the token matching the given
	// e-mail and nonce. Returns ErrTokenInvalid when there is no match.
	ConsumeUserToken(ctx context.Context, emailNonce EmailNonce) (*UserToken, error)

	// DeleteExpiredUserTokens removes tokens that expired before the given
	// time and returns the number removed.
	DeleteExpiredUserTokens(ctx context.Context, expiredBefore int64) (int, error)
}

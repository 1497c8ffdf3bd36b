package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"Placemap/internal/core/validate"
)

// tokenTTL bounds how long e-mail confirmation and password-reset tokens
// stay valid.
const tokenTTL = 24 * time.Hour

// minPasswordLength is the minimal accepted password length.
const minPasswordLength = 6

// Service defines the business logic for accounts and authentication.
type Service interface {
	// Register creates a new unconfirmed Guest account and a confirmation
	// token for it.
	Register(ctx context.Context, email, password string) (*User, *UserToken, error)

	// Login verifies credentials and returns the user. Fails with
	// ErrCredentials on unknown e-mail or wrong password and with
	// ErrEmailNotConfirmed before confirmation.
	Login(ctx context.Context, email, password string) (*User, error)

	// ConfirmEmail consumes a confirmation token, marks the e-mail as
	// confirmed and promotes Guest to User.
	ConfirmEmail(ctx context.Context, token string) (*User, error)

	// RequestPasswordReset stores a fresh reset token for the account.
	RequestPasswordReset(ctx context.Context, email string) (*UserToken, error)

	// ResetPassword consumes a reset token and replaces the password.
	// Confirms the e-mail as a side effect: the token proves ownership.
	ResetPassword(ctx context.Context, token, newPassword string) error

	// CreateUserFromEmail returns the user with the given e-mail, creating
	// a shadow account when none exists.
	CreateUserFromEmail(ctx context.Context, email string) (*User, error)

	// TryGetUserByEmail probes for an account, returning nil without error
	// when none exists.
	TryGetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUser returns the requested account. Callers may only read their
	// own account.
	GetUser(ctx context.Context, loginEmail, requestedEmail string) (*User, error)

	// DeleteUser removes the account. Callers may only delete their own.
	DeleteUser(ctx context.Context, loginEmail, email string) error

	// AuthorizeUserByEmail returns the user when it holds at least the
	// required role, ErrUnauthorized otherwise.
	AuthorizeUserByEmail(ctx context.Context, email string, minRole Role) (*User, error)

	// ChangeUserRole lets an admin set another user's role.
	ChangeUserRole(ctx context.Context, actorEmail, targetEmail string, role Role) error
}

type userService struct {
	gateway Gateway
	tokens  TokenRepo
}

// Compile-time interface compliance check.
var _ Service = (*userService)(nil)

// NewUserService creates the account business logic.
func NewUserService(gateway Gateway, tokens TokenRepo) Service {
	return &userService{gateway: gateway, tokens: tokens}
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength || strings.ContainsAny(password, " \t\n") {
		return ErrPassword
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *userService) Register(ctx context.Context, email, password string) (*User, *UserToken, error) {
	email = strings.TrimSpace(email)
	if err := validate.Email(email); err != nil {
		return nil, nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, nil, err
	}
	if existing, err := s.gateway.TryGetUserByEmail(ctx, email); err != nil {
		return nil, nil, err
	} else if existing != nil {
		return nil, nil, ErrUserExists
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, nil, err
	}
	user := &User{
		ID:           newID(),
		Email:        email,
		Username:     UsernameFromEmail(email),
		PasswordHash: hash,
		Role:         RoleGuest,
	}
	if err := s.gateway.CreateUser(ctx, user); err != nil {
		return nil, nil, err
	}
	token, err := s.issueToken(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

func (s *userService) issueToken(ctx context.Context, email string) (*UserToken, error) {
	token := UserToken{
		EmailNonce: EmailNonce{Email: email, Nonce: NewNonce()},
		ExpiresAt:  time.Now().UTC().Add(tokenTTL),
	}
	if err := s.tokens.ReplaceUserToken(ctx, token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*User, error) {
	user, err := s.gateway.TryGetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrCredentials
	}
	// bcrypt compares in constant time.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrCredentials
	}
	if !user.EmailConfirmed {
		return nil, ErrEmailNotConfirmed
	}
	return user, nil
}

func (s *userService) consumeToken(ctx context.Context, encoded string) (*UserToken, error) {
	emailNonce, err := DecodeEmailNonce(encoded)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	token, err := s.tokens.ConsumeUserToken(ctx, emailNonce)
	if err != nil {
		return nil, err
	}
	if token.IsExpired(time.Now().UTC()) {
		return nil, ErrTokenInvalid
	}
	return token, nil
}

func (s *userService) ConfirmEmail(ctx context.Context, encoded string) (*User, error) {
	token, err := s.consumeToken(ctx, encoded)
	if err != nil {
		return nil, err
	}
	user, err := s.gateway.GetUserByEmail(ctx, token.Email)
	if err != nil {
		return nil, err
	}
	if !user.EmailConfirmed {
		user.EmailConfirmed = true
		if user.Role == RoleGuest {
			user.Role = RoleUser
		}
		if err := s.gateway.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *userService) RequestPasswordReset(ctx context.Context, email string) (*UserToken, error) {
	if _, err := s.gateway.GetUserByEmail(ctx, email); err != nil {
		return nil, err
	}
	return s.issueToken(ctx, email)
}

func (s *userService) ResetPassword(ctx context.Context, encoded, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	token, err := s.consumeToken(ctx, encoded)
	if err != nil {
		return err
	}
	user, err := s.gateway.GetUserByEmail(ctx, token.Email)
	if err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if !user.EmailConfirmed {
		user.EmailConfirmed = true
		if user.Role == RoleGuest {
			user.Role = RoleUser
		}
	}
	return s.gateway.UpdateUser(ctx, user)
}

func (s *userService) CreateUserFromEmail(ctx context.Context, email string) (*User, error) {
	if err := validate.Email(email); err != nil {
		return nil, err
	}
	if existing, err := s.gateway.TryGetUserByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}
	// Shadow account with an unguessable password; the owner can claim it
	// later via password reset.
	hash, err := hashPassword(string(NewNonce()))
	if err != nil {
		return nil, err
	}
	user := &User{
		ID:           newID(),
		Email:        email,
		Username:     UsernameFromEmail(email),
		PasswordHash: hash,
		Role:         RoleGuest,
	}
	if err := s.gateway.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) TryGetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.gateway.TryGetUserByEmail(ctx, email)
}

func (s *userService) GetUser(ctx context.Context, loginEmail, requestedEmail string) (*User, error) {
	if loginEmail != requestedEmail {
		return nil, ErrForbidden
	}
	return s.gateway.GetUserByEmail(ctx, requestedEmail)
}

func (s *userService) DeleteUser(ctx context.Context, loginEmail, email string) error {
	if loginEmail != email {
		return ErrForbidden
	}
	return s.gateway.DeleteUserByEmail(ctx, email)
}

func (s *userService) AuthorizeUserByEmail(ctx context.Context, email string, minRole Role) (*User, error) {
	user, err := s.gateway.TryGetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Role < minRole {
		return nil, ErrUnauthorized
	}
	return user, nil
}

func (s *userService) ChangeUserRole(ctx context.Context, actorEmail, targetEmail string, role Role) error {
	actor, err := s.AuthorizeUserByEmail(ctx, actorEmail, RoleAdmin)
	if err != nil {
		return err
	}
	if actor.Email == targetEmail {
		return ErrForbidden
	}
	target, err := s.gateway.GetUserByEmail(ctx, targetEmail)
	if err != nil {
		return err
	}
	target.Role = role
	return s.gateway.UpdateUser(ctx, target)
}

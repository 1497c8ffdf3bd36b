package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"Placemap/internal/core/validate"
)

type mockUserGateway struct {
	mock.Mock
}

func (m *mockUserGateway) CreateUser(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserGateway) UpdateUser(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserGateway) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockUserGateway) TryGetUserByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockUserGateway) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockUserGateway) AllUsers(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]User), args.Error(1)
}

func (m *mockUserGateway) DeleteUserByEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) ReplaceUserToken(ctx context.Context, token UserToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenRepo) ConsumeUserToken(ctx context.Context, emailNonce EmailNonce) (*UserToken, error) {
	args := m.Called(ctx, emailNonce)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UserToken), args.Error(1)
}

func (m *mockTokenRepo) DeleteExpiredUserTokens(ctx context.Context, expiredBefore int64) (int, error) {
	args := m.Called(ctx, expiredBefore)
	return args.Int(0), args.Error(1)
}

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "fooobartld", UsernameFromEmail("fooo@bar.tld"))
	assert.Equal(t, "maxmustermannexamplecom", UsernameFromEmail("Max.Mustermann@example.com"))
}

func TestEmailNonceRoundtrip(t *testing.T) {
	n := EmailNonce{Email: "a@foo.bar", Nonce: NewNonce()}
	decoded, err := DecodeEmailNonce(n.EncodeToString())
	require.NoError(t, err)
	assert.Equal(t, n, decoded)
}

func TestDecodeEmailNonce_Garbage(t *testing.T) {
	for _, s := range []string{"", ".", "abc", "abc.", ".abc", "!!!.nonce"} {
		_, err := DecodeEmailNonce(s)
		assert.ErrorIs(t, err, ErrTokenInvalid, "input %q", s)
	}
}

func TestRegister(t *testing.T) {
	gw := new(mockUserGateway)
	tokens := new(mockTokenRepo)
	svc := NewUserService(gw, tokens)

	gw.On("TryGetUserByEmail", mock.Anything, "a@foo.bar").Return(nil, nil)
	gw.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *User) bool {
		return u.Email == "a@foo.bar" && u.Username == "afoobar" &&
			u.Role == RoleGuest && !u.EmailConfirmed
	})).Return(nil)
	tokens.On("ReplaceUserToken", mock.Anything, mock.Anything).Return(nil)

	user, token, err := svc.Register(context.Background(), "a@foo.bar", "secret99")
	require.NoError(t, err)
	assert.NotEqual(t, "secret99", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret99")))
	assert.Equal(t, "a@foo.bar", token.Email)
	gw.AssertExpectations(t)
}

func TestRegister_ExistingEmail(t *testing.T) {
	gw := new(mockUserGateway)
	svc := NewUserService(gw, new(mockTokenRepo))
	gw.On("TryGetUserByEmail", mock.Anything, "a@foo.bar").Return(&User{Email: "a@foo.bar"}, nil)

	_, _, err := svc.Register(context.Background(), "a@foo.bar", "secret99")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegister_RejectsBadInput(t *testing.T) {
	svc := NewUserService(new(mockUserGateway), new(mockTokenRepo))

	_, _, err := svc.Register(context.Background(), "not-an-email", "secret99")
	assert.ErrorIs(t, err, validate.ErrEmail)

	_, _, err = svc.Register(context.Background(), "a@foo.bar", "short")
	assert.ErrorIs(t, err, ErrPassword)
}

func confirmedUser(t *testing.T, password string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &User{
		ID:             "u1",
		Email:          "a@foo.bar",
		Username:       "afoobar",
		PasswordHash:   string(hash),
		EmailConfirmed: true,
		Role:           RoleUser,
	}
}

func TestLogin(t *testing.T) {
	gw := new(mockUserGateway)
	svc := NewUserService(gw, new(mockTokenRepo))
	gw.On("TryGetUserByEmail", mock.Anything, "a@foo.bar").Return(confirmedUser(t, "secret99"), nil)

	user, err := svc.Login(context.Background(), "a@foo.bar", "secret99")
	require.NoError(t, err)
	assert.Equal(t, "afoobar", user.Username)

	_, err = svc.Login(context.Background(), "a@foo.bar", "wrong")
	assert.ErrorIs(t, err, ErrCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	gw := new(mockUserGateway)
	svc := NewUserService(gw, new(mockTokenRepo))
	gw.On("TryGetUserByEmail", mock.Anything, "nobody@foo.bar").Return(nil, nil)

	_, err := svc.Login(context.Background(), "nobody@foo.bar", "whatever1")
	assert.ErrorIs(t, err, ErrCredentials)
}

func TestLogin_UnconfirmedEmail(t *testing.T) {
	gw := new(mockUserGateway)
	svc := NewUserService(gw, new(mockTokenRepo))
	u := confirmedUser(t, "secret99")
	u.EmailConfirmed = false
	gw.On("TryGetUserByEmail", mock.Anything, "a@foo.bar").Return(u, nil)

	_, err := svc.Login(context.Background(), "a@foo.bar", "secret99")
	assert.ErrorIs(t, err, ErrEmailNotConfirmed)
}

func TestConfirmEmail_PromotesGuest(t *testing.T) {
	gw := new(mockUserGateway)
	tokens := new(mockTokenRepo)
	svc := NewUserService(gw, tokens)

	emailNonce := EmailNonce{Email: "a@foo.bar", Nonce: NewNonce()}
	stored := &UserToken{EmailNonce: emailNonce, ExpiresAt: time.Now().Add(time.Hour)}
	tokens.On("ConsumeUserToken", mock.Anything, emailNonce).Return(stored, nil)

	guest := &User{ID: "u1", Email: "a@foo.bar", Role: RoleGuest}
	gw.On("GetUserByEmail", mock.Anything, "a@foo.bar").Return(guest, nil)
	gw.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u *User) bool {
		return u.EmailConfirmed && u.Role == RoleUser
	})).Return(nil)

	user, err := svc.ConfirmEmail(context.Background(), emailNonce.EncodeToString())
	require.NoError(t, err)
	assert.True(t, user.EmailConfirmed)
	assert.Equal(t, RoleUser, user.Role)
	gw.AssertExpectations(t)
}

func TestConfirmEmail_ExpiredToken(t *testing.T) {
	tokens := new(mockTokenRepo)
	svc := NewUserService(new(mockUserGateway), tokens)

	emailNonce := EmailNonce{Email: "a@foo.bar", Nonce: NewNonce()}
	stale := &UserToken{EmailNonce: emailNonce, ExpiresAt: time.Now().Add(-time.Minute)}
	tokens.On("ConsumeUserToken", mock.Anything, emailNonce).Return(stale, nil)

	_, err := svc.ConfirmEmail(context.Background(), emailNonce.EncodeToString())
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestResetPassword(t *testing.T) {
	gw := new(mockUserGateway)
	tokens := new(mockTokenRepo)
	svc := NewUserService(gw, tokens)

	emailNonce := EmailNonce{Email: "a@foo.bar", Nonce: NewNonce()}
	stored := &UserToken{EmailNonce: emailNonce, ExpiresAt: time.Now().Add(time.Hour)}
	tokens.On("ConsumeUserToken", mock.Anything, emailNonce).Return(stored, nil)
	gw.On("GetUserByEmail", mock.Anything, "a@foo.bar").Return(confirmedUser(t, "old-secret"), nil)
	gw.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u *User) bool {
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("new-secret")) == nil
	})).Return(nil)

	err := svc.ResetPassword(context.Background(), emailNonce.EncodeToString(), "new-secret")
	require.NoError(t, err)
	gw.AssertExpectations(t)
}

func TestCreateUserFromEmail(t *testing.T) {
	gw := new(mockUserGateway)
	svc := NewUserService(gw, new(mockTokenRepo))

	gw.On("TryGetUserByEmail", mock.Anything, "fooo@bar.tld").Return(nil, nil).Once()
	gw.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *User) bool {
		return u.Email == "fooo@bar.tld" && u.Username == "fooobartld"
	})).Return(nil)

	user, err := svc.CreateUserFromEmail(context.Background(), "fooo@bar.tld")
	require.NoError(t, err)
	assert.Equal(t, "fooobartld", user.Username)

	// Existing users are returned as-is.
	gw.On("TryGetUserByEmail", mock.Anything, "fooo@bar.tld").Return(user, nil).Once()
	again, err := svc.CreateUserFromEmail(context.Background(), "fooo@bar.tld")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	gw.AssertNumberOfCalls(t, "CreateUser", 1)
}

func TestGetUser_Forbidden(t *testing.T) {
	svc := NewUserService(new(mockUserGateway), new(mockTokenRepo))
	_, err := svc.GetUser(context.Background(), "me@foo.bar", "other@foo.bar")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorizeUserByEmail(t *testing.T) {
	gw := new(mockUserGateway)
	svc := NewUserService(gw, new(mockTokenRepo))

	scout := &User{Email: "s@foo.bar", Role: RoleScout, EmailConfirmed: true}
	gw.On("TryGetUserByEmail", mock.Anything, "s@foo.bar").Return(scout, nil)
	gw.On("TryGetUserByEmail", mock.Anything, "nobody@foo.bar").Return(nil, nil)

	user, err := svc.AuthorizeUserByEmail(context.Background(), "s@foo.bar", RoleScout)
	require.NoError(t, err)
	assert.Equal(t, RoleScout, user.Role)

	_, err = svc.AuthorizeUserByEmail(context.Background(), "s@foo.bar", RoleAdmin)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.AuthorizeUserByEmail(context.Background(), "nobody@foo.bar", RoleGuest)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

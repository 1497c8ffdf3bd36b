package users

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"
)

// Role orders user privileges. The numeric values are persisted and
// comparisons rely on their ordering.
type Role int

const (
	RoleGuest Role = 0
	RoleUser  Role = 1
	RoleScout Role = 2
	RoleAdmin Role = 3
)

func (r Role) String() string {
	switch r {
	case RoleGuest:
		return "guest"
	case RoleUser:
		return "user"
	case RoleScout:
		return "scout"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

// User is a registered account. E-mail addresses are unique
// case-insensitively; usernames are unique and generated from the e-mail
// when absent.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	PasswordHash   string `json:"-"`
	EmailConfirmed bool   `json:"emailConfirmed"`
	Role           Role   `json:"role"`
}

// UsernameFromEmail derives a username from an e-mail address by stripping
// all non-alphanumeric characters and lowercasing.
func UsernameFromEmail(email string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(email) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Nonce is a random single-use string paired with an e-mail address to form
// a token.
type Nonce string

// NewNonce returns a fresh random nonce.
func NewNonce() Nonce {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // the system random source is broken
	}
	return Nonce(hex.EncodeToString(buf))
}

// EmailNonce binds a nonce to an e-mail address. Its string encoding is what
// confirmation and password-reset links carry.
type EmailNonce struct {
	Email string `json:"email"`
	Nonce Nonce  `json:"nonce"`
}

// EncodeToString encodes the e-mail and nonce into a URL-safe token.
func (n EmailNonce) EncodeToString() string {
	email := base64.RawURLEncoding.EncodeToString([]byte(n.Email))
	return email + "." + string(n.Nonce)
}

// DecodeEmailNonce decodes a token produced by EncodeToString.
func DecodeEmailNonce(s string) (EmailNonce, error) {
	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return EmailNonce{}, ErrTokenInvalid
	}
	email, err := base64.RawURLEncoding.DecodeString(s[:i])
	if err != nil || len(email) == 0 {
		return EmailNonce{}, ErrTokenInvalid
	}
	return EmailNonce{Email: string(email), Nonce: Nonce(s[i+1:])}, nil
}

// UserToken is a stored e-mail confirmation or password-reset token. Each
// user has at most one active token; inserting replaces any existing one.
type UserToken struct {
	EmailNonce
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsExpired reports whether the token has passed its expiry.
func (t *UserToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

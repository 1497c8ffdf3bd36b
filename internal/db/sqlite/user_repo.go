package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"Placemap/internal/core/users"
)

type sqliteUserRepo struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(db *sql.DB) users.Gateway {
	return &sqliteUserRepo{db: db}
}

func (r *sqliteUserRepo) CreateUser(ctx context.Context, user *users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, username, password_hash, email_confirmed, role)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Username, user.PasswordHash,
		user.EmailConfirmed, int(user.Role))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return users.ErrUserExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *sqliteUserRepo) UpdateUser(ctx context.Context, user *users.User) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET email = ?, username = ?, password_hash = ?, email_confirmed = ?, role = ?
		WHERE id = ?`,
		user.Email, user.Username, user.PasswordHash,
		user.EmailConfirmed, int(user.Role), user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *sqliteUserRepo) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	user, err := r.TryGetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, users.ErrNotFound
	}
	return user, nil
}

func (r *sqliteUserRepo) TryGetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	user, err := r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, email, username, password_hash, email_confirmed, role
		FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *sqliteUserRepo) GetUserByUsername(ctx context.Context, username string) (*users.User, error) {
	user, err := r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, email, username, password_hash, email_confirmed, role
		FROM users WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

func (r *sqliteUserRepo) AllUsers(ctx context.Context) ([]users.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, username, password_hash, email_confirmed, role
		FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer closeRows(rows)

	var result []users.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		result = append(result, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return result, nil
}

func (r *sqliteUserRepo) DeleteUserByEmail(ctx context.Context, email string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *sqliteUserRepo) scanUser(row rowScanner) (*users.User, error) {
	var user users.User
	var role int
	err := row.Scan(&user.ID, &user.Email, &user.Username,
		&user.PasswordHash, &user.EmailConfirmed, &role)
	if err != nil {
		return nil, err
	}
	user.Role = users.Role(role)
	return &user, nil
}

type sqliteUserTokenRepo struct {
	db *sql.DB
}

// NewUserTokenRepository creates a new SQLite user token repository.
func NewUserTokenRepository(db *sql.DB) users.TokenRepo {
	return &sqliteUserTokenRepo{db: db}
}

func (r *sqliteUserTokenRepo) ReplaceUserToken(ctx context.Context, token users.UserToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_tokens (email, nonce, expires_at) VALUES (?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET nonce = excluded.nonce, expires_at = excluded.expires_at`,
		token.Email, string(token.Nonce), token.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to replace user token: %w", err)
	}
	return nil
}

func (r *sqliteUserTokenRepo) ConsumeUserToken(ctx context.Context, emailNonce users.EmailNonce) (*users.UserToken, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("Failed to rollback transaction: %v", err)
		}
	}()

	var expiresAt int64
	err = tx.QueryRowContext(ctx,
		`SELECT expires_at FROM user_tokens WHERE email = ? AND nonce = ?`,
		emailNonce.Email, string(emailNonce.Nonce)).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, users.ErrTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user token: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM user_tokens WHERE email = ?`, emailNonce.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to consume user token: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit token consumption: %w", err)
	}

	return &users.UserToken{
		EmailNonce: emailNonce,
		ExpiresAt:  time.Unix(expiresAt, 0).UTC(),
	}, nil
}

func (r *sqliteUserTokenRepo) DeleteExpiredUserTokens(ctx context.Context, expiredBefore int64) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM user_tokens WHERE expires_at < ?`, expiredBefore)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check delete result: %w", err)
	}
	return int(affected), nil
}

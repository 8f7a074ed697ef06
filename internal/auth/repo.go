package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	TokenVersion int
	CreatedAt    time.Time
}

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash) VALUES (?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (r *Repo) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.TokenVersion, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}

const userColumns = `id, username, email, password_hash, token_version, created_at`

func (r *Repo) ByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = ?`, email))
}

func (r *Repo) ByUsername(ctx context.Context, username string) (*User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, strings.TrimSpace(username)))
}

func (r *Repo) ByID(ctx context.Context, id string) (*User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// TokenVersion returns the user's current revocation counter. A missing
// user is an error so tokens for deleted accounts stop verifying.
func (r *Repo) TokenVersion(ctx context.Context, id string) (int, error) {
	var version int
	err := r.db.QueryRowContext(ctx,
		`SELECT token_version FROM users WHERE id = ?`, id).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("reading token version: user not found")
	}
	if err != nil {
		return 0, fmt.Errorf("reading token version: %w", err)
	}
	return version, nil
}

// SetPassword replaces the hash and bumps token_version so every outstanding
// token dies with the old password.
func (r *Repo) SetPassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, token_version = token_version + 1
		WHERE id = ?`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("updating password: user not found")
	}
	return nil
}

// RevokeTokens bumps token_version, invalidating every token signed before
// the call.
func (r *Repo) RevokeTokens(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET token_version = token_version + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("revoking tokens: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoking tokens: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("revoking tokens: user not found")
	}
	return nil
}

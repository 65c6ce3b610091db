package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lodgio/room-booking/internal/model"
)

// ErrTokenInvalid covers every refresh failure the client can cause:
// unknown hash, revoked session, expired session. Handlers answer all
// three with the same 401 so a caller cannot probe which one applied.
var ErrTokenInvalid = errors.New("refresh token invalid")

// RefreshTokenRepo persists login sessions in the refresh_tokens table.
// The raw token stays with the client; only its SHA-256 hash is stored,
// so a leaked table cannot be replayed against the refresh endpoints.
type RefreshTokenRepo struct{ DB *sql.DB }

func NewRefreshTokenRepo(db *sql.DB) *RefreshTokenRepo { return &RefreshTokenRepo{DB: db} }

// Save records a freshly issued session for the user.
func (r *RefreshTokenRepo) Save(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)",
		userID, tokenHash, expiresAt)
	return err
}

// FindValid resolves a token hash to its live session. Unknown, revoked
// and expired hashes all come back as ErrTokenInvalid.
func (r *RefreshTokenRepo) FindValid(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
	var (
		tok     model.RefreshToken
		revoked sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, expires_at, created_at, revoked_at FROM refresh_tokens WHERE token_hash = ? LIMIT 1",
		tokenHash).Scan(&tok.ID, &tok.UserID, &tok.ExpiresAt, &tok.CreatedAt, &revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RefreshToken{}, ErrTokenInvalid
	}
	if err != nil {
		return model.RefreshToken{}, err
	}
	if revoked.Valid || time.Now().UTC().After(tok.ExpiresAt) {
		return model.RefreshToken{}, ErrTokenInvalid
	}
	tok.TokenHash = tokenHash
	return tok, nil
}

// Revoke ends the session for one token hash. Revoking a hash that is
// already revoked or unknown is a no-op.
func (r *RefreshTokenRepo) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = NOW() WHERE token_hash = ? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllForUser ends every active session for a user. Account
// deletion calls this before removing the user row.
func (r *RefreshTokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = ? AND revoked_at IS NULL",
		userID)
	return err
}

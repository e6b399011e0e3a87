// file: repository/token_repository.go

package repository

import (
	"context"
	"database/sql"
	"time"

	"dishguru-api/logger"

	"github.com/sirupsen/logrus"
)

// ITokenRepository manages the single refresh-token slot kept on each user.
type ITokenRepository interface {
	Set(ctx context.Context, userID, token string, now time.Time) error
	Rotate(ctx context.Context, userID, current, next string, now time.Time) (bool, error)
	Clear(ctx context.Context, userID string, now time.Time) error
}

// TokenRepository implements ITokenRepository on the users table.
type TokenRepository struct {
	DB *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// Set overwrites the stored refresh token, replacing any previous one.
func (r *TokenRepository) Set(ctx context.Context, userID, token string, now time.Time) error {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Storing refresh token")

	query := `UPDATE users SET refresh_token = $2, updated_at = $3 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID, token, now)
	if err != nil {
		log.WithError(err).Error("Failed to store refresh token")
		return err
	}
	return expectOneRow(res)
}

// Rotate replaces the stored token with next only while it still equals
// current. It reports false when another request rotated or cleared it
// first.
func (r *TokenRepository) Rotate(ctx context.Context, userID, current, next string, now time.Time) (bool, error) {
	log := logger.Log.WithFields(logrus.Fields{"user_id": userID})
	log.Info("Rotating refresh token")

	query := `UPDATE users SET refresh_token = $3, updated_at = $4 WHERE id = $1 AND refresh_token = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, current, next, now)
	if err != nil {
		log.WithError(err).Error("Failed to rotate refresh token")
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Clear empties the refresh-token slot.
func (r *TokenRepository) Clear(ctx context.Context, userID string, now time.Time) error {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Clearing refresh token")

	query := `UPDATE users SET refresh_token = NULL, updated_at = $2 WHERE id = $1`
	if _, err := r.DB.ExecContext(ctx, query, userID, now); err != nil {
		log.WithError(err).Error("Failed to clear refresh token")
		return err
	}
	return nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

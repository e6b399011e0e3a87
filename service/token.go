package service

import (
	"fmt"
	"time"

	"dishguru-api/logger"
	"dishguru-api/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenManager issues and verifies HS256 access and refresh tokens.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenManager(cfg TokenConfig) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
}

// WithClock replaces the time source used for iat, exp and expiry checks.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

func (m *TokenManager) IssueAccessToken(subject string) (string, error) {
	return m.issue(subject, m.accessSecret, m.accessTTL)
}

func (m *TokenManager) IssueRefreshToken(subject string) (string, error) {
	return m.issue(subject, m.refreshSecret, m.refreshTTL)
}

// IssuePair mints a fresh access and refresh token for subject.
func (m *TokenManager) IssuePair(subject string) (*model.TokenPair, error) {
	access, err := m.IssueAccessToken(subject)
	if err != nil {
		return nil, err
	}
	refresh, err := m.IssueRefreshToken(subject)
	if err != nil {
		return nil, err
	}
	return &model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *TokenManager) VerifyAccessToken(token string) (*model.TokenClaims, error) {
	return m.VerifyToken(token, m.accessSecret)
}

func (m *TokenManager) VerifyRefreshToken(token string) (*model.TokenClaims, error) {
	return m.VerifyToken(token, m.refreshSecret)
}

// VerifyToken checks signature, algorithm and expiry. Every failure is
// reported as ErrInvalidToken.
func (m *TokenManager) VerifyToken(token string, secret []byte) (*model.TokenClaims, error) {
	claims := &model.TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		logger.Log.WithError(err).Debug("Token verification failed")
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *TokenManager) issue(subject string, secret []byte, ttl time.Duration) (string, error) {
	now := m.now()
	claims := model.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		logger.Log.WithError(err).WithField("subject", subject).Error("Failed to sign JWT")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}
	return signed, nil
}

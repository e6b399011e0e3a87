package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dishguru-api/logger"
	"dishguru-api/model"
	"dishguru-api/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuthService implements login, refresh-token rotation, logout and
// access-token authentication.
type AuthService struct {
	users  repository.IUserRepository
	slots  repository.ITokenRepository
	tokens *TokenManager
	creds  CredentialVerifier
}

func NewAuthService(users repository.IUserRepository, slots repository.ITokenRepository, tokens *TokenManager, creds CredentialVerifier) *AuthService {
	return &AuthService{
		users:  users,
		slots:  slots,
		tokens: tokens,
		creds:  creds,
	}
}

// Login checks the credentials, issues a token pair and stores the refresh
// token on the user. Unknown email and wrong password are indistinguishable
// to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.LoginResult, error) {
	email = normalizeEmail(email)
	log := logger.Log.WithField("email", email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Info("Login rejected: unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("could not load user: %w", err)
	}
	if !s.creds.Verify(password, user.PasswordHash) {
		log.WithField("user_id", user.ID).Info("Login rejected: wrong password")
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, err
	}
	now := s.tokens.now()
	if err := s.slots.Set(ctx, user.ID, pair.RefreshToken, now); err != nil {
		return nil, fmt.Errorf("could not store refresh token: %w", err)
	}
	user.RefreshToken = &pair.RefreshToken
	user.UpdatedAt = now

	log.WithField("user_id", user.ID).Info("User logged in")
	return &model.LoginResult{User: user.Public(), Tokens: *pair}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token must
// be the one currently stored for its subject; it is replaced atomically so
// it can be used only once.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*model.TokenPair, error) {
	if presented == "" {
		return nil, ErrInvalidRefreshToken
	}
	claims, err := s.tokens.VerifyRefreshToken(presented)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidRefreshToken
	}
	log := logger.Log.WithField("user_id", claims.Subject)

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("Refresh rejected: user no longer exists")
			return nil, ErrRefreshNotRecognized
		}
		return nil, fmt.Errorf("could not load user: %w", err)
	}
	if user.RefreshToken == nil || *user.RefreshToken != presented {
		log.Warn("Refresh rejected: token does not match the stored one")
		return nil, ErrRefreshNotRecognized
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, err
	}
	rotated, err := s.slots.Rotate(ctx, user.ID, presented, pair.RefreshToken, s.tokens.now())
	if err != nil {
		return nil, fmt.Errorf("could not rotate refresh token: %w", err)
	}
	if !rotated {
		log.Warn("Refresh rejected: token was rotated concurrently")
		return nil, ErrRefreshNotRecognized
	}

	log.Info("Refresh token rotated")
	return pair, nil
}

// Logout clears the user's refresh token. Failures are logged and swallowed
// so the client can always discard its cookies.
func (s *AuthService) Logout(ctx context.Context, userID string) {
	log := logger.Log.WithField("user_id", userID)
	if err := s.slots.Clear(ctx, userID, s.tokens.now()); err != nil {
		log.WithError(err).Warn("Could not clear refresh token during logout")
		return
	}
	log.Info("User logged out")
}

// Authenticate resolves an access token to its user.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*model.User, error) {
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}
	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, ErrInvalidAccessToken
	}
	if claims.Subject == "" {
		return nil, ErrAccessTokenNoSubject
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrAccessTokenNoSuchUser
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Log.WithFields(logrus.Fields{"user_id": claims.Subject}).Warn("Access token for a deleted user")
			return nil, ErrAccessTokenNoSuchUser
		}
		return nil, fmt.Errorf("could not load user: %w", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

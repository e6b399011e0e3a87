package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dishguru-api/logger"
	"dishguru-api/model"
	"dishguru-api/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UserService handles registration, profile and favorites.
type UserService struct {
	users   repository.IUserRepository
	recipes repository.IRecipeRepository
	creds   CredentialVerifier
	now     func() time.Time
}

func NewUserService(users repository.IUserRepository, recipes repository.IRecipeRepository, creds CredentialVerifier) *UserService {
	return &UserService{
		users:   users,
		recipes: recipes,
		creds:   creds,
		now:     time.Now,
	}
}

// Register creates a user and returns its public projection.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.PublicUser, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)
	log := logger.Log.WithFields(logrus.Fields{"email": email, "username": username})

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		log.Info("Registration rejected: email taken")
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("could not check email: %w", err)
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		log.Info("Registration rejected: username taken")
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("could not check username: %w", err)
	}

	digest, err := s.creds.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		Region:       strings.TrimSpace(req.Region),
		PasswordHash: digest,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			if dup.Field == "username" {
				return nil, ErrUsernameTaken
			}
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	log.WithField("user_id", user.ID).Info("User registered")
	return user.Public(), nil
}

// AddFavorite adds recipeID to the user's favorites. Adding it twice is a
// no-op.
func (s *UserService) AddFavorite(ctx context.Context, userID, recipeID string) error {
	if _, err := uuid.Parse(recipeID); err != nil {
		return ErrInvalidRecipeID
	}
	exists, err := s.recipes.Exists(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("could not look up recipe: %w", err)
	}
	if !exists {
		return ErrRecipeNotFound
	}
	if err := s.users.AddFavorite(ctx, userID, recipeID); err != nil {
		if errors.Is(err, repository.ErrReferenceNotFound) {
			return ErrRecipeNotFound
		}
		return fmt.Errorf("could not add favorite: %w", err)
	}
	logger.Log.WithFields(logrus.Fields{"user_id": userID, "recipe_id": recipeID}).Info("Recipe added to favorites")
	return nil
}

func (s *UserService) RemoveFavorite(ctx context.Context, userID, recipeID string) error {
	if _, err := uuid.Parse(recipeID); err != nil {
		return ErrInvalidRecipeID
	}
	removed, err := s.users.RemoveFavorite(ctx, userID, recipeID)
	if err != nil {
		return fmt.Errorf("could not remove favorite: %w", err)
	}
	if !removed {
		return ErrFavoriteNotFound
	}
	logger.Log.WithFields(logrus.Fields{"user_id": userID, "recipe_id": recipeID}).Info("Recipe removed from favorites")
	return nil
}

func (s *UserService) ListFavorites(ctx context.Context, userID string, page model.Page) ([]*model.Recipe, error) {
	return s.recipes.ListFavorites(ctx, userID, page)
}

func (s *UserService) ListMyRecipes(ctx context.Context, userID string, page model.Page) ([]*model.Recipe, error) {
	return s.recipes.ListByOwner(ctx, userID, page)
}

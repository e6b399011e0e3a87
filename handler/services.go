package handler

import (
	"context"

	"dishguru-api/model"
)

// The handlers depend on these narrow views of the service layer.

type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.LoginResult, error)
	Refresh(ctx context.Context, presented string) (*model.TokenPair, error)
	Logout(ctx context.Context, userID string)
	Authenticate(ctx context.Context, accessToken string) (*model.User, error)
}

type UserService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.PublicUser, error)
	AddFavorite(ctx context.Context, userID, recipeID string) error
	RemoveFavorite(ctx context.Context, userID, recipeID string) error
	ListFavorites(ctx context.Context, userID string, page model.Page) ([]*model.Recipe, error)
	ListMyRecipes(ctx context.Context, userID string, page model.Page) ([]*model.Recipe, error)
}

type RecipeService interface {
	GetRecipe(ctx context.Context, id string) (*model.Recipe, error)
	Search(ctx context.Context, filter model.RecipeFilter, page model.Page) ([]*model.Recipe, error)
	Generate(ctx context.Context, owner *model.User, req model.GenerateRequest) ([]*model.Recipe, error)
}

type RatingService interface {
	SubmitRating(ctx context.Context, recipeID, raterID string, score float64) (*model.Recipe, error)
}

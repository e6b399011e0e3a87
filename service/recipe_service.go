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

type RecipeService struct {
	recipes   repository.IRecipeRepository
	cache     *RecipeCache
	generator Generator
	now       func() time.Time
}

func NewRecipeService(recipes repository.IRecipeRepository, cache *RecipeCache, generator Generator) *RecipeService {
	return &RecipeService{
		recipes:   recipes,
		cache:     cache,
		generator: generator,
		now:       time.Now,
	}
}

// GetRecipe reads through the recipe cache.
func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidRecipeID
	}
	if recipe, ok := s.cache.Get(ctx, id); ok {
		return recipe, nil
	}

	recipe, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("could not load recipe: %w", err)
	}
	s.cache.Fill(ctx, recipe)
	return recipe, nil
}

func (s *RecipeService) Search(ctx context.Context, filter model.RecipeFilter, page model.Page) ([]*model.Recipe, error) {
	filter.Title = strings.TrimSpace(filter.Title)
	filter.Region = strings.TrimSpace(filter.Region)
	filter.Difficulty = strings.TrimSpace(filter.Difficulty)
	return s.recipes.Search(ctx, filter, page)
}

// Generate asks the generator for recipes built from req and stores every
// usable suggestion under owner.
func (s *RecipeService) Generate(ctx context.Context, owner *model.User, req model.GenerateRequest) ([]*model.Recipe, error) {
	region := strings.TrimSpace(req.Region)
	if region == "" {
		region = owner.Region
	}
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":     owner.ID,
		"region":      region,
		"ingredients": len(req.Ingredients),
	})
	log.Info("Generating recipes")

	raw, err := s.generator.Generate(ctx, recipeSystemPrompt, buildRecipePrompt(req.Ingredients, region, req.DietaryPreferences))
	if err != nil {
		log.WithError(err).Error("Recipe generator call failed")
		return nil, ErrGenerationFailed
	}
	suggestions, err := parseSuggestions(raw)
	if err != nil {
		log.WithError(err).Error("Recipe generator returned unusable output")
		return nil, ErrGenerationInvalid
	}

	now := s.now().UTC()
	created := make([]*model.Recipe, 0, len(suggestions))
	for _, sug := range suggestions {
		recipe := &model.Recipe{
			ID:                 uuid.NewString(),
			OwnerID:            owner.ID,
			Title:              strings.TrimSpace(sug.Title),
			Ingredients:        sug.Ingredients,
			Instructions:       sug.Instructions,
			Region:             firstNonEmpty(sug.Region, region),
			DietaryPreferences: firstNonEmpty(sug.DietaryPreferences, req.DietaryPreferences),
			PrepTimeMinutes:    sug.PrepTimeMinutes,
			CookTimeMinutes:    sug.CookTimeMinutes,
			Servings:           sug.Servings,
			Difficulty:         model.Difficulty(sug.Difficulty),
			Tags:               sug.Tags,
			NutritionalInfo:    sug.NutritionalInfo,
			Ratings:            model.NewRatingAggregate(),
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if recipe.Tags == nil {
			recipe.Tags = []string{}
		}
		if err := s.recipes.Create(ctx, recipe); err != nil {
			return nil, fmt.Errorf("could not store generated recipe: %w", err)
		}
		created = append(created, recipe)
	}

	log.WithField("created", len(created)).Info("Generated recipes stored")
	return created, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dishguru-api/logger"
	"dishguru-api/metrics"
	"dishguru-api/model"
	"dishguru-api/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RatingService records per-user scores on recipes.
type RatingService struct {
	db      *sql.DB
	recipes repository.IRecipeRepository
	cache   *RecipeCache
	now     func() time.Time
}

func NewRatingService(db *sql.DB, recipes repository.IRecipeRepository, cache *RecipeCache) *RatingService {
	return &RatingService{
		db:      db,
		recipes: recipes,
		cache:   cache,
		now:     time.Now,
	}
}

// SubmitRating sets raterID's score on the recipe, replacing any earlier
// score from the same rater, and returns the updated recipe. The recipe row
// stays locked from read to write so concurrent ratings of one recipe apply
// one after another.
func (s *RatingService) SubmitRating(ctx context.Context, recipeID, raterID string, score float64) (*model.Recipe, error) {
	if _, err := uuid.Parse(recipeID); err != nil {
		return nil, ErrInvalidRecipeID
	}
	log := logger.Log.WithFields(logrus.Fields{
		"recipe_id": recipeID,
		"rater_id":  raterID,
		"score":     score,
	})

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	recipe, err := s.recipes.GetForUpdate(ctx, tx, recipeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("could not load recipe: %w", err)
	}
	if !model.ValidScore(score) {
		return nil, ErrScoreOutOfRange
	}

	kind := "new"
	if recipe.Ratings.HasRated(raterID) {
		kind = "update"
	}
	agg := recipe.Ratings.Apply(raterID, score)
	now := s.now().UTC()

	if err := s.recipes.UpdateRatings(ctx, tx, recipeID, agg, now); err != nil {
		return nil, fmt.Errorf("could not update ratings: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	recipe.Ratings = agg
	recipe.UpdatedAt = now
	s.cache.Put(ctx, recipe)
	metrics.RatingsSubmitted.WithLabelValues(kind).Inc()

	log.WithFields(logrus.Fields{"count": agg.Count, "average": agg.Average}).Info("Rating recorded")
	return recipe, nil
}

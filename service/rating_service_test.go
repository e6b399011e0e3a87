package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"
	"time"

	"dishguru-api/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testRecipeID = "0b9d2c57-5a43-4f3c-9a5e-2d3b7a1c9e11"

func newRatingFixture(t *testing.T) (*RatingService, sqlmock.Sqlmock, *MockRecipeRepository, *MockCacheClient) {
	t.Helper()
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	recipes := new(MockRecipeRepository)
	cache := new(MockCacheClient)
	svc := NewRatingService(db, recipes, NewRecipeCache(cache, time.Minute))
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc, dbMock, recipes, cache
}

func TestRatingService_SubmitRating(t *testing.T) {
	ctx := context.Background()

	t.Run("first rating", func(t *testing.T) {
		svc, dbMock, recipes, cache := newRatingFixture(t)
		stored := &model.Recipe{ID: testRecipeID, Ratings: model.NewRatingAggregate()}

		dbMock.ExpectBegin()
		recipes.On("GetForUpdate", ctx, mock.Anything, testRecipeID).Return(stored, nil)
		recipes.On("UpdateRatings", ctx, mock.Anything, testRecipeID, mock.MatchedBy(func(agg model.RatingAggregate) bool {
			return agg.Count == 1 && agg.Average == 4 && agg.UserRatings["A"] == 4
		}), svc.now()).Return(nil)
		dbMock.ExpectCommit()
		cache.On("Set", ctx, "recipe:"+testRecipeID, mock.Anything, time.Minute).Return(redis.NewStatusResult("OK", nil))

		recipe, err := svc.SubmitRating(ctx, testRecipeID, "A", 4)
		require.NoError(t, err)
		assert.Equal(t, 1, recipe.Ratings.Count)
		assert.Equal(t, 4.0, recipe.Ratings.Average)
		assert.Equal(t, svc.now(), recipe.UpdatedAt)

		assert.NoError(t, dbMock.ExpectationsWereMet())
		recipes.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("rater replaces their score", func(t *testing.T) {
		svc, dbMock, recipes, cache := newRatingFixture(t)
		stored := &model.Recipe{ID: testRecipeID, Ratings: model.NewRatingAggregate().Apply("A", 4).Apply("B", 2)}

		dbMock.ExpectBegin()
		recipes.On("GetForUpdate", ctx, mock.Anything, testRecipeID).Return(stored, nil)
		recipes.On("UpdateRatings", ctx, mock.Anything, testRecipeID, mock.Anything, mock.Anything).Return(nil)
		dbMock.ExpectCommit()
		cache.On("Set", ctx, "recipe:"+testRecipeID, mock.Anything, time.Minute).Return(redis.NewStatusResult("OK", nil))

		recipe, err := svc.SubmitRating(ctx, testRecipeID, "A", 5)
		require.NoError(t, err)
		assert.Equal(t, 2, recipe.Ratings.Count)
		assert.Equal(t, 3.5, recipe.Ratings.Average)
		assert.Equal(t, map[string]float64{"A": 5, "B": 2}, recipe.Ratings.UserRatings)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("malformed recipe id never touches the store", func(t *testing.T) {
		svc, dbMock, recipes, _ := newRatingFixture(t)

		_, err := svc.SubmitRating(ctx, "not-a-uuid", "A", 9)
		assert.Equal(t, ErrInvalidRecipeID, err)
		assert.NoError(t, dbMock.ExpectationsWereMet())
		recipes.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown recipe wins over a bad score", func(t *testing.T) {
		svc, dbMock, recipes, _ := newRatingFixture(t)

		dbMock.ExpectBegin()
		recipes.On("GetForUpdate", ctx, mock.Anything, testRecipeID).Return(nil, sql.ErrNoRows)
		dbMock.ExpectRollback()

		_, err := svc.SubmitRating(ctx, testRecipeID, "A", 42)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	for _, score := range []float64{-0.5, 5.01, math.NaN()} {
		t.Run("score out of range", func(t *testing.T) {
			svc, dbMock, recipes, _ := newRatingFixture(t)
			stored := &model.Recipe{ID: testRecipeID, Ratings: model.NewRatingAggregate()}

			dbMock.ExpectBegin()
			recipes.On("GetForUpdate", ctx, mock.Anything, testRecipeID).Return(stored, nil)
			dbMock.ExpectRollback()

			_, err := svc.SubmitRating(ctx, testRecipeID, "A", score)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.NoError(t, dbMock.ExpectationsWereMet())
			recipes.AssertNotCalled(t, "UpdateRatings", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("write failure rolls back and leaves the cache alone", func(t *testing.T) {
		svc, dbMock, recipes, cache := newRatingFixture(t)
		stored := &model.Recipe{ID: testRecipeID, Ratings: model.NewRatingAggregate()}

		dbMock.ExpectBegin()
		recipes.On("GetForUpdate", ctx, mock.Anything, testRecipeID).Return(stored, nil)
		recipes.On("UpdateRatings", ctx, mock.Anything, testRecipeID, mock.Anything, mock.Anything).
			Return(errors.New("disk full"))
		dbMock.ExpectRollback()

		_, err := svc.SubmitRating(ctx, testRecipeID, "A", 3)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.NoError(t, dbMock.ExpectationsWereMet())
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		cache.AssertNotCalled(t, "Del", mock.Anything, mock.Anything)
	})
}

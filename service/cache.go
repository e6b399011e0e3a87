// file: service/cache.go

package service

import (
	"context"
	"encoding/json"
	"time"

	"dishguru-api/logger"
	"dishguru-api/model"

	"github.com/redis/go-redis/v9"
)

// ICacheClient is the subset of the Redis client the services use.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RecipeCache is a cache-aside store for recipe reads. A nil client turns
// every operation into a no-op.
type RecipeCache struct {
	client ICacheClient
	ttl    time.Duration
}

func NewRecipeCache(client ICacheClient, ttl time.Duration) *RecipeCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RecipeCache{client: client, ttl: ttl}
}

func recipeCacheKey(id string) string {
	return "recipe:" + id
}

func (c *RecipeCache) Get(ctx context.Context, id string) (*model.Recipe, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, recipeCacheKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.WithError(err).WithField("recipe_id", id).Warn("Recipe cache read failed")
		}
		return nil, false
	}
	var recipe model.Recipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		logger.Log.WithError(err).WithField("recipe_id", id).Warn("Discarding undecodable cached recipe")
		return nil, false
	}
	return &recipe, true
}

// Fill caches a recipe read from the store only when no entry exists, so a
// read that raced a rating never replaces the copy the rating wrote.
func (c *RecipeCache) Fill(ctx context.Context, recipe *model.Recipe) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(recipe)
	if err != nil {
		return
	}
	if err := c.client.SetNX(ctx, recipeCacheKey(recipe.ID), data, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("recipe_id", recipe.ID).Warn("Recipe cache fill failed")
	}
}

// Put overwrites the cached copy with recipe. If the write fails the entry is
// dropped so readers fall back to the store.
func (c *RecipeCache) Put(ctx context.Context, recipe *model.Recipe) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(recipe)
	if err != nil {
		c.Invalidate(ctx, recipe.ID)
		return
	}
	if err := c.client.Set(ctx, recipeCacheKey(recipe.ID), data, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("recipe_id", recipe.ID).Warn("Recipe cache write failed")
		c.Invalidate(ctx, recipe.ID)
	}
}

func (c *RecipeCache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, recipeCacheKey(id)).Err(); err != nil {
		logger.Log.WithError(err).WithField("recipe_id", id).Warn("Recipe cache invalidation failed")
	}
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"dishguru-api/logger"
	"dishguru-api/model"

	"github.com/sirupsen/logrus"
)

// IRecipeRepository defines the contract for recipe persistence.
type IRecipeRepository interface {
	Create(ctx context.Context, recipe *model.Recipe) error
	FindByID(ctx context.Context, id string) (*model.Recipe, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string, page model.Page) ([]*model.Recipe, error)
	ListFavorites(ctx context.Context, userID string, page model.Page) ([]*model.Recipe, error)
	Search(ctx context.Context, filter model.RecipeFilter, page model.Page) ([]*model.Recipe, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.Recipe, error)
	UpdateRatings(ctx context.Context, tx *sql.Tx, id string, agg model.RatingAggregate, now time.Time) error
}

type RecipeRepository struct {
	DB *sql.DB
}

func NewRecipeRepository(db *sql.DB) *RecipeRepository {
	return &RecipeRepository{DB: db}
}

const recipeColumns = `r.id, r.owner_id, r.title, r.ingredients, r.instructions, r.region, r.dietary_preferences,
	r.prep_time_minutes, r.cook_time_minutes, r.servings, r.difficulty, r.tags, r.nutritional_info,
	r.ratings_count, r.ratings_sum, r.ratings_average, r.user_ratings, r.created_at, r.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (*model.Recipe, error) {
	var (
		rec                             model.Recipe
		owner                           sql.NullString
		ingredients, instructions, tags []byte
		nutrition, userRatings          []byte
		difficulty                      string
	)
	err := row.Scan(&rec.ID, &owner, &rec.Title, &ingredients, &instructions, &rec.Region, &rec.DietaryPreferences,
		&rec.PrepTimeMinutes, &rec.CookTimeMinutes, &rec.Servings, &difficulty, &tags, &nutrition,
		&rec.Ratings.Count, &rec.Ratings.Sum, &rec.Ratings.Average, &userRatings, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.OwnerID = owner.String
	rec.Difficulty = model.Difficulty(difficulty)

	fields := []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"ingredients", ingredients, &rec.Ingredients},
		{"instructions", instructions, &rec.Instructions},
		{"tags", tags, &rec.Tags},
		{"nutritional_info", nutrition, &rec.NutritionalInfo},
		{"user_ratings", userRatings, &rec.Ratings.UserRatings},
	}
	for _, f := range fields {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return nil, fmt.Errorf("decoding recipe %s: %w", f.name, err)
		}
	}
	if rec.Ratings.UserRatings == nil {
		rec.Ratings.UserRatings = map[string]float64{}
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	return &rec, nil
}

func scanRecipes(rows *sql.Rows) ([]*model.Recipe, error) {
	defer rows.Close()
	recipes := make([]*model.Recipe, 0)
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, rec)
	}
	return recipes, rows.Err()
}

// Create inserts recipe with the ID, owner and timestamps already set.
func (r *RecipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	log := logger.Log.WithFields(logrus.Fields{
		"recipe_id": recipe.ID,
		"owner_id":  recipe.OwnerID,
	})
	log.Info("Executing query to create a new recipe")

	ingredients, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return err
	}
	instructions, err := json.Marshal(recipe.Instructions)
	if err != nil {
		return err
	}
	tags := recipe.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	var nutrition []byte
	if recipe.NutritionalInfo != nil {
		if nutrition, err = json.Marshal(recipe.NutritionalInfo); err != nil {
			return err
		}
	}
	ratings := recipe.Ratings.UserRatings
	if ratings == nil {
		ratings = map[string]float64{}
	}
	ratingsJSON, err := json.Marshal(ratings)
	if err != nil {
		return err
	}
	var owner sql.NullString
	if recipe.OwnerID != "" {
		owner = sql.NullString{String: recipe.OwnerID, Valid: true}
	}

	query := `INSERT INTO recipes (id, owner_id, title, ingredients, instructions, region, dietary_preferences,
		prep_time_minutes, cook_time_minutes, servings, difficulty, tags, nutritional_info,
		ratings_count, ratings_sum, ratings_average, user_ratings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err = r.DB.ExecContext(ctx, query, recipe.ID, owner, recipe.Title, ingredients, instructions,
		recipe.Region, recipe.DietaryPreferences, recipe.PrepTimeMinutes, recipe.CookTimeMinutes, recipe.Servings,
		string(recipe.Difficulty), tagsJSON, nutrition, recipe.Ratings.Count, recipe.Ratings.Sum,
		recipe.Ratings.Average, ratingsJSON, recipe.CreatedAt, recipe.UpdatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create recipe query")
		return translateError(err)
	}
	return nil
}

func (r *RecipeRepository) FindByID(ctx context.Context, id string) (*model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes r WHERE r.id = $1`
	rec, err := scanRecipe(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithField("recipe_id", id).WithError(err).Error("Failed to query recipe")
		}
		return nil, err
	}
	return rec, nil
}

func (r *RecipeRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM recipes WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		logger.Log.WithField("recipe_id", id).WithError(err).Error("Failed to check recipe existence")
		return false, err
	}
	return exists, nil
}

// ListByOwner returns the recipes generated by ownerID, newest first.
func (r *RecipeRepository) ListByOwner(ctx context.Context, ownerID string, page model.Page) ([]*model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes r WHERE r.owner_id = $1
		ORDER BY r.created_at DESC OFFSET $2 LIMIT $3`
	return r.list(ctx, logrus.Fields{"owner_id": ownerID}, query, ownerID, page.Offset(), page.Limit)
}

// ListFavorites returns userID's favorite recipes, most recently added first.
func (r *RecipeRepository) ListFavorites(ctx context.Context, userID string, page model.Page) ([]*model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes r
		JOIN user_favorites f ON f.recipe_id = r.id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC OFFSET $2 LIMIT $3`
	return r.list(ctx, logrus.Fields{"user_id": userID}, query, userID, page.Offset(), page.Limit)
}

// Search matches every non-empty filter field as a case-insensitive
// substring.
func (r *RecipeRepository) Search(ctx context.Context, filter model.RecipeFilter, page model.Page) ([]*model.Recipe, error) {
	var (
		conds []string
		args  []any
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, "%"+escapeLike(value)+"%")
		conds = append(conds, fmt.Sprintf("%s ILIKE $%d", column, len(args)))
	}
	add("r.title", filter.Title)
	add("r.region", filter.Region)
	add("r.difficulty", filter.Difficulty)

	query := `SELECT ` + recipeColumns + ` FROM recipes r`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, page.Offset(), page.Limit)
	query += fmt.Sprintf(` ORDER BY r.created_at DESC OFFSET $%d LIMIT $%d`, len(args)-1, len(args))

	fields := logrus.Fields{"title": filter.Title, "region": filter.Region, "difficulty": filter.Difficulty}
	return r.list(ctx, fields, query, args...)
}

func (r *RecipeRepository) list(ctx context.Context, fields logrus.Fields, query string, args ...any) ([]*model.Recipe, error) {
	log := logger.Log.WithFields(fields)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to query recipes")
		return nil, err
	}
	recipes, err := scanRecipes(rows)
	if err != nil {
		log.WithError(err).Error("Failed to scan recipe rows")
		return nil, err
	}
	return recipes, nil
}

// GetForUpdate loads a recipe and locks its row until tx ends.
func (r *RecipeRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes r WHERE r.id = $1 FOR UPDATE`
	rec, err := scanRecipe(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithField("recipe_id", id).WithError(err).Error("Failed to lock recipe row")
		}
		return nil, err
	}
	return rec, nil
}

// UpdateRatings writes the whole rating aggregate of a locked recipe.
func (r *RecipeRepository) UpdateRatings(ctx context.Context, tx *sql.Tx, id string, agg model.RatingAggregate, now time.Time) error {
	log := logger.Log.WithFields(logrus.Fields{
		"recipe_id": id,
		"count":     agg.Count,
		"average":   agg.Average,
	})
	log.Info("Executing query to update recipe ratings")

	ratings, err := json.Marshal(agg.UserRatings)
	if err != nil {
		return err
	}
	query := `UPDATE recipes
		SET ratings_count = $2, ratings_sum = $3, ratings_average = $4, user_ratings = $5, updated_at = $6
		WHERE id = $1`
	res, err := tx.ExecContext(ctx, query, id, agg.Count, agg.Sum, agg.Average, ratings, now)
	if err != nil {
		log.WithError(err).Error("Failed to update recipe ratings")
		return err
	}
	return expectOneRow(res)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

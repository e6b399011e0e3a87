package repository

import (
	"context"
	"database/sql"

	"dishguru-api/logger"
	"dishguru-api/model"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// IUserRepository defines the contract for user persistence.
type IUserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	AddFavorite(ctx context.Context, userID, recipeID string) error
	RemoveFavorite(ctx context.Context, userID, recipeID string) (bool, error)
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `u.id, u.username, u.email, u.full_name, u.region, u.password_hash, u.refresh_token,
	u.created_at, u.updated_at,
	(SELECT COALESCE(array_agg(f.recipe_id::text ORDER BY f.created_at), '{}')
	   FROM user_favorites f WHERE f.user_id = u.id)`

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.Region,
		&user.PasswordHash, &user.RefreshToken, &user.CreatedAt, &user.UpdatedAt, pq.Array(&user.Favorites))
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts user. ID and timestamps must already be set.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	})
	log.Info("Executing query to create a new user")

	query := `INSERT INTO users (id, username, email, full_name, region, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query, user.ID, user.Username, user.Email, user.FullName, user.Region,
		user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create user query")
		return translateError(err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, "id", `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email", `SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "username", `SELECT `+userColumns+` FROM users u WHERE u.username = $1`, username)
}

func (r *UserRepository) findOne(ctx context.Context, by, query, value string) (*model.User, error) {
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, value))
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).WithField("lookup", by).Error("Failed to query user")
		}
		return nil, err
	}
	return user, nil
}

// AddFavorite is idempotent. A recipe that does not exist yields
// ErrReferenceNotFound.
func (r *UserRepository) AddFavorite(ctx context.Context, userID, recipeID string) error {
	query := `INSERT INTO user_favorites (user_id, recipe_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.DB.ExecContext(ctx, query, userID, recipeID); err != nil {
		logger.Log.WithFields(logrus.Fields{"user_id": userID, "recipe_id": recipeID}).
			WithError(err).Error("Failed to add favorite")
		return translateError(err)
	}
	return nil
}

// RemoveFavorite reports whether the recipe was in the user's favorites.
func (r *UserRepository) RemoveFavorite(ctx context.Context, userID, recipeID string) (bool, error) {
	query := `DELETE FROM user_favorites WHERE user_id = $1 AND recipe_id = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, recipeID)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"user_id": userID, "recipe_id": recipeID}).
			WithError(err).Error("Failed to remove favorite")
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

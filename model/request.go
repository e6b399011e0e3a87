// file: model/request.go

package model

// RegisterRequest defines the payload for creating a new user.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required,max=255"`
	Region   string `json:"region" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest lets clients that do not keep cookies send the refresh
// token in the body instead.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RatingRequest carries a single score. A pointer keeps an explicit 0
// distinguishable from a missing field.
type RatingRequest struct {
	Score *float64 `json:"score" validate:"required"`
}

type GenerateRequest struct {
	Ingredients        []Ingredient `json:"ingredients" validate:"required,min=1,dive"`
	Region             string       `json:"region" validate:"max=100"`
	DietaryPreferences string       `json:"dietary_preferences" validate:"max=255"`
}

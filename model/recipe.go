package model

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

type Ingredient struct {
	Name     string `json:"name" validate:"required"`
	Quantity string `json:"quantity"`
}

type Recipe struct {
	ID                 string          `json:"id"`
	OwnerID            string          `json:"owner,omitempty"`
	Title              string          `json:"title"`
	Ingredients        []Ingredient    `json:"ingredients"`
	Instructions       []string        `json:"instructions"`
	Region             string          `json:"region,omitempty"`
	DietaryPreferences string          `json:"dietary_preferences,omitempty"`
	PrepTimeMinutes    *int            `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes    *int            `json:"cook_time_minutes,omitempty"`
	Servings           *int            `json:"servings,omitempty"`
	Difficulty         Difficulty      `json:"difficulty,omitempty"`
	Tags               []string        `json:"tags"`
	NutritionalInfo    map[string]any  `json:"nutritional_info,omitempty"`
	Ratings            RatingAggregate `json:"ratings"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// RecipeFilter narrows a search. Empty fields match everything; the others
// are case-insensitive substring matches.
type RecipeFilter struct {
	Title      string
	Region     string
	Difficulty string
}

// Page is a validated pagination window.
type Page struct {
	Number int
	Limit  int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"dishguru-api/common"
	"dishguru-api/logger"
	"dishguru-api/model"
)

// Generator turns a prompt into model text. The recipe service expects the
// text to be a JSON object with a "recipe_suggestions" array.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

const recipeSystemPrompt = `You are a culinary assistant that writes practical home-cooking recipes.

Write exactly 2 recipes built around the ingredients the user lists:
1. One that is typical of, or inspired by, the user's region.
2. One popular or inventive dish that makes good use of the same ingredients.

You may add at most 3 basic pantry items (oil, salt, pepper, water, common spices) when a recipe needs them; list them with the other ingredients.
Instructions are short imperative steps, one per array element.
difficulty is one of "Easy", "Medium" or "Hard".

Reply with one JSON object and nothing else, shaped like:
{"recipe_suggestions":[{"title":"","ingredients":[{"name":"","quantity":""}],"instructions":[""],"region":"","dietary_preferences":"","prep_time_minutes":0,"cook_time_minutes":0,"servings":0,"difficulty":"Easy","tags":[""],"nutritional_info":{}}]}`

func buildRecipePrompt(ingredients []model.Ingredient, region, dietary string) string {
	names := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if ing.Quantity != "" {
			names = append(names, fmt.Sprintf("%s (%s)", ing.Name, ing.Quantity))
		} else {
			names = append(names, ing.Name)
		}
	}
	if dietary == "" {
		dietary = "none"
	}
	return fmt.Sprintf("Ingredients: %s\nRegion: %s\nDietary preferences: %s",
		strings.Join(names, ", "), region, dietary)
}

type generatedRecipe struct {
	Title              string             `json:"title" validate:"required"`
	Ingredients        []model.Ingredient `json:"ingredients" validate:"required,min=1,dive"`
	Instructions       []string           `json:"instructions" validate:"required,min=1,dive,required"`
	Region             string             `json:"region"`
	DietaryPreferences string             `json:"dietary_preferences"`
	PrepTimeMinutes    *int               `json:"prep_time_minutes" validate:"omitempty,gte=0"`
	CookTimeMinutes    *int               `json:"cook_time_minutes" validate:"omitempty,gte=0"`
	Servings           *int               `json:"servings" validate:"omitempty,gte=0"`
	Difficulty         string             `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	Tags               []string           `json:"tags"`
	NutritionalInfo    map[string]any     `json:"nutritional_info"`
}

// parseSuggestions decodes the generator output and keeps the suggestions
// that pass validation.
func parseSuggestions(raw string) ([]generatedRecipe, error) {
	var payload struct {
		RecipeSuggestions []generatedRecipe `json:"recipe_suggestions"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return nil, fmt.Errorf("decoding generator output: %w", err)
	}

	valid := make([]generatedRecipe, 0, len(payload.RecipeSuggestions))
	for i, s := range payload.RecipeSuggestions {
		if err := common.ValidateStruct(&s); err != nil {
			logger.Log.WithError(err).WithField("index", i).Warn("Dropping invalid recipe suggestion")
			continue
		}
		valid = append(valid, s)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("generator returned no usable recipes")
	}
	return valid, nil
}

// stripCodeFence removes a ```json ... ``` wrapper that some models add
// despite being asked for bare JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

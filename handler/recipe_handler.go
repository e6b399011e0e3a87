package handler

import (
	"net/http"

	"dishguru-api/common"
	"dishguru-api/model"
)

type RecipeHandler struct {
	recipes RecipeService
	ratings RatingService
}

func NewRecipeHandler(recipes RecipeService, ratings RatingService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, ratings: ratings}
}

// Generate godoc
// @Summary      Generate recipes from ingredients
// @Description  Asks the language model for recipe ideas and saves them under the current user.
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.GenerateRequest true "Ingredients and preferences"
// @Success      201  {array}   model.Recipe
// @Failure      400  {object}  common.AppError
// @Failure      401  {object}  common.AppError
// @Failure      500  {object}  common.AppError "Generation failed"
// @Router       /api/v1/recipes/generate [post]
func (h *RecipeHandler) Generate(w http.ResponseWriter, r *http.Request, user *model.User) *common.AppError {
	var req model.GenerateRequest
	if err := common.ValidateAndDecode(w, r, &req); err != nil {
		return err
	}
	recipes, err := h.recipes.Generate(r.Context(), user, req)
	if err != nil {
		return serviceError(err, "Could not generate recipes")
	}
	common.WriteJSON(w, http.StatusCreated, recipes)
	return nil
}

// Search godoc
// @Summary      Search recipes
// @Description  Case-insensitive substring match on title, region and difficulty.
// @Tags         recipes
// @Produce      json
// @Param        title      query string false "Title contains"
// @Param        region     query string false "Region contains"
// @Param        difficulty query string false "Difficulty contains"
// @Param        page       query int    false "Page number (>= 1)"
// @Param        limit      query int    false "Page size (1-100)"
// @Success      200  {array}   model.Recipe
// @Failure      400  {object}  common.AppError
// @Router       /api/v1/recipes/search [get]
func (h *RecipeHandler) Search(w http.ResponseWriter, r *http.Request) *common.AppError {
	page, appErr := parsePage(r)
	if appErr != nil {
		return appErr
	}
	q := r.URL.Query()
	filter := model.RecipeFilter{
		Title:      q.Get("title"),
		Region:     q.Get("region"),
		Difficulty: q.Get("difficulty"),
	}
	recipes, err := h.recipes.Search(r.Context(), filter, page)
	if err != nil {
		return serviceError(err, "Could not search recipes")
	}
	common.WriteJSON(w, http.StatusOK, recipes)
	return nil
}

// GetRecipe godoc
// @Summary      Get a recipe
// @Tags         recipes
// @Produce      json
// @Param        recipeID path string true "Recipe ID"
// @Success      200  {object}  model.Recipe
// @Failure      400  {object}  common.AppError "Malformed recipe ID"
// @Failure      404  {object}  common.AppError
// @Router       /api/v1/recipes/{recipeID} [get]
func (h *RecipeHandler) GetRecipe(w http.ResponseWriter, r *http.Request) *common.AppError {
	recipe, err := h.recipes.GetRecipe(r.Context(), r.PathValue("recipeID"))
	if err != nil {
		return serviceError(err, "Could not load recipe")
	}
	common.WriteJSON(w, http.StatusOK, recipe)
	return nil
}

// Rate godoc
// @Summary      Rate a recipe
// @Description  Records the caller's score (0-5). Rating again replaces the caller's previous score.
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        recipeID path string true "Recipe ID"
// @Param        rating   body model.RatingRequest true "Score"
// @Success      200  {object}  model.Recipe
// @Failure      400  {object}  common.AppError "Malformed ID or score out of range"
// @Failure      401  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Router       /api/v1/recipes/{recipeID}/rate [post]
func (h *RecipeHandler) Rate(w http.ResponseWriter, r *http.Request, user *model.User) *common.AppError {
	var req model.RatingRequest
	if err := common.ValidateAndDecode(w, r, &req); err != nil {
		return err
	}
	recipe, err := h.ratings.SubmitRating(r.Context(), r.PathValue("recipeID"), user.ID, *req.Score)
	if err != nil {
		return serviceError(err, "Could not rate recipe")
	}
	common.WriteJSON(w, http.StatusOK, recipe)
	return nil
}

package handler

import (
	"net/http"

	"dishguru-api/common"
	"dishguru-api/model"
)

type UserHandler struct {
	users UserService
}

func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Profile godoc
// @Summary      Current user profile
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.PublicUser
// @Failure      401  {object}  common.AppError
// @Router       /api/v1/user/profile [get]
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request, user *model.User) *common.AppError {
	common.WriteJSON(w, http.StatusOK, user.Public())
	return nil
}

// AddFavorite godoc
// @Summary      Add a recipe to favorites
// @Tags         user
// @Security     BearerAuth
// @Param        recipeID path string true "Recipe ID"
// @Success      204
// @Failure      400  {object}  common.AppError "Malformed recipe ID"
// @Failure      404  {object}  common.AppError "Recipe not found"
// @Router       /api/v1/user/favorites/{recipeID} [post]
func (h *UserHandler) AddFavorite(w http.ResponseWriter, r *http.Request, user *model.User) *common.AppError {
	if err := h.users.AddFavorite(r.Context(), user.ID, r.PathValue("recipeID")); err != nil {
		return serviceError(err, "Could not add favorite")
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// RemoveFavorite godoc
// @Summary      Remove a recipe from favorites
// @Tags         user
// @Security     BearerAuth
// @Param        recipeID path string true "Recipe ID"
// @Success      204
// @Failure      400  {object}  common.AppError "Malformed recipe ID"
// @Failure      404  {object}  common.AppError "Recipe not in favorites"
// @Router       /api/v1/user/favorites/{recipeID} [delete]
func (h *UserHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request, user *model.User) *common.AppError {
	if err := h.users.RemoveFavorite(r.Context(), user.ID, r.PathValue("recipeID")); err != nil {
		return serviceError(err, "Could not remove favorite")
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// ListFavorites godoc
// @Summary      List favorite recipes
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Param        page  query int false "Page number (>= 1)"
// @Param        limit query int false "Page size (1-100)"
// @Success      200  {array}   model.Recipe
// @Failure      400  {object}  common.AppError
// @Router       /api/v1/user/favorites [get]
func (h *UserHandler) ListFavorites(w http.ResponseWriter, r *http.Request, user *model.User) *common.AppError {
	page, appErr := parsePage(r)
	if appErr != nil {
		return appErr
	}
	recipes, err := h.users.ListFavorites(r.Context(), user.ID, page)
	if err != nil {
		return serviceError(err, "Could not list favorites")
	}
	common.WriteJSON(w, http.StatusOK, recipes)
	return nil
}

// ListMyRecipes godoc
// @Summary      List recipes generated by the current user
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Param        page  query int false "Page number (>= 1)"
// @Param        limit query int false "Page size (1-100)"
// @Success      200  {array}   model.Recipe
// @Failure      400  {object}  common.AppError
// @Router       /api/v1/user/my_recipes [get]
func (h *UserHandler) ListMyRecipes(w http.ResponseWriter, r *http.Request, user *model.User) *common.AppError {
	page, appErr := parsePage(r)
	if appErr != nil {
		return appErr
	}
	recipes, err := h.users.ListMyRecipes(r.Context(), user.ID, page)
	if err != nil {
		return serviceError(err, "Could not list recipes")
	}
	common.WriteJSON(w, http.StatusOK, recipes)
	return nil
}

package router

import (
	"net/http"

	_ "dishguru-api/docs"
	"dishguru-api/handler"
	"dishguru-api/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Handlers groups everything NewRouter mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Recipe  *handler.RecipeHandler
	Guard   *handler.AuthMiddleware
	Limiter *handler.RateLimiter
}

func NewRouter(h Handlers) http.Handler {
	mux := http.NewServeMux()
	wrap := handler.ErrorHandlingMiddleware
	authed := h.Guard.RequireUser

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	mux.Handle("POST /api/v1/auth/register", wrap(h.Limiter.Limit("register", h.Auth.Register)))
	mux.Handle("POST /api/v1/auth/login", wrap(h.Limiter.Limit("login", h.Auth.Login)))
	mux.Handle("POST /api/v1/auth/refresh-token", wrap(h.Auth.RefreshToken))
	mux.Handle("POST /api/v1/auth/logout", wrap(authed(h.Auth.Logout)))

	mux.Handle("GET /api/v1/user/profile", wrap(authed(h.User.Profile)))
	mux.Handle("GET /api/v1/user/favorites", wrap(authed(h.User.ListFavorites)))
	mux.Handle("POST /api/v1/user/favorites/{recipeID}", wrap(authed(h.User.AddFavorite)))
	mux.Handle("DELETE /api/v1/user/favorites/{recipeID}", wrap(authed(h.User.RemoveFavorite)))
	mux.Handle("GET /api/v1/user/my_recipes", wrap(authed(h.User.ListMyRecipes)))

	mux.Handle("POST /api/v1/recipes/generate", wrap(authed(h.Recipe.Generate)))
	mux.Handle("GET /api/v1/recipes/search", wrap(h.Recipe.Search))
	mux.Handle("POST /api/v1/recipes/search", wrap(h.Recipe.Search))
	mux.Handle("GET /api/v1/recipes/{recipeID}", wrap(h.Recipe.GetRecipe))
	mux.Handle("POST /api/v1/recipes/{recipeID}/rate", wrap(authed(h.Recipe.Rate)))

	return handler.RequestLogger(mux)
}

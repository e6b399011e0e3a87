package handler

import (
	"net/http"

	"dishguru-api/common"
	"dishguru-api/model"
)

// AuthedHandlerFunc is a handler that runs only for an authenticated user.
type AuthedHandlerFunc func(w http.ResponseWriter, r *http.Request, user *model.User) *common.AppError

type AuthMiddleware struct {
	auth AuthService
}

func NewAuthMiddleware(auth AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireUser resolves the access token (cookie first, then bearer header)
// and hands the user to next. Any failure is a 401.
func (m *AuthMiddleware) RequireUser(next AuthedHandlerFunc) func(http.ResponseWriter, *http.Request) *common.AppError {
	return func(w http.ResponseWriter, r *http.Request) *common.AppError {
		user, err := m.auth.Authenticate(r.Context(), tokenFromRequest(r, AccessTokenCookie))
		if err != nil {
			return serviceError(err, "Could not validate credentials")
		}
		return next(w, r, user)
	}
}

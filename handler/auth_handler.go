package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"dishguru-api/common"
	"dishguru-api/model"
)

type AuthHandler struct {
	auth    AuthService
	users   UserService
	cookies CookieConfig
}

func NewAuthHandler(auth AuthService, users UserService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, cookies: cookies}
}

type loginResponse struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message"`
	User        *model.PublicUser `json:"user"`
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
}

type refreshResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Register godoc
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        user body model.RegisterRequest true "New user"
// @Success      201  {object}  model.PublicUser
// @Failure      400  {object}  common.AppError
// @Failure      409  {object}  common.AppError "Email or username already taken"
// @Failure      429  {object}  common.AppError
// @Router       /api/v1/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if err := common.ValidateAndDecode(w, r, &req); err != nil {
		return err
	}

	user, err := h.users.Register(r.Context(), req)
	if err != nil {
		return serviceError(err, "Could not register user")
	}
	common.WriteJSON(w, http.StatusCreated, user)
	return nil
}

// Login godoc
// @Summary      Log in with email and password
// @Description  Returns an access token and sets the accessToken and refreshToken cookies.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials body model.LoginRequest true "Credentials"
// @Success      200  {object}  loginResponse
// @Failure      401  {object}  common.AppError "Invalid credentials"
// @Failure      429  {object}  common.AppError
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if err := common.ValidateAndDecode(w, r, &req); err != nil {
		return err
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return serviceError(err, "Could not log in")
	}

	h.cookies.setTokens(w, res.Tokens)
	common.WriteJSON(w, http.StatusOK, loginResponse{
		Success:     true,
		Message:     "Login successful",
		User:        res.User,
		AccessToken: res.Tokens.AccessToken,
		TokenType:   "bearer",
	})
	return nil
}

// RefreshToken godoc
// @Summary      Rotate the refresh token
// @Description  Reads the refresh token from the refreshToken cookie, the bearer header or the body, and issues a new pair.
// @Tags         auth
// @Produce      json
// @Param        body body model.RefreshRequest false "Refresh token for clients without cookies"
// @Success      200  {object}  refreshResponse
// @Failure      401  {object}  common.AppError
// @Router       /api/v1/auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) *common.AppError {
	presented := tokenFromRequest(r, RefreshTokenCookie)
	if presented == "" && r.Body != nil {
		var body model.RefreshRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return common.NewAppError(http.StatusBadRequest, "Invalid request body", err)
		}
		presented = body.RefreshToken
	}
	if presented == "" {
		return common.NewAppError(http.StatusUnauthorized, "Refresh token not provided.", nil)
	}

	pair, err := h.auth.Refresh(r.Context(), presented)
	if err != nil {
		return serviceError(err, "Could not refresh token")
	}

	h.cookies.setTokens(w, *pair)
	common.WriteJSON(w, http.StatusOK, refreshResponse{
		Status:      "success",
		Message:     "Token refreshed successfully",
		AccessToken: pair.AccessToken,
	})
	return nil
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the stored refresh token and deletes both auth cookies.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  common.AppError
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request, user *model.User) *common.AppError {
	h.auth.Logout(r.Context(), user.ID)
	h.cookies.clearTokens(w)
	common.WriteJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Successfully logged out"})
	return nil
}

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dishguru-api/common"
	"dishguru-api/model"
	"dishguru-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testCookies = CookieConfig{Secure: true, MaxAge: 7 * 24 * time.Hour}

func findCookie(t *testing.T, rr *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success sets both cookies", func(t *testing.T) {
		auth := new(mockAuthService)
		h := NewAuthHandler(auth, nil, testCookies)
		auth.On("Login", mock.Anything, "cook@example.com", "correct-horse").Return(&model.LoginResult{
			User:   &model.PublicUser{ID: "u1", Email: "cook@example.com", Favorites: []string{}},
			Tokens: model.TokenPair{AccessToken: "acc", RefreshToken: "refresh-xyz"},
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(`{"email":"cook@example.com","password":"correct-horse"}`))
		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.Login)(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var body loginResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "acc", body.AccessToken)
		assert.Equal(t, "bearer", body.TokenType)
		assert.Equal(t, "u1", body.User.ID)
		assert.NotContains(t, rr.Body.String(), "refresh-xyz", "refresh token travels only in the cookie")

		access := findCookie(t, rr, AccessTokenCookie)
		assert.Equal(t, "acc", access.Value)
		assert.True(t, access.HttpOnly)
		assert.True(t, access.Secure)
		assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
		assert.Equal(t, "/", access.Path)
		assert.Equal(t, 604800, access.MaxAge)
		assert.Equal(t, "refresh-xyz", findCookie(t, rr, RefreshTokenCookie).Value)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		auth := new(mockAuthService)
		h := NewAuthHandler(auth, nil, testCookies)
		auth.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, service.ErrInvalidCredentials)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(`{"email":"cook@example.com","password":"nope"}`))
		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.Login)(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"success":false,"code":401,"message":"Invalid credentials."}`, rr.Body.String())
		assert.Empty(t, rr.Result().Cookies())
	})

	t.Run("malformed body", func(t *testing.T) {
		h := NewAuthHandler(new(mockAuthService), nil, testCookies)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":`))
		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.Login)(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandler_Register(t *testing.T) {
	body := `{"username":"cook","email":"cook@example.com","fullName":"Ada Cook","region":"Tuscany","password":"supersecret"}`

	t.Run("created", func(t *testing.T) {
		users := new(mockUserService)
		h := NewAuthHandler(nil, users, testCookies)
		users.On("Register", mock.Anything, mock.AnythingOfType("model.RegisterRequest")).
			Return(&model.PublicUser{ID: "u1", Username: "cook"}, nil)

		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.Register)(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.NotContains(t, rr.Body.String(), "password")
	})

	t.Run("conflict", func(t *testing.T) {
		users := new(mockUserService)
		h := NewAuthHandler(nil, users, testCookies)
		users.On("Register", mock.Anything, mock.Anything).Return(nil, service.ErrUsernameTaken)

		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.Register)(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "Username is already taken.")
	})

	t.Run("short password", func(t *testing.T) {
		h := NewAuthHandler(nil, new(mockUserService), testCookies)
		bad := strings.Replace(body, "supersecret", "short", 1)

		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.Register)(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(bad)))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	pair := &model.TokenPair{AccessToken: "acc2", RefreshToken: "ref2"}

	t.Run("cookie wins over header", func(t *testing.T) {
		auth := new(mockAuthService)
		h := NewAuthHandler(auth, nil, testCookies)
		auth.On("Refresh", mock.Anything, "from-cookie").Return(pair, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh-token", nil)
		req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "from-cookie"})
		req.Header.Set("Authorization", "Bearer from-header")
		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.RefreshToken)(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"success","message":"Token refreshed successfully","access_token":"acc2"}`, rr.Body.String())
		assert.Equal(t, "ref2", findCookie(t, rr, RefreshTokenCookie).Value)
		auth.AssertExpectations(t)
	})

	t.Run("body fallback", func(t *testing.T) {
		auth := new(mockAuthService)
		h := NewAuthHandler(auth, nil, testCookies)
		auth.On("Refresh", mock.Anything, "from-body").Return(pair, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh-token", strings.NewReader(`{"refresh_token":"from-body"}`))
		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.RefreshToken)(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		h := NewAuthHandler(new(mockAuthService), nil, testCookies)
		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.RefreshToken)(rr, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		auth := new(mockAuthService)
		h := NewAuthHandler(auth, nil, testCookies)
		auth.On("Refresh", mock.Anything, "old").Return(nil, service.ErrRefreshNotRecognized)

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer old")
		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.RefreshToken)(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	auth := new(mockAuthService)
	h := NewAuthHandler(auth, nil, testCookies)
	mw := NewAuthMiddleware(auth)
	user := &model.User{ID: "u1"}

	auth.On("Authenticate", mock.Anything, "acc").Return(user, nil)
	auth.On("Logout", mock.Anything, "u1").Return()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "acc"})
	rr := httptest.NewRecorder()
	ErrorHandlingMiddleware(mw.RequireUser(h.Logout))(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"Successfully logged out"}`, rr.Body.String())
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		c := findCookie(t, rr, name)
		assert.Empty(t, c.Value)
		assert.Less(t, c.MaxAge, 0)
		assert.True(t, c.HttpOnly)
	}
	auth.AssertExpectations(t)
}

func TestAuthMiddleware_RequireUser(t *testing.T) {
	auth := new(mockAuthService)
	mw := NewAuthMiddleware(auth)
	auth.On("Authenticate", mock.Anything, "").Return(nil, service.ErrMissingAccessToken)
	auth.On("Authenticate", mock.Anything, "bad").Return(nil, service.ErrInvalidAccessToken)

	called := false
	next := func(w http.ResponseWriter, r *http.Request, user *model.User) *common.AppError {
		called = true
		return nil
	}

	rr := httptest.NewRecorder()
	ErrorHandlingMiddleware(mw.RequireUser(next))(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Access token not provided")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer bad")
	rr = httptest.NewRecorder()
	ErrorHandlingMiddleware(mw.RequireUser(next))(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, called)
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, tokenFromRequest(req, AccessTokenCookie))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, tokenFromRequest(req, AccessTokenCookie))

	req.Header.Set("Authorization", "Bearer header-token")
	assert.Equal(t, "header-token", tokenFromRequest(req, AccessTokenCookie))

	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "cookie-token"})
	assert.Equal(t, "cookie-token", tokenFromRequest(req, AccessTokenCookie))
	assert.Equal(t, "header-token", tokenFromRequest(req, RefreshTokenCookie))
}

package handler

import (
	"net/http"
	"strings"
	"time"

	"dishguru-api/model"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

func (c CookieConfig) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c CookieConfig) setTokens(w http.ResponseWriter, pair model.TokenPair) {
	maxAge := int(c.MaxAge.Seconds())
	http.SetCookie(w, c.cookie(AccessTokenCookie, pair.AccessToken, maxAge))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, pair.RefreshToken, maxAge))
}

func (c CookieConfig) clearTokens(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(AccessTokenCookie, "", -1))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, "", -1))
}

// tokenFromRequest returns the token in the named cookie, falling back to an
// Authorization: Bearer header.
func tokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

package model

import "github.com/golang-jwt/jwt/v5"

// TokenClaims are the claims carried by both access and refresh tokens:
// sub, iat, exp and a random jti.
type TokenClaims struct {
	jwt.RegisteredClaims
}

package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidClaims = errors.New("invalid token claims")

// TokenVerifier validates a bearer token and returns its claims
type TokenVerifier interface {
	Validate(tokenString string) (*Claims, error)
}

// Claims covers both identity-provider tokens, which carry the user in
// "sub", and locally signed tokens, which carry it in "userId".
type Claims struct {
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the user id the token was issued for.
func (c *Claims) Identity() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// ChainVerifier tries each verifier in order and returns the first success.
type ChainVerifier []TokenVerifier

func (c ChainVerifier) Validate(tokenString string) (*Claims, error) {
	err := errors.New("no token verifier configured")
	for _, v := range c {
		var claims *Claims
		if claims, err = v.Validate(tokenString); err == nil {
			return claims, nil
		}
	}
	return nil, err
}

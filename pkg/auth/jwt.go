// Package auth verifies gateway-issued tokens. The directory login itself
// lives in the gateway; this service only needs the validated user id.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/tfc-warehouse/putaway-backend/pkg/config"
	"github.com/tfc-warehouse/putaway-backend/pkg/errors"
)

// Claims represents the claims carried by a gateway token
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
}

// Verifier validates gateway-issued tokens
type Verifier struct {
	config *config.JWTConfig
}

// NewVerifier creates a new token verifier
func NewVerifier(cfg *config.JWTConfig) *Verifier {
	return &Verifier{config: cfg}
}

// Verify parses and validates a token, returning its claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Unauthorized("unexpected signing method")
		}
		return []byte(v.config.Secret), nil
	}, jwt.WithIssuer(v.config.Issuer))
	if err != nil {
		return nil, errors.Unauthorized("invalid token")
	}

	if !token.Valid || claims.UserID == "" {
		return nil, errors.Unauthorized("invalid token")
	}

	return claims, nil
}

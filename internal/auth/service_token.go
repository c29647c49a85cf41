// Package auth mints the short-lived service tokens the gateway presents
// to the analysis services. Browser sessions are opaque server-side
// records (internal/session); these tokens only cover gateway->upstream
// traffic.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ServiceClaims struct {
	Service string `json:"svc"`
	jwt.RegisteredClaims
}

type TokenMinter struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenMinter(secret string, ttl time.Duration) *TokenMinter {
	return &TokenMinter{secret: []byte(secret), ttl: ttl}
}

// Mint signs an HS256 token identifying this gateway to an upstream.
func (m *TokenMinter) Mint() (string, error) {
	now := time.Now().UTC()

	claims := ServiceClaims{
		Service: "gateway",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Subject:   "gateway",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify is used in tests and by any co-deployed Go upstream.
func (m *TokenMinter) Verify(tokenStr string) (*ServiceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &ServiceClaims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*ServiceClaims)

	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

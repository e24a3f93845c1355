// Package auth issues and checks the session tokens handed out after a
// successful zero-knowledge authentication.
package auth

import (
	"time"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the authenticated user id and
// the id of the proof session that produced the token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
	AuthID string
}

// GenerateSessionToken signs an HS256 token for the given user, valid for
// validityDuration.
func GenerateSessionToken(userID, authID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
		AuthID: authID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken validates a session token and returns the user id it
// was issued for.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}

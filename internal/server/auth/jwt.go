// Package auth implements signing and parsing of session bearer tokens.
// A token is an HS256 JWT carrying the backing session row's ID; the
// signature check alone is never sufficient for access, the session row
// must still exist.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/securepass/vault/internal/common"
)

// Claims extends the registered JWT claims with the session and user IDs.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string
	UserID    string
}

// GenerateToken signs a token binding sessionID to userID, expiring after
// validityDuration.
func GenerateToken(sessionID, userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		SessionID: sessionID,
		UserID:    userID,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies the signature and expiry of tokenString and returns
// the embedded claims. Expired tokens yield common.ErrSessionExpired; any
// other defect yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrSessionExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.SessionID == "" || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

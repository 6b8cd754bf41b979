package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// HMACClaims represents HMAC-signed token claims, used when no OIDC issuer
// is configured (development and tests).
type HMACClaims struct {
	UserID string   `json:"userId"`
	Email  string   `json:"email"`
	Name   string   `json:"name,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// ValidateHMACToken validates a token signed with the shared secret
func ValidateHMACToken(tokenString, secret string) (*HMACClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &HMACClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*HMACClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

// SignHMACToken creates an HMAC token for the given subject (dev/test use)
func SignHMACToken(secret, userID, email string, roles ...string) (string, error) {
	claims := HMACClaims{
		UserID: userID,
		Email:  email,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "tuneforge-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

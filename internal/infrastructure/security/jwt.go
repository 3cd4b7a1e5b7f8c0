package security

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier validates access tokens issued by the hosted identity
// provider. The provider signs with HS256 using the project's JWT secret;
// this service only verifies, it never issues tokens or touches passwords.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify returns the subject (user ID) of a valid token.
func (v *TokenVerifier) Verify(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			return "", errors.New("token has no subject")
		}
		return sub, nil
	}
	return "", errors.New("invalid token")
}

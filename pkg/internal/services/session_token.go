package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

// Session tokens let the admin page authenticate once with the manager
// password and drive the API with a short-lived bearer token afterwards.

type SessionClaims struct {
	jwt.RegisteredClaims
}

func sessionSecret() []byte {
	secret := viper.GetString("security.session_token_secret")
	if len(secret) == 0 {
		secret = viper.GetString("security.manager_password")
	}
	return []byte(secret)
}

func CreateSessionToken() (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "calldesk",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(12 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	tks, err := token.SignedString(sessionSecret())
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return tks, nil
}

func ValidateSessionToken(tk string) error {
	var claims SessionClaims
	token, err := jwt.ParseWithClaims(tk, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Method)
		}
		return sessionSecret(), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}

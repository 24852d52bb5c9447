package services

import (
	"testing"

	"github.com/spf13/viper"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	viper.Set("security.session_token_secret", "test-session-secret")

	tk, err := CreateSessionToken()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := ValidateSessionToken(tk); err != nil {
		t.Errorf("validate: %v", err)
	}
	if err := ValidateSessionToken(tk + "x"); err == nil {
		t.Error("tampered token passed validation")
	}
}

func TestSessionSecretFallsBackToManagerPassword(t *testing.T) {
	viper.Set("security.session_token_secret", "")
	viper.Set("security.manager_password", "sesame")

	tk, err := CreateSessionToken()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := ValidateSessionToken(tk); err != nil {
		t.Errorf("validate with fallback secret: %v", err)
	}
}

package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Minute)

	signed, err := tokens.GenerateToken("admin@demo.dev", RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := tokens.ValidateToken(signed)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Email != "admin@demo.dev" || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	signed, err := NewTokenService("secret-a", time.Minute).GenerateToken("admin@demo.dev", RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := NewTokenService("secret-b", time.Minute).ValidateToken(signed); err == nil {
		t.Fatal("expected validation failure for wrong secret")
	}
}

func TestGenerateTokenRequiresEmail(t *testing.T) {
	if _, err := NewTokenService("secret", time.Minute).GenerateToken("", RoleAdmin); err == nil {
		t.Fatal("expected error for empty email")
	}
}

func TestAdminLogin(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	admin := NewAdmin("Admin@Demo.dev", hash, NewTokenService("secret", time.Minute))

	token, err := admin.Login("admin@demo.dev", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("expected a signed token")
	}

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "admin@demo.dev", "wrong"},
		{"wrong email", "other@demo.dev", "hunter2"},
		{"empty password", "admin@demo.dev", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := admin.Login(tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAdminLoginDisabledWithoutHash(t *testing.T) {
	admin := NewAdmin("admin@demo.dev", "", NewTokenService("secret", time.Minute))
	if _, err := admin.Login("admin@demo.dev", "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers both unknown identity and bad password.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Admin authenticates the single configured administrator and issues tokens
// for the administrative endpoints.
type Admin struct {
	email        string
	passwordHash string
	tokens       *TokenService
}

// NewAdmin builds the admin authenticator. The hash is a bcrypt digest of
// the admin password, supplied via configuration.
func NewAdmin(email, passwordHash string, tokens *TokenService) *Admin {
	return &Admin{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: passwordHash,
		tokens:       tokens,
	}
}

// Login validates the credentials and returns a signed admin token.
func (a *Admin) Login(email, password string) (string, error) {
	if a.email == "" || a.passwordHash == "" {
		return "", ErrInvalidCredentials
	}
	if strings.ToLower(strings.TrimSpace(email)) != a.email {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return a.tokens.GenerateToken(a.email, RoleAdmin)
}

// HashPassword produces a bcrypt digest, used by tooling to derive the
// configured hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("auth: empty password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/column-task-api/internal/constants"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrAuthNotConfigured    = errors.New("no login account is configured")
)

// AuthService checks credentials against the single configured account.
type AuthService struct {
	username     string
	passwordHash []byte
}

// NewAuthService creates a new AuthService. passwordHash is a bcrypt hash;
// when it is empty the plaintext password is hashed once here.
func NewAuthService(username, passwordHash, password string) (*AuthService, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrAuthNotConfigured
	}

	hash := []byte(passwordHash)
	if len(hash) == 0 {
		if password == "" {
			return nil, ErrAuthNotConfigured
		}
		generated, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, ErrFailedToHashPassword
		}
		hash = generated
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid password hash: %w", err)
	}

	return &AuthService{
		username:     username,
		passwordHash: hash,
	}, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated username.
func (s *AuthService) Login(input LoginInput) (string, error) {
	usernameOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(input.Username)), []byte(s.username)) == 1
	passwordErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(input.Password))
	if !usernameOK || passwordErr != nil {
		return "", ErrInvalidCredentials
	}

	return s.username, nil
}

// Username returns the configured account name.
func (s *AuthService) Username() string {
	return s.username
}

// HashPassword produces a bcrypt hash suitable for AUTH_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if len(password) < constants.MinPasswordLength {
		return "", ErrPasswordTooShort
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hashed), nil
}

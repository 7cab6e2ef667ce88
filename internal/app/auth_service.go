package app

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"studybuddy/internal/pkg/jwtutil"
)

const adminSubject = "admin"

type AuthService struct {
	passwordHash  string
	jwtSecret     string
	jwtExpiration time.Duration
}

type TokenResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewAuthService(passwordHash, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		passwordHash:  passwordHash,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *AuthService) Enabled() bool {
	return s.jwtSecret != ""
}

// IssueToken exchanges the admin password for a signed admin token.
func (s *AuthService) IssueToken(password string) (*TokenResult, error) {
	if !s.Enabled() || s.passwordHash == "" {
		return nil, ErrAuthDisabled
	}
	if password == "" {
		return nil, ErrInvalidInput
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("compare password failed: %w", err)
	}
	return s.Mint()
}

// Mint signs an admin token without a password check, for operator tooling.
func (s *AuthService) Mint() (*TokenResult, error) {
	if !s.Enabled() {
		return nil, ErrAuthDisabled
	}
	expiresAt := time.Now().Add(s.jwtExpiration)
	token, err := jwtutil.GenerateToken(s.jwtSecret, adminSubject, jwtutil.RoleAdmin, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign token failed: %w", err)
	}
	return &TokenResult{Token: token, ExpiresAt: expiresAt}, nil
}

// HashPassword returns the bcrypt hash to configure as the admin password.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password failed: %w", err)
	}
	return string(hash), nil
}

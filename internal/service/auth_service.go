package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Johaan1835/TestMatrix/internal/models"
)

// Sessions expire after an hour; clients re-login for a fresh token.
const tokenTTL = time.Hour

// AuthService issues JWTs for valid credentials.
type AuthService struct {
	repo   UserRepository
	secret []byte
}

// NewAuthService wires the user repository and the HMAC signing secret.
func NewAuthService(repo UserRepository, secret []byte) *AuthService {
	return &AuthService{repo: repo, secret: secret}
}

// Login checks the password against the stored bcrypt hash and returns a
// signed token plus the public user fields. A missing user and a wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, models.User, error) {
	if username == "" || password == "" {
		return "", models.User{}, validationf("username and password are required")
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", models.User{}, ErrInvalidCredentials
		}
		return "", models.User{}, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", models.User{}, ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"username": user.Username,
		"role":     user.Role,
		"email":    user.Email,
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", models.User{}, fmt.Errorf("signing token: %w", err)
	}
	return token, user, nil
}

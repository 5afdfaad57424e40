package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Johaan1835/TestMatrix/internal/models"
)

// UserRepository persists accounts.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
	Insert(ctx context.Context, user models.User) (models.User, error)
	// List returns every account except the bootstrap admin.
	List(ctx context.Context) ([]models.User, error)
	ListByRole(ctx context.Context, role string) ([]models.User, error)
	Update(ctx context.Context, empID int, username, email, role string) (models.User, error)
	Delete(ctx context.Context, empID int) error
	UpdatePassword(ctx context.Context, username, passwordHash string) error
}

// Mailer delivers login credentials to newly created accounts.
type Mailer interface {
	SendCredentials(ctx context.Context, to, username, password string) error
}

// UserService owns account management: admin CRUD plus self-service
// profile and password operations.
type UserService struct {
	repo   UserRepository
	mailer Mailer
}

// NewUserService wires the user repository and mailer. A nil mailer
// disables credential emails.
func NewUserService(repo UserRepository, mailer Mailer) *UserService {
	return &UserService{repo: repo, mailer: mailer}
}

// Add creates an account with a bcrypt-hashed password and emails the
// credentials. Mail failures are logged, not fatal: the account exists
// either way and the admin can resend credentials manually.
func (s *UserService) Add(ctx context.Context, username, email, role, password string) (models.User, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" ||
		strings.TrimSpace(role) == "" || password == "" {
		return models.User{}, validationf("all fields are required")
	}
	if !models.ValidRole(role) {
		return models.User{}, validationf("role must be one of admin, write, read")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.repo.Insert(ctx, models.User{
		Username: username,
		Email:    email,
		Role:     role,
		Password: string(hash),
	})
	if err != nil {
		return models.User{}, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendCredentials(ctx, email, username, password); err != nil {
			log.Printf("credential email to %s failed: %v", email, err)
		}
	}
	return user, nil
}

// List returns every managed account (the bootstrap admin is excluded by
// the repository).
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

// Writers returns the write-role users selectable when assigning a plan.
func (s *UserService) Writers(ctx context.Context) ([]models.User, error) {
	return s.repo.ListByRole(ctx, models.RoleWrite)
}

// Update changes an account's username, email and role.
func (s *UserService) Update(ctx context.Context, empID int, username, email, role string) (models.User, error) {
	if !models.ValidRole(role) {
		return models.User{}, validationf("role must be one of admin, write, read")
	}
	return s.repo.Update(ctx, empID, username, email, role)
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, empID int) error {
	return s.repo.Delete(ctx, empID)
}

// Profile returns the public fields of one account.
func (s *UserService) Profile(ctx context.Context, username string) (models.User, error) {
	if username == "" {
		return models.User{}, validationf("username is required")
	}
	return s.repo.FindByUsername(ctx, username)
}

// ChangePassword verifies the current password before storing a new hash.
func (s *UserService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return validationf("all fields are required")
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, username, string(hash))
}

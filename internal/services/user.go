package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/blogdb/server/internal/store"
	"github.com/blogdb/server/types"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the cost used for existing password hashes.
const DefaultBcryptCost = 10

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByName(ctx context.Context, name string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// AuthService encapsulates signup and signin.
type AuthService struct {
	repo UserRepository
	cost int
}

func NewAuthService(repo UserRepository, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = DefaultBcryptCost
	}
	return &AuthService{repo: repo, cost: bcryptCost}
}

// Signup hashes the password and stores a new account.
func (s *AuthService) Signup(ctx context.Context, name, password string) (types.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		Name:         name,
		PasswordHash: string(hashed),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, ErrDuplicateName
		}
		return types.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Signin verifies the credentials. Every failure, including store errors,
// yields ErrInvalidCredentials so callers cannot tell unknown names apart.
func (s *AuthService) Signin(ctx context.Context, name, password string) (types.User, error) {
	user, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// HashPassword returns the bcrypt hash of password at the given cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rentcare/rentcare-gobackend/internal/models"
	"github.com/rentcare/rentcare-gobackend/internal/repositories"
)

type UserService struct {
	store repositories.UserStore
}

func NewUserService(store repositories.UserStore) *UserService {
	return &UserService{store: store}
}

// CreateUser hashes the plaintext password and stores the user. Role
// defaults to owner.
func (s *UserService) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.Email = strings.TrimSpace(user.Email)
	user.Username = strings.TrimSpace(user.Username)
	if (user.Email == "" && user.Username == "") || user.Password == "" {
		return nil, ErrInvalidUser
	}
	if user.Role == "" {
		user.Role = models.RoleOwner
	}
	// tenants live inside their property, so owner is the only account role
	if user.Role != models.RoleOwner {
		return nil, fmt.Errorf("%w: unsupported role %q", ErrInvalidUser, user.Role)
	}

	hash, err := HashPassword(user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash
	user.Password = ""
	user.CreatedAt = time.Now()

	if err := s.store.Insert(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("User created: ID=%s, Role=%s", user.ID, user.Role)
	return user, nil
}

func (s *UserService) UserList(ctx context.Context) ([]models.User, error) {
	return s.store.List(ctx)
}

// GetUser returns one account without its password hash.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

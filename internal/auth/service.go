package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/krabbel/backend/internal/models"
	"github.com/krabbel/backend/internal/storage"
)

// Service orchestrates credential verification and token issuance against
// the user store.
type Service struct {
	users  storage.UserStore
	tokens *TokenManager
}

// NewService constructs the authenticator.
func NewService(users storage.UserStore, tokens *TokenManager) *Service {
	return &Service{users: users, tokens: tokens}
}

// Login verifies the username/password pair and issues a token. An unknown
// username and a wrong password both return ErrInvalidCredentials. On
// success the user's last_login is updated; concurrent logins race
// harmlessly (last write wins).
func (s *Service) Login(ctx context.Context, username, password string) (string, models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", models.User{}, ErrInvalidCredentials
		}
		return "", models.User{}, fmt.Errorf("find user: %w", err)
	}
	if !CheckPassword(password, user.PasswordHash) {
		return "", models.User{}, ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", models.User{}, fmt.Errorf("generate token: %w", err)
	}
	if err := s.users.UpdateLastLogin(ctx, user.Username); err != nil {
		log.Printf("update last_login for %s: %v", user.Username, err)
	}
	return token, user, nil
}

// Register creates a new user with role USER and logs them in. Both
// uniqueness checks run before any write, so a failed registration leaves
// no user row behind.
func (s *Service) Register(ctx context.Context, username, password, email string) (string, models.User, error) {
	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return "", models.User{}, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return "", models.User{}, ErrUsernameTaken
	}
	if email != "" {
		taken, err = s.users.ExistsByEmail(ctx, email)
		if err != nil {
			return "", models.User{}, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return "", models.User{}, ErrEmailTaken
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.users.CreateUser(ctx, models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return "", models.User{}, ErrUsernameTaken
		}
		return "", models.User{}, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", models.User{}, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

// ResolveToken verifies a raw token string and resolves its subject against
// the user store. A valid signature is not enough: the subject must still
// exist, so tokens for removed users never authenticate.
func (s *Service) ResolveToken(ctx context.Context, tokenString string) (Identity, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return Identity{}, err
	}
	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, fmt.Errorf("resolve subject: %w", err)
	}
	return Identity{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

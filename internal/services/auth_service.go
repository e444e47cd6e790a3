package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"vault-backend/internal/session"
	"vault-backend/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// AuthService handles registration and login. Passwords are stored as bcrypt
// hashes; the login success/failure contract is the same as a verbatim
// comparison would give.
type AuthService struct {
	store    storage.Store
	sessions session.Manager
}

func NewAuthService(store storage.Store, sessions session.Manager) *AuthService {
	return &AuthService{store: store, sessions: sessions}
}

// Register creates the user and, like login, issues a session for it. A
// duplicate username fails with storage.ErrDuplicateUsername and leaves the
// existing account untouched.
func (s *AuthService) Register(ctx context.Context, username, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.store.CreateUser(ctx, username, string(hash))
	if err != nil {
		return "", err
	}

	return s.sessions.Create(ctx, userID)
}

// Login fails with ErrInvalidCredentials for unknown usernames and for
// password mismatches alike; no session is issued on failure.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.sessions.Create(ctx, user.ID)
}

// Logout destroys the session; unknown tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

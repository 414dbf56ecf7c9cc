package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/projectboard/service/internal/config"
)

// ErrInvalidCredentials is returned when a login fails. It deliberately does
// not distinguish a missing account from a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service contains business logic for accounts and login.
type Service struct {
	repo *Repository
	cfg  *config.Config
}

// NewService creates a new account Service.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// Register creates a new account with a bcrypt-hashed password and issues a
// JWT for the fresh session.
func (s *Service) Register(ctx context.Context, username, password, nickname string, email *string) (string, *Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	a, err := s.repo.Create(ctx, username, string(hash), nickname, email)
	if err != nil {
		return "", nil, err
	}

	token, err := s.issueToken(a)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, a, nil
}

// Login verifies credentials and issues a JWT.
func (s *Service) Login(ctx context.Context, username, password string) (string, *Account, error) {
	a, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("look up account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(a)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, a, nil
}

// GetByID returns an account by its UUID.
func (s *Service) GetByID(ctx context.Context, id string) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

// issueToken creates a signed JWT for the given account.
func (s *Service) issueToken(a *Account) (string, error) {
	claims := jwt.MapClaims{
		"sub":      a.ID,
		"username": a.Username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(30 * 24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

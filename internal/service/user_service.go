package service

import (
	"context"
	"errors"
	"strings"

	"taskhub/internal/apperr"
	dom "taskhub/internal/domain"
	"taskhub/internal/repo"
	"taskhub/internal/utils"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input past 72 bytes and x/crypto rejects it.
const maxPasswordBytes = 72

// UserService handles signup and credential checks.
type UserService struct {
	repo repo.UserRepo
	cost int
}

// NewUserService returns a new UserService hashing with bcrypt.DefaultCost.
func NewUserService(repo repo.UserRepo) *UserService {
	return &UserService{repo: repo, cost: bcrypt.DefaultCost}
}

// ValidateCredentials checks email and password; returns the user if valid.
func (s *UserService) ValidateCredentials(ctx context.Context, email, password string) (dom.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return dom.User{}, apperr.InvalidField("email", "email and password are required")
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Register creates a new user with hashed password.
func (s *UserService) Register(ctx context.Context, username, email, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return dom.User{}, apperr.InvalidField("", "username, email, and password are required")
	}
	if _, err := cleanText("username", username); err != nil {
		return dom.User{}, err
	}
	if len(password) > maxPasswordBytes {
		return dom.User{}, apperr.InvalidField("password", "password must be at most 72 bytes")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, username, email, string(hash))
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, ErrAccountTaken
		}
		return dom.User{}, err
	}
	return u, nil
}

// Get returns the account behind a session.
func (s *UserService) Get(ctx context.Context, id int64) (dom.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dom.User{}, notFound(err, "user")
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/repository"
)

const tokenPrefix = "demo-token-"

type userService struct {
	users    repository.UserRepo
	params   Argon2idParams
	observer UseCaseObserver
}

// NewUserService builds a UserService hashing passwords with params.
func NewUserService(users repository.UserRepo, params Argon2idParams, observers ...UseCaseObserver) UserService {
	return &userService{
		users:    users,
		params:   params,
		observer: useCaseObserverOrNoop(observers),
	}
}

// TokenFor returns the session token issued to a user. Tokens are not
// verified anywhere.
func TokenFor(userID string) string {
	return tokenPrefix + userID
}

func (s *userService) Register(ctx context.Context, name, email, password string) (res *AuthResult, err error) {
	fields := map[string]any{}
	defer observe(ctx, s.observer, "user.register", time.Now(), fields, &err)

	name = strings.TrimSpace(name)
	email, err = normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	hash, err := HashPassword(password, s.params)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &domain.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrEmailTaken, email)
		}
		return nil, fmt.Errorf("registering user: %w", err)
	}
	fields["user_id"] = u.ID

	return &AuthResult{Token: TokenFor(u.ID), User: u}, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (res *AuthResult, err error) {
	defer observe(ctx, s.observer, "user.login", time.Now(), nil, &err)

	email, err = normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := VerifyPassword(u.PasswordHash, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verifying password for %s: %w", u.ID, err)
	}
	return &AuthResult{Token: TokenFor(u.ID), User: u}, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	return u, err
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	return u, err
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: malformed email %q", ErrInvalidInput, email)
	}
	return email, nil
}

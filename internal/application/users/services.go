package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/bryanwahyu/lexilens/internal/application"
	domain "github.com/bryanwahyu/lexilens/internal/domain/users"
)

// PasswordHasher is implemented by auth.Hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
	VerifyNothing(password string)
}

// TokenIssuer is implemented by auth.Tokens.
type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
}

// Service implements use-cases untuk User
type Service struct {
	Repo   domain.Repository
	Hasher PasswordHasher
	Tokens TokenIssuer
	Clock  application.Clock
}

// Register creates an active user. The email is stored exactly as given;
// uniqueness is case-sensitive.
func (s *Service) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if err := validate(email, password); err != nil {
		return nil, err
	}
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		Email:          email,
		HashedPassword: hash,
		IsActive:       true,
		CreatedAt:      s.clock().Now(),
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate never tells the caller whether the email or the password was wrong.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.Hasher.VerifyNothing(password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.Hasher.Verify(u.HashedPassword, password) || !u.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	return s.Tokens.Issue(u.ID, u.Email)
}

// Get returns an active user by id; inactive users look missing.
func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.User, error) {
	return s.Repo.List(ctx)
}

// EnsureUser creates the user unless the email is already registered.
// An existing user keeps its password.
func (s *Service) EnsureUser(ctx context.Context, email, password string) (created bool, err error) {
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	if _, err := s.Register(ctx, email, password); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func validate(email, password string) error {
	if strings.TrimSpace(email) != email || email == "" {
		return fmt.Errorf("%w: email is required and must not have surrounding spaces", domain.ErrInvalidInput)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return fmt.Errorf("%w: %q is not an email address", domain.ErrInvalidInput, email)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}
	if len(password) > 72 {
		return fmt.Errorf("%w: password longer than 72 bytes", domain.ErrInvalidInput)
	}
	return nil
}

func (s *Service) clock() application.Clock {
	if s.Clock != nil {
		return s.Clock
	}
	return application.SystemClock{}
}

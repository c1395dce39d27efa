package app

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/perchdesk/perchdesk/internal/auth"
	"github.com/perchdesk/perchdesk/internal/domain"
)

type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}

type AuthService struct {
	repo   UserRepository
	issuer *auth.Issuer
}

func NewAuthService(repo UserRepository, issuer *auth.Issuer) *AuthService {
	return &AuthService{
		repo:   repo,
		issuer: issuer,
	}
}

type LoginResult struct {
	Token string
	User  domain.User
}

// Login verifies staff credentials and mints a staff token. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if email == "" || password == "" {
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		// Only a missing user folds into the credentials error.
		// Storage faults keep their own category.
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return LoginResult{}, domain.ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, domain.ErrInvalidCredentials
	}

	token, err := s.issuer.IssueStaffToken(user.ID, user.Email, user.Role)
	if err != nil {
		return LoginResult{}, err
	}
	user.PasswordHash = ""
	return LoginResult{Token: token, User: user}, nil
}

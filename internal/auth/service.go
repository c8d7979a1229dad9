package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/routedesk/routedesk/internal/platform/httpx"
)

// Service handles credential verification and token issuance.
type Service struct {
	repo   Repository
	issuer *TokenIssuer
}

// NewService constructs an auth service.
func NewService(repo Repository, issuer *TokenIssuer) *Service {
	return &Service{repo: repo, issuer: issuer}
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Login verifies the username/PIN pair and issues a token.
func (s *Service) Login(ctx context.Context, username, pin string) (*LoginResult, error) {
	user, pinHash, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid username or PIN", httpx.ErrUnauthorized)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", httpx.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(pinHash), []byte(pin)); err != nil {
		return nil, fmt.Errorf("%w: invalid username or PIN", httpx.ErrUnauthorized)
	}

	token, err := s.issuer.Issue(*user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: token, User: *user}, nil
}

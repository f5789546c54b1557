package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookcatalog/internal/platform/crypto"
)

type Service struct {
	secret   string
	tokenTTL time.Duration
	repo     UserRepository
}

func NewService(secret string, tokenTTL time.Duration, repo UserRepository) *Service {
	return &Service{secret: secret, tokenTTL: tokenTTL, repo: repo}
}

// Register creates an account and returns it along with a signed token so
// the caller is logged in immediately.
func (s *Service) Register(ctx context.Context, nu NewUser) (string, User, error) {
	hash, err := crypto.HashPassword(nu.Password)
	if err != nil {
		return "", User{}, err
	}

	u, err := s.repo.Create(ctx, User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(nu.FirstName),
		LastName:     strings.TrimSpace(nu.LastName),
		Username:     strings.TrimSpace(nu.Username),
		Email:        strings.ToLower(strings.TrimSpace(nu.Email)),
		Phone:        nu.Phone,
		Role:         nu.Role,
		PasswordHash: hash,
	})
	if err != nil {
		return "", User{}, err
	}

	token, _, err := crypto.GenerateToken(s.secret, u.ID, u.Role, s.tokenTTL)
	if err != nil {
		return "", User{}, err
	}
	return token, u, nil
}

// Login verifies the credentials and returns a signed token. A missing
// account and a wrong password both come back as ErrUnauthorized so the
// response does not leak which one it was; store faults propagate as-is.
func (s *Service) Login(ctx context.Context, email, password string) (string, User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", User{}, ErrUnauthorized
		}
		return "", User{}, err
	}
	if !crypto.VerifyPassword(u.PasswordHash, password) {
		return "", User{}, ErrUnauthorized
	}

	token, _, err := crypto.GenerateToken(s.secret, u.ID, u.Role, s.tokenTTL)
	if err != nil {
		return "", User{}, err
	}
	return token, u, nil
}

// ChangePassword swaps the stored hash after verifying the old password.
func (s *Service) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if !crypto.VerifyPassword(u.PasswordHash, oldPassword) {
		return ErrWrongPassword
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, u.ID, hash)
}

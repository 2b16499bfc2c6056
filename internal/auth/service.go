package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/recon-portal/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo      Repository
	dummyHash []byte
}

// NewService constructs a new Service. cost should match the bcrypt cost
// used when seeding the credential store.
func NewService(repo Repository, cost int) *Service {
	return &Service{repo: repo, dummyHash: dummyHash(cost)}
}

// Authenticate validates email/password credentials. Unknown emails and
// wrong passwords both yield shared.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("auth: empty credentials: %w", shared.ErrValidation)
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Burn a comparison so unknown accounts cost the same as wrong passwords.
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, shared.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth: lookup: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

func dummyHash(cost int) []byte {
	secret := make([]byte, 32)
	_, _ = rand.Read(secret)
	hash, err := bcrypt.GenerateFromPassword(secret, cost)
	if err != nil {
		hash, _ = bcrypt.GenerateFromPassword(secret, bcrypt.DefaultCost)
	}
	return hash
}

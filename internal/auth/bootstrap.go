package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/recon-portal/internal/shared"
)

// SeedCredential is the single account written by Bootstrap.
type SeedCredential struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=12,max=72"`
}

// SchemaResetter drops and recreates the credential store schema.
type SchemaResetter interface {
	Reset(ctx context.Context) error
}

// SessionPurger removes every outstanding session.
type SessionPurger interface {
	PurgeAll(ctx context.Context) (int, error)
}

// Bootstrapper wipes the credential store and seeds one account.
type Bootstrapper struct {
	schema    SchemaResetter
	store     CredentialWriter
	sessions  SessionPurger
	cost      int
	logger    *slog.Logger
	validator *validator.Validate
}

// ErrNoSessionStore is returned when Run has no way to revoke existing
// sessions. Reseeding reuses user ids, so every run must purge.
var ErrNoSessionStore = errors.New("bootstrap: session store unavailable")

// NewBootstrapper wires a Bootstrapper.
func NewBootstrapper(logger *slog.Logger, schema SchemaResetter, store CredentialWriter, sessions SessionPurger, cost int) *Bootstrapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bootstrapper{
		schema:    schema,
		store:     store,
		sessions:  sessions,
		cost:      cost,
		logger:    logger,
		validator: validator.New(),
	}
}

// Run validates the credential, resets the store, inserts it and purges
// sessions. The existing store is untouched unless every precondition holds.
func (b *Bootstrapper) Run(ctx context.Context, cred SeedCredential) (int64, error) {
	if err := b.validator.Struct(cred); err != nil {
		return 0, fmt.Errorf("bootstrap: %w: %v", shared.ErrValidation, err)
	}
	if b.sessions == nil {
		return 0, ErrNoSessionStore
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cred.Password), b.cost)
	if err != nil {
		return 0, fmt.Errorf("bootstrap: hash password: %w", err)
	}
	if err := b.schema.Reset(ctx); err != nil {
		return 0, fmt.Errorf("bootstrap: reset schema: %w", err)
	}
	id, err := b.store.ReplaceAll(ctx, cred.Email, string(hash))
	if err != nil {
		return 0, fmt.Errorf("bootstrap: seed user: %w", err)
	}
	b.logger.Info("credential store seeded", slog.Int64("user_id", id), slog.String("email", cred.Email))
	removed, err := b.sessions.PurgeAll(ctx)
	if err != nil {
		return id, fmt.Errorf("bootstrap: purge sessions: %w", err)
	}
	b.logger.Info("sessions purged", slog.Int("count", removed))
	return id, nil
}

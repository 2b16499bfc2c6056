package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/recon-portal/internal/platform/db"
	"github.com/odyssey-erp/recon-portal/internal/shared"
)

// Repository defines read access to the credential store.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// CredentialWriter replaces the credential store contents during bootstrap.
type CredentialWriter interface {
	ReplaceAll(ctx context.Context, email, passwordHash string) (int64, error)
}

// PGRepository implements Repository and CredentialWriter using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches a user by exact email match.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("auth: find by email: %w", err)
	}
	return &user, nil
}

// ReplaceAll wipes every stored credential and inserts a single user.
func (r *PGRepository) ReplaceAll(ctx context.Context, email, passwordHash string) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE users RESTART IDENTITY`); err != nil {
			return fmt.Errorf("auth: truncate users: %w", err)
		}
		err := tx.QueryRow(ctx,
			`INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id`, email, passwordHash,
		).Scan(&id)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return shared.ErrDuplicate
			}
			return fmt.Errorf("auth: insert user: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

var (
	_ Repository       = (*PGRepository)(nil)
	_ CredentialWriter = (*PGRepository)(nil)
)

package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/recon-portal/internal/auth"
	"github.com/odyssey-erp/recon-portal/internal/shared"
)

type memoryStore struct {
	calls    []string
	resets   int
	email    string
	hash     string
	purged   int
	purgeErr error
}

func (m *memoryStore) Reset(ctx context.Context) error {
	m.calls = append(m.calls, "reset")
	m.resets++
	m.email, m.hash = "", ""
	return nil
}

func (m *memoryStore) ReplaceAll(ctx context.Context, email, hash string) (int64, error) {
	m.calls = append(m.calls, "replace")
	m.email, m.hash = email, hash
	return 1, nil
}

func (m *memoryStore) PurgeAll(ctx context.Context) (int, error) {
	m.calls = append(m.calls, "purge")
	if m.purgeErr != nil {
		return 0, m.purgeErr
	}
	m.purged++
	return 2, nil
}

func (m *memoryStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if email != m.email || m.email == "" {
		return nil, shared.ErrNotFound
	}
	return &auth.User{ID: 1, Email: m.email, PasswordHash: m.hash}, nil
}

func TestBootstrapSeedsSingleCredential(t *testing.T) {
	store := &memoryStore{}
	b := auth.NewBootstrapper(nil, store, store, store, bcrypt.MinCost)

	id, err := b.Run(context.Background(), auth.SeedCredential{Email: "admin@example.com", Password: "correct horse battery"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, []string{"reset", "replace", "purge"}, store.calls)
	assert.NotEqual(t, "correct horse battery", store.hash, "only the hash is stored")

	svc := auth.NewService(store, bcrypt.MinCost)
	user, err := svc.Authenticate(context.Background(), "admin@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
}

func TestBootstrapRejectsWeakInputBeforeTouchingStore(t *testing.T) {
	cases := map[string]auth.SeedCredential{
		"short password": {Email: "admin@example.com", Password: "secret1"},
		"bad email":      {Email: "admin", Password: "correct horse battery"},
		"empty":          {},
	}
	for name, cred := range cases {
		t.Run(name, func(t *testing.T) {
			store := &memoryStore{}
			b := auth.NewBootstrapper(nil, store, store, store, bcrypt.MinCost)
			_, err := b.Run(context.Background(), cred)
			assert.ErrorIs(t, err, shared.ErrValidation)
			assert.Empty(t, store.calls)
		})
	}
}

func TestBootstrapRequiresSessionStore(t *testing.T) {
	store := &memoryStore{}
	b := auth.NewBootstrapper(nil, store, store, nil, bcrypt.MinCost)

	_, err := b.Run(context.Background(), auth.SeedCredential{Email: "admin@example.com", Password: "correct horse battery"})
	assert.ErrorIs(t, err, auth.ErrNoSessionStore)
	assert.Empty(t, store.calls, "nothing is reset when sessions cannot be revoked")
}

func TestBootstrapFailsWhenPurgeFails(t *testing.T) {
	store := &memoryStore{purgeErr: errors.New("redis: connection refused")}
	b := auth.NewBootstrapper(nil, store, store, store, bcrypt.MinCost)

	_, err := b.Run(context.Background(), auth.SeedCredential{Email: "admin@example.com", Password: "correct horse battery"})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.purgeErr)
	assert.Equal(t, []string{"reset", "replace", "purge"}, store.calls)
}

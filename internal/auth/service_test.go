package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/recon-portal/internal/auth"
	"github.com/odyssey-erp/recon-portal/internal/shared"
)

func TestAuthenticate(t *testing.T) {
	svc := auth.NewService(newStubRepo(t, "a@b.com", "secret1"), bcrypt.MinCost)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)

	_, err = svc.Authenticate(ctx, "a@b.com", "Secret1")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "A@b.com", "secret1")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials, "email match is exact")

	_, err = svc.Authenticate(ctx, "", "secret1")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestAuthenticateStoreError(t *testing.T) {
	svc := auth.NewService(&stubRepo{err: assert.AnError}, bcrypt.MinCost)

	_, err := svc.Authenticate(context.Background(), "a@b.com", "secret1")
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, shared.ErrInvalidCredentials)
}

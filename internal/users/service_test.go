package users

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/pantryshare-backend/pkg/docstore/memory"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureUserCreatesThenUpdates(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	repo := NewRepository(memory.New())
	dir, err := NewDirectory(repo, func() time.Time { return now })
	require.NoError(t, err)
	ctx := context.Background()

	created, err := dir.EnsureUser(ctx, "uid-a", " Alice@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.True(t, now.Equal(created.CreatedAt))

	now = now.Add(time.Minute)
	updated, err := dir.EnsureUser(ctx, "uid-a", "alice@new.example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", updated.Email)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	uid, err := dir.ResolveEmail(ctx, "ALICE@new.example.com")
	require.NoError(t, err)
	assert.Equal(t, "uid-a", uid)

	email, err := dir.EmailFor(ctx, "uid-a")
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", email)
}

func TestDirectoryErrors(t *testing.T) {
	dir, err := NewDirectory(NewRepository(memory.New()), nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = dir.ResolveEmail(ctx, "nobody@example.com")
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = dir.ResolveEmail(ctx, "  ")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = dir.EmailFor(ctx, "ghost")
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = dir.EnsureUser(ctx, "bad/uid", "x@example.com")
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

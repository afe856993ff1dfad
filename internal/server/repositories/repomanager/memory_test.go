package repomanager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

func TestMemoryManager_SharesState(t *testing.T) {
	ctx := context.Background()
	var m RepositoryManager = NewMemoryRepositoryManager()
	require.NoError(t, m.RunMigrations(ctx))

	u, err := m.Users().Create(ctx, &models.User{UserName: "bob", Email: "bob@example.com"})
	require.NoError(t, err)

	require.NoError(t, m.RefreshTokens().Set(ctx, u.ID, "r1"))

	err = m.WithinTx(ctx, func(ctx context.Context, ur users.Repository, rt refreshtokens.Repository) error {
		got, err := rt.Get(ctx, u.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, "r1", got)
		return rt.Clear(ctx, u.ID)
	})
	require.NoError(t, err)

	got, err := m.RefreshTokens().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, m.Close())
}

func TestMemoryManager_WithinTxPropagatesError(t *testing.T) {
	m := NewMemoryRepositoryManager()
	boom := errors.New("boom")

	err := m.WithinTx(context.Background(), func(context.Context, users.Repository, refreshtokens.Repository) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

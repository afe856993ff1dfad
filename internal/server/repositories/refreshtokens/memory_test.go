package refreshtokens

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type stubUsers map[string]bool

func (s stubUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	if !s[id] {
		return nil, common.ErrorNotFound
	}
	return &models.User{ID: id}, nil
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(stubUsers{"u1": true})

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, repo.Set(ctx, "u1", "r1"))
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "r1", got)

	require.NoError(t, repo.Clear(ctx, "u1"))
	require.NoError(t, repo.Clear(ctx, "u1"))
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryRepository_UnknownUser(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(stubUsers{})

	assert.ErrorIs(t, repo.Set(ctx, "ghost", "r"), common.ErrorNotFound)
	_, err := repo.Get(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.NoError(t, repo.Clear(ctx, "ghost"))
}

package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dressly/storefront/internal/domain"
	apperrors "github.com/dressly/storefront/pkg/errors"
)

func setupTestRedis(t *testing.T) (*SelectionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := NewSelectionRepository(client, 48*time.Hour)
	return repo, mr
}

func sampleSet() *domain.SelectionSet {
	return &domain.SelectionSet{
		Lines: []domain.SelectionLine{
			{Key: "Black|S", Color: "Black", Size: "S", Quantity: 2, UnitPrice: 8000},
		},
		PickedColor: "Black",
	}
}

func TestSelectionRepository_SaveAndGet(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "user-1", "prod-1", sampleSet()))

	got, err := repo.Get(ctx, "user-1", "prod-1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "Black|S", got.Lines[0].Key)
	assert.Equal(t, 2, got.Lines[0].Quantity)
	assert.Equal(t, "Black", got.PickedColor)
}

func TestSelectionRepository_Get_NotFound(t *testing.T) {
	repo, _ := setupTestRedis(t)

	got, err := repo.Get(context.Background(), "user-1", "prod-404")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSelectionRepository_Get_CorruptData(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("selection:user-1:prod-1", "{bad json"))

	got, err := repo.Get(context.Background(), "user-1", "prod-1")

	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal selection")
}

func TestSelectionRepository_KeysAreScopedPerOwnerAndProduct(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "user-1", "prod-1", sampleSet()))

	_, err := repo.Get(ctx, "user-2", "prod-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = repo.Get(ctx, "user-1", "prod-2")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSelectionRepository_SaveRefreshesTTL(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "user-1", "prod-1", sampleSet()))

	mr.FastForward(24 * time.Hour)
	require.NoError(t, repo.Save(ctx, "user-1", "prod-1", sampleSet()))

	assert.Equal(t, 48*time.Hour, mr.TTL("selection:user-1:prod-1"))
}

func TestSelectionRepository_Delete(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "user-1", "prod-1", sampleSet()))
	require.NoError(t, repo.Delete(ctx, "user-1", "prod-1"))

	assert.False(t, mr.Exists("selection:user-1:prod-1"))
}

func TestSelectionRepository_RoundTripPreservesRemovalMemory(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	set := &domain.SelectionSet{DefaultRemoved: true}
	data, err := json.Marshal(set)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	require.NoError(t, repo.Save(ctx, "user-1", "prod-1", set))
	got, err := repo.Get(ctx, "user-1", "prod-1")
	require.NoError(t, err)
	assert.True(t, got.DefaultRemoved)
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dressly/storefront/internal/domain"
	apperrors "github.com/dressly/storefront/pkg/errors"
)

const keyPrefix = "selection:"

// SelectionRepository implements repository.SelectionRepository using Redis.
type SelectionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSelectionRepository creates a new Redis-backed selection repository.
func NewSelectionRepository(client *redis.Client, ttl time.Duration) *SelectionRepository {
	return &SelectionRepository{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(ownerID, productID string) string {
	return keyPrefix + ownerID + ":" + productID
}

// Get retrieves a selection session from Redis.
func (r *SelectionRepository) Get(ctx context.Context, ownerID, productID string) (*domain.SelectionSet, error) {
	key := sessionKey(ownerID, productID)

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("selection", productID)
		}
		return nil, fmt.Errorf("redis get selection: %w", err)
	}

	var set domain.SelectionSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("unmarshal selection: %w", err)
	}

	return &set, nil
}

// Save persists a selection session to Redis with the configured TTL. Each
// save refreshes the TTL so an active session does not expire mid-use.
func (r *SelectionRepository) Save(ctx context.Context, ownerID, productID string, set *domain.SelectionSet) error {
	key := sessionKey(ownerID, productID)

	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set selection: %w", err)
	}

	return nil
}

// Delete removes a selection session from Redis.
func (r *SelectionRepository) Delete(ctx context.Context, ownerID, productID string) error {
	if err := r.client.Del(ctx, sessionKey(ownerID, productID)).Err(); err != nil {
		return fmt.Errorf("redis del selection: %w", err)
	}
	return nil
}

package repository

import (
	"context"

	"github.com/dressly/storefront/internal/domain"
)

// SelectionRepository persists in-progress option selections. A session is
// scoped to one owner (authenticated user or anonymous session ID) and one
// product.
type SelectionRepository interface {
	Get(ctx context.Context, ownerID, productID string) (*domain.SelectionSet, error)
	Save(ctx context.Context, ownerID, productID string, set *domain.SelectionSet) error
	Delete(ctx context.Context, ownerID, productID string) error
}

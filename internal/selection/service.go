package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dressly/storefront/internal/catalog"
	"github.com/dressly/storefront/internal/domain"
	"github.com/dressly/storefront/internal/repository"
	apperrors "github.com/dressly/storefront/pkg/errors"
)

// View is the rendered state of a product's selection session: the product
// with its resolved price, the option lists for the current pick, and the
// selected lines with aggregate totals.
type View struct {
	Product         *domain.Product        `json:"product"`
	Price           domain.PriceView       `json:"price"`
	AvailableColors []string               `json:"available_colors"`
	AvailableSizes  []string               `json:"available_sizes"`
	PickedColor     string                 `json:"picked_color,omitempty"`
	PickedSize      string                 `json:"picked_size,omitempty"`
	Lines           []domain.SelectionLine `json:"lines"`
	Totals          domain.Totals          `json:"totals"`
}

// Service applies selection operations to per-owner, per-product sessions.
// Operations that the selection state machine rejects (incomplete pick,
// duplicate line, unknown key, invalid quantity input) leave the session
// unchanged and return the current view rather than an error.
type Service struct {
	products catalog.ProductSource
	repo     repository.SelectionRepository
	logger   *slog.Logger
}

// NewService creates a selection service.
func NewService(products catalog.ProductSource, repo repository.SelectionRepository, logger *slog.Logger) *Service {
	return &Service{
		products: products,
		repo:     repo,
		logger:   logger,
	}
}

// View loads the product and the owner's selection session and renders them.
// A product without options gets its implicit default line seeded here,
// unless the owner removed it earlier in the session.
func (s *Service) View(ctx context.Context, ownerID, productID string) (*View, error) {
	product, set, err := s.load(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	cat := domain.NewVariantCatalog(product)
	price := domain.ResolvePrice(product.Price)

	before := len(set.Lines)
	set.EnsureDefault(cat, price.FinalPrice)
	if len(set.Lines) != before {
		if err := s.repo.Save(ctx, ownerID, productID, set); err != nil {
			return nil, fmt.Errorf("save selection: %w", err)
		}
	}

	return s.render(product, cat, price, set), nil
}

// Pick updates the in-progress color and/or size pick. Empty fields are left
// untouched, so a color pick and a size pick can arrive in separate requests.
func (s *Service) Pick(ctx context.Context, ownerID, productID, color, size string) (*View, error) {
	return s.mutate(ctx, ownerID, productID, func(cat domain.VariantCatalog, price domain.PriceView, set *domain.SelectionSet) bool {
		changed := false
		if color != "" {
			set.SetColor(cat, color)
			changed = true
		}
		if size != "" {
			set.SetSize(size)
			changed = true
		}
		return changed
	})
}

// AddLine commits the current pick as a new selection line.
func (s *Service) AddLine(ctx context.Context, ownerID, productID string) (*View, error) {
	return s.mutate(ctx, ownerID, productID, func(cat domain.VariantCatalog, price domain.PriceView, set *domain.SelectionSet) bool {
		added := set.Add(cat, price.FinalPrice)
		if !added {
			s.logger.DebugContext(ctx, "selection add rejected",
				slog.String("product_id", productID),
				slog.String("picked_color", set.PickedColor),
				slog.String("picked_size", set.PickedSize),
			)
		}
		return added
	})
}

// IncrementQuantity increases a line's quantity by one.
func (s *Service) IncrementQuantity(ctx context.Context, ownerID, productID, key string) (*View, error) {
	return s.mutate(ctx, ownerID, productID, func(_ domain.VariantCatalog, _ domain.PriceView, set *domain.SelectionSet) bool {
		return set.IncrementQuantity(key)
	})
}

// DecrementQuantity decreases a line's quantity by one, floored at 1.
func (s *Service) DecrementQuantity(ctx context.Context, ownerID, productID, key string) (*View, error) {
	return s.mutate(ctx, ownerID, productID, func(_ domain.VariantCatalog, _ domain.PriceView, set *domain.SelectionSet) bool {
		return set.DecrementQuantity(key)
	})
}

// SetQuantity sets a line's quantity from raw user input.
func (s *Service) SetQuantity(ctx context.Context, ownerID, productID, key, raw string) (*View, error) {
	return s.mutate(ctx, ownerID, productID, func(_ domain.VariantCatalog, _ domain.PriceView, set *domain.SelectionSet) bool {
		return set.SetQuantity(key, raw)
	})
}

// RemoveLine deletes a selection line.
func (s *Service) RemoveLine(ctx context.Context, ownerID, productID, key string) (*View, error) {
	return s.mutate(ctx, ownerID, productID, func(_ domain.VariantCatalog, _ domain.PriceView, set *domain.SelectionSet) bool {
		return set.Remove(key)
	})
}

// Current returns the stored selection set without rendering the product
// view. Used by the reconciler, which needs the raw lines.
func (s *Service) Current(ctx context.Context, ownerID, productID string) (*domain.SelectionSet, error) {
	set, err := s.repo.Get(ctx, ownerID, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.SelectionSet{}, nil
		}
		return nil, fmt.Errorf("get selection: %w", err)
	}
	return set, nil
}

// Clear discards the owner's selection session for a product. Called after a
// successful cart reconciliation.
func (s *Service) Clear(ctx context.Context, ownerID, productID string) error {
	if err := s.repo.Delete(ctx, ownerID, productID); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	return nil
}

type mutation func(cat domain.VariantCatalog, price domain.PriceView, set *domain.SelectionSet) bool

func (s *Service) mutate(ctx context.Context, ownerID, productID string, fn mutation) (*View, error) {
	product, set, err := s.load(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	cat := domain.NewVariantCatalog(product)
	price := domain.ResolvePrice(product.Price)

	before := len(set.Lines)
	set.EnsureDefault(cat, price.FinalPrice)
	seeded := len(set.Lines) != before

	if fn(cat, price, set) || seeded {
		if err := s.repo.Save(ctx, ownerID, productID, set); err != nil {
			return nil, fmt.Errorf("save selection: %w", err)
		}
	}

	return s.render(product, cat, price, set), nil
}

func (s *Service) load(ctx context.Context, ownerID, productID string) (*domain.Product, *domain.SelectionSet, error) {
	if ownerID == "" {
		return nil, nil, apperrors.InvalidInput("owner id is required")
	}
	if productID == "" {
		return nil, nil, apperrors.InvalidInput("product id is required")
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, nil, fmt.Errorf("get product: %w", err)
	}

	set, err := s.repo.Get(ctx, ownerID, productID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("get selection: %w", err)
		}
		set = &domain.SelectionSet{}
	}

	return product, set, nil
}

func (s *Service) render(product *domain.Product, cat domain.VariantCatalog, price domain.PriceView, set *domain.SelectionSet) *View {
	lines := set.Lines
	if lines == nil {
		lines = []domain.SelectionLine{}
	}
	return &View{
		Product:         product,
		Price:           price,
		AvailableColors: cat.AvailableColors(),
		AvailableSizes:  cat.SizesForColor(set.PickedColor),
		PickedColor:     set.PickedColor,
		PickedSize:      set.PickedSize,
		Lines:           lines,
		Totals:          set.Totals(),
	}
}

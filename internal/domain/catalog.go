package domain

// VariantCatalog is an immutable view over a product's variant list. It
// answers option-availability queries without mutating product data; all
// methods are pure and deterministic for a fixed product.
type VariantCatalog struct {
	product *Product
}

// NewVariantCatalog creates a catalog view over the given product.
func NewVariantCatalog(p *Product) VariantCatalog {
	return VariantCatalog{product: p}
}

// AvailableColors returns the distinct colors across all variants in
// first-seen order. Products without a variant list fall back to their
// legacy flat color list.
func (c VariantCatalog) AvailableColors() []string {
	if len(c.product.Variants) == 0 {
		return c.product.AvailableColors
	}

	seen := make(map[string]struct{}, len(c.product.Variants))
	colors := make([]string, 0, len(c.product.Variants))
	for _, v := range c.product.Variants {
		if _, ok := seen[v.Color]; ok {
			continue
		}
		seen[v.Color] = struct{}{}
		colors = append(colors, v.Color)
	}
	return colors
}

// SizesForColor returns the distinct sizes among variants whose color matches,
// in first-seen order. Products without a variant list return the legacy flat
// size list regardless of color.
func (c VariantCatalog) SizesForColor(color string) []string {
	if len(c.product.Variants) == 0 {
		return c.product.AvailableSizes
	}

	seen := make(map[string]struct{})
	var sizes []string
	for _, v := range c.product.Variants {
		if v.Color != color {
			continue
		}
		if _, ok := seen[v.Size]; ok {
			continue
		}
		seen[v.Size] = struct{}{}
		sizes = append(sizes, v.Size)
	}
	return sizes
}

// VariantExists reports whether a variant with the exact (color, size) pair
// exists. Products without a variant list have no combination constraint, so
// it always returns true for them.
func (c VariantCatalog) VariantExists(color, size string) bool {
	if len(c.product.Variants) == 0 {
		return true
	}

	for _, v := range c.product.Variants {
		if v.Color == color && v.Size == size {
			return true
		}
	}
	return false
}

// HasColorOptions reports whether the product exposes a color dimension,
// either through variants or the legacy flat list.
func (c VariantCatalog) HasColorOptions() bool {
	for _, v := range c.product.Variants {
		if v.Color != "" {
			return true
		}
	}
	return len(c.product.AvailableColors) > 0
}

// HasSizeOptions reports whether the product exposes a size dimension.
func (c VariantCatalog) HasSizeOptions() bool {
	for _, v := range c.product.Variants {
		if v.Size != "" {
			return true
		}
	}
	return len(c.product.AvailableSizes) > 0
}

// OptionLess reports whether the product has no color and no size dimension
// at all. Such products are treated as a single implicit default variant.
func (c VariantCatalog) OptionLess() bool {
	return !c.HasColorOptions() && !c.HasSizeOptions()
}

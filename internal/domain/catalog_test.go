package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func variantProduct() *Product {
	return &Product{
		ID:   "prod-1",
		Name: "Boxy Tee",
		Variants: []Variant{
			{Color: "Black", Size: "S", Stock: 3},
			{Color: "Black", Size: "M", Stock: 0},
			{Color: "White", Size: "M", Stock: 5},
			{Color: "White", Size: "L", Stock: 2},
			{Color: "Black", Size: "S", Stock: 1}, // duplicate pair must not duplicate output
		},
	}
}

// ============================================================================
// AvailableColors
// ============================================================================

func TestAvailableColors_FirstSeenOrder(t *testing.T) {
	c := NewVariantCatalog(variantProduct())
	assert.Equal(t, []string{"Black", "White"}, c.AvailableColors())
}

func TestAvailableColors_LegacyFallback(t *testing.T) {
	p := &Product{AvailableColors: []string{"Red", "Blue"}}
	c := NewVariantCatalog(p)
	assert.Equal(t, []string{"Red", "Blue"}, c.AvailableColors())
}

func TestAvailableColors_NoOptions(t *testing.T) {
	c := NewVariantCatalog(&Product{})
	assert.Empty(t, c.AvailableColors())
}

// ============================================================================
// SizesForColor
// ============================================================================

func TestSizesForColor_DistinctFirstSeen(t *testing.T) {
	c := NewVariantCatalog(variantProduct())
	assert.Equal(t, []string{"S", "M"}, c.SizesForColor("Black"))
	assert.Equal(t, []string{"M", "L"}, c.SizesForColor("White"))
}

func TestSizesForColor_UnknownColor(t *testing.T) {
	c := NewVariantCatalog(variantProduct())
	assert.Empty(t, c.SizesForColor("Green"))
}

func TestSizesForColor_LegacyIgnoresColor(t *testing.T) {
	p := &Product{AvailableSizes: []string{"S", "M", "L"}}
	c := NewVariantCatalog(p)
	assert.Equal(t, []string{"S", "M", "L"}, c.SizesForColor("anything"))
	assert.Equal(t, []string{"S", "M", "L"}, c.SizesForColor(""))
}

// ============================================================================
// VariantExists
// ============================================================================

func TestVariantExists_ExactPair(t *testing.T) {
	c := NewVariantCatalog(variantProduct())

	assert.True(t, c.VariantExists("Black", "S"))
	assert.True(t, c.VariantExists("White", "L"))

	// Valid color, valid size elsewhere, but no such pair.
	assert.False(t, c.VariantExists("Black", "L"))
	assert.False(t, c.VariantExists("Green", "S"))
}

func TestVariantExists_NoVariantList(t *testing.T) {
	c := NewVariantCatalog(&Product{AvailableColors: []string{"Red"}})
	assert.True(t, c.VariantExists("Red", "XL"))
	assert.True(t, c.VariantExists("", ""))
}

// ============================================================================
// Option dimensions
// ============================================================================

func TestOptionLess(t *testing.T) {
	assert.True(t, NewVariantCatalog(&Product{}).OptionLess())
	assert.False(t, NewVariantCatalog(variantProduct()).OptionLess())
	assert.False(t, NewVariantCatalog(&Product{AvailableSizes: []string{"M"}}).OptionLess())
}

func TestHasColorOptions_VariantsWithoutColor(t *testing.T) {
	p := &Product{Variants: []Variant{{Size: "M", Stock: 1}}}
	c := NewVariantCatalog(p)
	assert.False(t, c.HasColorOptions())
	assert.True(t, c.HasSizeOptions())
}

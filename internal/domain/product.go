package domain

// Product status tags.
const (
	ProductTagNew  = "new"
	ProductTagSale = "sale"
	ProductTagBest = "best"
)

// Product is the catalog record backing a product detail view. It is loaded
// once per visit and treated as read-only for the duration of that visit.
type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *PriceDescriptor `json:"price,omitempty"`
	Variants    []Variant        `json:"variants,omitempty"`

	// Legacy flat option lists, used only when the product carries no
	// variant list.
	AvailableColors []string `json:"available_colors,omitempty"`
	AvailableSizes  []string `json:"available_sizes,omitempty"`

	Tags []string `json:"tags,omitempty"`
}

// Variant is a concrete purchasable (color, size) combination with its own
// stock count. Within a product, (color, size) pairs are unique.
type Variant struct {
	Color    string `json:"color"`
	Size     string `json:"size"`
	Stock    int    `json:"stock"`
	SKU      string `json:"sku,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// PriceDescriptor carries a product's pricing inputs in cents. At most one of
// DiscountedPrice or DiscountPercentage is authoritative; when both are
// absent no discount applies.
type PriceDescriptor struct {
	OriginalPrice      int64  `json:"original_price"`
	DiscountedPrice    *int64 `json:"discounted_price,omitempty"`
	DiscountPercentage *int   `json:"discount_percentage,omitempty"`
}

// HasTag reports whether the product carries the given status tag.
func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

package domain

import "math"

// PriceView is the single authoritative pricing view for a product, derived
// once from its price descriptor. All amounts are in cents.
type PriceView struct {
	Original       int64 `json:"original"`
	Discounted     int64 `json:"discounted"`
	DiscountAmount int64 `json:"discount_amount"`
	Percentage     int   `json:"percentage"`
	FinalPrice     int64 `json:"final_price"`
	HasDiscount    bool  `json:"has_discount"`
}

// ResolvePrice derives the pricing view from a descriptor. A nil descriptor
// resolves to all-zero, no-discount values.
//
// When the descriptor carries an explicit discount percentage and no
// discounted price, the discounted price is derived from it. An explicit
// percentage is reported verbatim, without cross-validation against the
// discounted price.
func ResolvePrice(d *PriceDescriptor) PriceView {
	if d == nil {
		return PriceView{}
	}

	view := PriceView{Original: d.OriginalPrice}

	discounted := d.DiscountedPrice
	if discounted == nil && d.DiscountPercentage != nil && d.OriginalPrice > 0 {
		derived := d.OriginalPrice - int64(math.Round(float64(d.OriginalPrice)*float64(*d.DiscountPercentage)/100))
		discounted = &derived
	}

	if discounted != nil {
		view.Discounted = *discounted
		view.DiscountAmount = d.OriginalPrice - *discounted
		if view.DiscountAmount < 0 {
			view.DiscountAmount = 0
		}
		view.HasDiscount = d.OriginalPrice > 0
		view.FinalPrice = *discounted
	} else {
		view.FinalPrice = d.OriginalPrice
	}

	switch {
	case d.DiscountPercentage != nil:
		view.Percentage = *d.DiscountPercentage
	case d.OriginalPrice > 0:
		view.Percentage = int(math.Round(float64(view.DiscountAmount) / float64(d.OriginalPrice) * 100))
	}

	return view
}

// LineTotal is the price of a single selection line: the snapshotted unit
// price times the quantity.
func LineTotal(line SelectionLine) int64 {
	return line.UnitPrice * int64(line.Quantity)
}

// Totals is the aggregate over a set of selection lines.
type Totals struct {
	TotalQuantity int   `json:"total_quantity"`
	TotalPrice    int64 `json:"total_price"`
}

// Aggregate sums quantities and line totals over the given lines.
func Aggregate(lines []SelectionLine) Totals {
	var t Totals
	for _, line := range lines {
		t.TotalQuantity += line.Quantity
		t.TotalPrice += LineTotal(line)
	}
	return t
}

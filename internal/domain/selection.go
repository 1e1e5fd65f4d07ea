package domain

import "strconv"

// DefaultKey is the selection key used for option-less products, which carry
// a single implicit default line.
const DefaultKey = "DEFAULT"

// noOptionPart is the sentinel used in a selection key for a dimension the
// product does not have.
const noOptionPart = "-"

// SelectionKey derives the unique key for a (color, size) choice. Both parts
// empty collapses to DefaultKey.
func SelectionKey(color, size string) string {
	if color == "" && size == "" {
		return DefaultKey
	}
	colorPart := color
	if colorPart == "" {
		colorPart = noOptionPart
	}
	sizePart := size
	if sizePart == "" {
		sizePart = noOptionPart
	}
	return colorPart + "|" + sizePart
}

// SelectionLine is one option line the user intends to purchase. UnitPrice is
// a snapshot of the resolved final price at selection time; later price
// changes do not retroactively alter already-selected lines.
type SelectionLine struct {
	Key       string `json:"key"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// SelectionSet holds the option lines chosen during a single product-view
// session, plus the in-progress pick that has not been committed yet. Lines
// are committed by an explicit Add; completing a pick alone never creates a
// line.
//
// Invariants: every line's key is unique within the set, and every line's
// quantity is at least 1.
type SelectionSet struct {
	Lines       []SelectionLine `json:"lines"`
	PickedColor string          `json:"picked_color,omitempty"`
	PickedSize  string          `json:"picked_size,omitempty"`

	// DefaultRemoved remembers that the user deleted the auto-seeded default
	// line, so it is not resurrected on later renders of the same session.
	DefaultRemoved bool `json:"default_removed,omitempty"`
}

// SetColor updates the in-progress color pick. If the already-picked size is
// not valid for the new color, the size pick is cleared.
func (s *SelectionSet) SetColor(catalog VariantCatalog, color string) {
	s.PickedColor = color

	if s.PickedSize == "" {
		return
	}
	for _, size := range catalog.SizesForColor(color) {
		if size == s.PickedSize {
			return
		}
	}
	s.PickedSize = ""
}

// SetSize updates the in-progress size pick.
func (s *SelectionSet) SetSize(size string) {
	s.PickedSize = size
}

// Add commits the current pick as a new line with quantity 1 and the given
// unit price snapshot. It reports false, leaving the set unchanged, when the
// pick is incomplete for the product's option dimensions, when the derived
// key already exists, or when the product has both dimensions and the picked
// combination does not exist in the catalog.
func (s *SelectionSet) Add(catalog VariantCatalog, unitPrice int64) bool {
	if catalog.HasColorOptions() && s.PickedColor == "" {
		return false
	}
	if catalog.HasSizeOptions() && s.PickedSize == "" {
		return false
	}
	if catalog.HasColorOptions() && catalog.HasSizeOptions() &&
		!catalog.VariantExists(s.PickedColor, s.PickedSize) {
		return false
	}

	key := SelectionKey(s.PickedColor, s.PickedSize)
	if s.findLine(key) >= 0 {
		return false
	}

	s.Lines = append(s.Lines, SelectionLine{
		Key:       key,
		Color:     s.PickedColor,
		Size:      s.PickedSize,
		Quantity:  1,
		UnitPrice: unitPrice,
	})
	return true
}

// EnsureDefault seeds the single implicit line for an option-less product.
// It does nothing when the product has options, when the line already
// exists, or when the user removed the default line earlier in this session.
func (s *SelectionSet) EnsureDefault(catalog VariantCatalog, unitPrice int64) {
	if !catalog.OptionLess() || s.DefaultRemoved || s.findLine(DefaultKey) >= 0 {
		return
	}
	s.Lines = append(s.Lines, SelectionLine{
		Key:       DefaultKey,
		Quantity:  1,
		UnitPrice: unitPrice,
	})
}

// IncrementQuantity increases a line's quantity by one. Reports false when
// the key does not exist.
func (s *SelectionSet) IncrementQuantity(key string) bool {
	i := s.findLine(key)
	if i < 0 {
		return false
	}
	s.Lines[i].Quantity++
	return true
}

// DecrementQuantity decreases a line's quantity by one, floored at 1. A line
// already at quantity 1 is left unchanged, never removed.
func (s *SelectionSet) DecrementQuantity(key string) bool {
	i := s.findLine(key)
	if i < 0 {
		return false
	}
	if s.Lines[i].Quantity > 1 {
		s.Lines[i].Quantity--
	}
	return true
}

// SetQuantity sets a line's quantity from raw user input. Input that does not
// parse as a positive integer is ignored and the line is left unchanged.
func (s *SelectionSet) SetQuantity(key, raw string) bool {
	i := s.findLine(key)
	if i < 0 {
		return false
	}
	qty, err := strconv.Atoi(raw)
	if err != nil || qty < 1 {
		return false
	}
	s.Lines[i].Quantity = qty
	return true
}

// Remove deletes the line unconditionally. Removing the default line is
// remembered so EnsureDefault does not resurrect it within this session.
func (s *SelectionSet) Remove(key string) bool {
	i := s.findLine(key)
	if i < 0 {
		return false
	}
	s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
	if key == DefaultKey {
		s.DefaultRemoved = true
	}
	return true
}

// Totals returns the aggregate quantity and price over all lines.
func (s *SelectionSet) Totals() Totals {
	return Aggregate(s.Lines)
}

func (s *SelectionSet) findLine(key string) int {
	for i := range s.Lines {
		if s.Lines[i].Key == key {
			return i
		}
	}
	return -1
}

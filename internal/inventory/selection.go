package inventory

import "strings"

// Selection carries the variant attributes a customer picked for an order line.
// Storefronts send placeholder values when a product has no real choice on an
// axis, so normalization strips those before variant resolution.
type Selection struct {
	Color string
	Size  string
}

var placeholderSizes = map[string]struct{}{
	"one size": {},
	"onesize":  {},
}

// NormalizedColor returns the effective color choice, empty when unselected.
func (s Selection) NormalizedColor() string {
	color := strings.TrimSpace(s.Color)
	if strings.EqualFold(color, "default") {
		return ""
	}
	return color
}

// NormalizedSize returns the effective size choice, empty when unselected.
func (s Selection) NormalizedSize() string {
	size := strings.TrimSpace(s.Size)
	if _, ok := placeholderSizes[strings.ToLower(size)]; ok {
		return ""
	}
	return size
}

// HasColor reports whether a real color was selected.
func (s Selection) HasColor() bool {
	return s.NormalizedColor() != ""
}

// HasSize reports whether a real size was selected.
func (s Selection) HasSize() bool {
	return s.NormalizedSize() != ""
}

// IsEmpty reports whether the selection names no variant attributes at all.
func (s Selection) IsEmpty() bool {
	return !s.HasColor() && !s.HasSize()
}

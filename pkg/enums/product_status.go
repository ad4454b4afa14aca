package enums

import "fmt"

// ProductStatus tracks a listing from submission through retirement.
type ProductStatus string

const (
	ProductStatusPending      ProductStatus = "pending"
	ProductStatusApproved     ProductStatus = "approved"
	ProductStatusRejected     ProductStatus = "rejected"
	ProductStatusAvailable    ProductStatus = "available"
	ProductStatusOutOfStock   ProductStatus = "out_of_stock"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

var validProductStatuses = []ProductStatus{
	ProductStatusPending,
	ProductStatusApproved,
	ProductStatusRejected,
	ProductStatusAvailable,
	ProductStatusOutOfStock,
	ProductStatusDiscontinued,
}

// String implements fmt.Stringer.
func (s ProductStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProductStatus.
func (s ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductStatus converts raw input into a ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	for _, candidate := range validProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product status %q", value)
}

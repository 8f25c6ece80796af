package catalog

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/xenking/stock-keeper/internal/domain/product"
)

// SortCriterion enumerates the supported orderings.
type SortCriterion int

const (
	// SortByName orders by name A-Z, ignoring case.
	SortByName SortCriterion = iota + 1
	// SortByPrice orders by unit price, cheapest first.
	SortByPrice
	// SortByQuantity orders by quantity, largest first.
	SortByQuantity
	// SortByCategory orders by category A-Z, ignoring case.
	SortByCategory
)

func (s SortCriterion) String() string {
	switch s {
	case SortByName:
		return "name (A-Z)"
	case SortByPrice:
		return "price (lowest first)"
	case SortByQuantity:
		return "quantity (highest first)"
	case SortByCategory:
		return "category (A-Z)"
	default:
		return "SortCriterion(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseSortCriterion maps a menu number (1-4) to a SortCriterion.
func ParseSortCriterion(n int) (SortCriterion, error) {
	s := SortCriterion(n)
	if s < SortByName || s > SortByCategory {
		return 0, &ValidationError{Field: "sort criterion", Reason: "must be between 1 and 4"}
	}
	return s, nil
}

// Sort reorders the catalog in place. The sort is stable: products that
// compare equal keep their relative order.
func (c *Catalog) Sort(criterion SortCriterion) error {
	var compare func(a, b product.Product) int
	switch criterion {
	case SortByName:
		compare = func(a, b product.Product) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	case SortByPrice:
		compare = func(a, b product.Product) int {
			return a.Price.Cmp(b.Price)
		}
	case SortByQuantity:
		compare = func(a, b product.Product) int {
			return cmp.Compare(b.Quantity, a.Quantity)
		}
	case SortByCategory:
		compare = func(a, b product.Product) int {
			return strings.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
		}
	default:
		return &ValidationError{Field: "sort criterion", Reason: "unknown criterion " + criterion.String()}
	}

	slices.SortStableFunc(c.products, compare)
	c.dirty = true
	return nil
}

package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/stock-keeper/internal/domain/product"
)

// Summary is the stock report computed over the whole catalog.
//
// The extremum fields are nil when the catalog is empty. Ties go to the
// product that comes first in the current order.
type Summary struct {
	Count         int
	TotalQuantity int
	TotalValue    decimal.Decimal
	MostExpensive *product.Product
	Cheapest      *product.Product
	MostStocked   *product.Product
	LowStock      []product.Product
	Threshold     int
	LastUpdated   time.Time
}

// Empty reports whether the summary covers no products.
func (s Summary) Empty() bool {
	return s.Count == 0
}

// Report computes totals, extremes and the low-stock list.
func (c *Catalog) Report() Summary {
	s := Summary{
		TotalValue:  decimal.Zero,
		Threshold:   c.lowStock,
		LastUpdated: c.lastUpdated,
	}
	if len(c.products) == 0 {
		return s
	}

	mostExpensive, cheapest, mostStocked := c.products[0], c.products[0], c.products[0]
	for _, p := range c.products {
		s.Count++
		s.TotalQuantity += p.Quantity
		s.TotalValue = s.TotalValue.Add(p.Value())

		if p.Price.GreaterThan(mostExpensive.Price) {
			mostExpensive = p
		}
		if p.Price.LessThan(cheapest.Price) {
			cheapest = p
		}
		if p.Quantity > mostStocked.Quantity {
			mostStocked = p
		}
		if p.Quantity < c.lowStock {
			s.LowStock = append(s.LowStock, p)
		}
	}

	s.MostExpensive = &mostExpensive
	s.Cheapest = &cheapest
	s.MostStocked = &mostStocked
	return s
}

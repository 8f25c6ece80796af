package product

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a single inventory entry.
type Product struct {
	ID           int
	Name         string
	Price        decimal.Decimal
	Quantity     int
	Category     string
	RegisteredAt time.Time
}

// Value returns the stock value of the entry: unit price times quantity.
func (p Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// Document is the unit of persistence: the full product list plus the time of
// the last successful save.
type Document struct {
	Products    []Product
	LastUpdated time.Time
}

// NewDocument returns an empty document stamped with now.
func NewDocument(now time.Time) Document {
	return Document{
		Products:    []Product{},
		LastUpdated: now,
	}
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	products := make([]Product, len(d.Products))
	copy(products, d.Products)
	return Document{
		Products:    products,
		LastUpdated: d.LastUpdated,
	}
}

// Repository loads and stores the whole product document.
//
// Load never fails: a missing or unreadable document yields an empty one.
// Save stamps LastUpdated before writing.
type Repository interface {
	Load(ctx context.Context) Document
	Save(ctx context.Context, doc *Document) error
}

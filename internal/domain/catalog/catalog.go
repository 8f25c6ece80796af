// Package catalog holds the in-memory product list and every query and
// mutation the inventory supports.
//
// A Catalog is owned by a single caller and is not safe for concurrent use.
package catalog

import (
	"slices"
	"strings"
	"time"

	"github.com/xenking/stock-keeper/internal/domain/product"
)

// Defaults for the configurable catalog constants.
const (
	DefaultCategory          = "uncategorized"
	DefaultLowStockThreshold = 10
	DefaultClearWord         = "CLEAR"
)

// Option configures a Catalog.
type Option func(*Catalog)

// WithDefaultCategory sets the category assigned when none is given.
func WithDefaultCategory(category string) Option {
	return func(c *Catalog) {
		if category = strings.TrimSpace(category); category != "" {
			c.defaultCategory = category
		}
	}
}

// WithLowStockThreshold sets the quantity below which a product is reported
// as low on stock.
func WithLowStockThreshold(threshold int) Option {
	return func(c *Catalog) {
		c.lowStock = threshold
	}
}

// WithClearWord sets the literal that must be typed to confirm Clear.
func WithClearWord(word string) Option {
	return func(c *Catalog) {
		if word = strings.TrimSpace(word); word != "" {
			c.clearWord = word
		}
	}
}

// WithMonotonicIDs makes new ids max(existing)+1 instead of count+1, so ids
// are never reused after a removal.
func WithMonotonicIDs(enabled bool) Option {
	return func(c *Catalog) {
		c.monotonicIDs = enabled
	}
}

// WithNow overrides the clock used for registration and clear timestamps.
func WithNow(now func() time.Time) Option {
	return func(c *Catalog) {
		c.now = now
	}
}

// Catalog is the ordered product list. Insertion order is kept until Sort is
// called.
type Catalog struct {
	products    []product.Product
	lastUpdated time.Time
	dirty       bool
	names       *nameIndex

	defaultCategory string
	lowStock        int
	clearWord       string
	monotonicIDs    bool
	now             func() time.Time
}

// New creates a Catalog holding a copy of the products in doc.
func New(doc product.Document, opts ...Option) *Catalog {
	c := &Catalog{
		defaultCategory: DefaultCategory,
		lowStock:        DefaultLowStockThreshold,
		clearWord:       DefaultClearWord,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.replace(doc)
	return c
}

// AddRequest holds the fields of a new product. Price is the text typed by
// the user.
type AddRequest struct {
	Name     string
	Price    string
	Quantity int
	Category string
}

// UpdateRequest selects a product by Name and carries the new field values as
// typed by the user. Blank fields are left unchanged.
type UpdateRequest struct {
	Name     string
	Price    string
	Quantity string
	Category string
}

// Add validates req and appends a new product.
func (c *Catalog) Add(req AddRequest) (product.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return product.Product{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if c.indexOf(name) >= 0 {
		return product.Product{}, &DuplicateError{Name: name}
	}

	price, err := ParsePrice(req.Price)
	if err != nil {
		return product.Product{}, err
	}
	if err := checkQuantity(req.Quantity); err != nil {
		return product.Product{}, err
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = c.defaultCategory
	}

	p := product.Product{
		ID:           c.nextID(),
		Name:         name,
		Price:        price,
		Quantity:     req.Quantity,
		Category:     category,
		RegisteredAt: c.now(),
	}
	c.products = append(c.products, p)

	if c.names.full() {
		c.names.reset(c.products)
	} else {
		c.names.add(name)
	}
	c.dirty = true

	return p, nil
}

// Find returns the first product whose name matches, ignoring case.
func (c *Catalog) Find(name string) (product.Product, error) {
	i, err := c.lookup(name)
	if err != nil {
		return product.Product{}, err
	}
	return c.products[i], nil
}

// Update applies the non-blank fields of req to the named product. Every
// supplied field is validated before any is applied.
func (c *Catalog) Update(req UpdateRequest) (product.Product, error) {
	i, err := c.lookup(req.Name)
	if err != nil {
		return product.Product{}, err
	}

	updated := c.products[i]
	changed := false

	if strings.TrimSpace(req.Price) != "" {
		price, err := ParsePrice(req.Price)
		if err != nil {
			return product.Product{}, err
		}
		updated.Price = price
		changed = true
	}
	if strings.TrimSpace(req.Quantity) != "" {
		qty, err := ParseQuantity(req.Quantity)
		if err != nil {
			return product.Product{}, err
		}
		updated.Quantity = qty
		changed = true
	}
	if category := strings.TrimSpace(req.Category); category != "" {
		updated.Category = category
		changed = true
	}

	if changed {
		c.products[i] = updated
		c.dirty = true
	}
	return updated, nil
}

// Remove deletes the first product matching name. The deletion only happens
// when confirmation is an affirmative answer.
func (c *Catalog) Remove(name, confirmation string) (product.Product, error) {
	i, err := c.lookup(name)
	if err != nil {
		return product.Product{}, err
	}
	if !IsAffirmative(confirmation) {
		return product.Product{}, &CancelledError{Step: StepConfirm}
	}

	removed := c.products[i]
	c.products = slices.Delete(c.products, i, i+1)
	c.dirty = true

	return removed, nil
}

// List returns every product in the current order.
func (c *Catalog) List() []product.Product {
	return slices.Clone(c.products)
}

// ListByCategory returns the products whose category equals category exactly.
func (c *Catalog) ListByCategory(category string) []product.Product {
	var out []product.Product
	for _, p := range c.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns the distinct categories in use, sorted.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{}, len(c.products))
	var out []string
	for _, p := range c.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	slices.Sort(out)
	return out
}

// Clear removes every product. It needs two confirmations: an affirmative
// answer and then the clear word. It returns the number of removed products.
func (c *Catalog) Clear(confirmation, word string) (int, error) {
	if !IsAffirmative(confirmation) {
		return 0, &CancelledError{Step: StepConfirm}
	}
	if !strings.EqualFold(strings.TrimSpace(word), c.clearWord) {
		return 0, &CancelledError{Step: StepClearWord}
	}

	removed := len(c.products)
	c.products = []product.Product{}
	c.lastUpdated = c.now()
	c.names.reset(c.products)
	c.dirty = true

	return removed, nil
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// LastUpdated returns the time of the last save or clear.
func (c *Catalog) LastUpdated() time.Time {
	return c.lastUpdated
}

// Dirty reports whether the catalog changed since it was loaded or saved.
func (c *Catalog) Dirty() bool {
	return c.dirty
}

// ClearWord returns the literal Clear expects as its second confirmation.
func (c *Catalog) ClearWord() string {
	return c.clearWord
}

// LowStockThreshold returns the quantity below which stock is reported as low.
func (c *Catalog) LowStockThreshold() int {
	return c.lowStock
}

// Snapshot returns a copy of the catalog as a persistable document.
func (c *Catalog) Snapshot() product.Document {
	return product.Document{
		Products:    c.products,
		LastUpdated: c.lastUpdated,
	}.Clone()
}

// replace swaps the catalog contents for doc and resets the dirty flag.
func (c *Catalog) replace(doc product.Document) {
	c.products = slices.Clone(doc.Products)
	if c.products == nil {
		c.products = []product.Product{}
	}
	c.lastUpdated = doc.LastUpdated
	c.names = newNameIndex(c.products)
	c.dirty = false
}

// lookup returns the index of the product matching name.
func (c *Catalog) lookup(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return -1, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	i := c.indexOf(name)
	if i < 0 {
		return -1, &NotFoundError{Name: name}
	}
	return i, nil
}

func (c *Catalog) indexOf(name string) int {
	if !c.names.mayContain(name) {
		return -1
	}
	key := NameKey(name)
	return slices.IndexFunc(c.products, func(p product.Product) bool {
		return NameKey(p.Name) == key
	})
}

func (c *Catalog) nextID() int {
	if !c.monotonicIDs {
		return len(c.products) + 1
	}
	maxID := 0
	for _, p := range c.products {
		maxID = max(maxID, p.ID)
	}
	return maxID + 1
}

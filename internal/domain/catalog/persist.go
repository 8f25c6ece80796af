package catalog

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/stock-keeper/internal/domain/product"
)

// Save writes the whole catalog through repo. On success the catalog adopts
// the timestamp stamped by the repository and is no longer dirty; on failure
// nothing changes.
func (c *Catalog) Save(ctx context.Context, repo product.Repository) error {
	doc := c.Snapshot()
	if err := repo.Save(ctx, &doc); err != nil {
		return errors.Wrap(err, "save catalog")
	}

	c.lastUpdated = doc.LastUpdated
	c.dirty = false
	return nil
}

// Reload discards the in-memory products and replaces them with the
// document held by repo.
func (c *Catalog) Reload(ctx context.Context, repo product.Repository) {
	c.replace(repo.Load(ctx))
}

package catalog

import (
	"strings"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/xenking/stock-keeper/internal/domain/product"
)

const (
	minIndexCapacity = 1024
	indexFPR         = 0.01
)

// nameIndex is a bloom filter over lowered product names. A negative answer
// means the name is definitely absent; a positive one needs a scan.
// Removals leave stale bits behind, which only costs an extra scan.
type nameIndex struct {
	filter   *bloom.BloomFilter
	capacity uint
	size     uint
}

func newNameIndex(products []product.Product) *nameIndex {
	ix := &nameIndex{}
	ix.reset(products)
	return ix
}

// reset rebuilds the filter from scratch, sized for twice the current
// product count.
func (ix *nameIndex) reset(products []product.Product) {
	capacity := uint(2 * len(products))
	if capacity < minIndexCapacity {
		capacity = minIndexCapacity
	}
	ix.filter = bloom.NewWithEstimates(capacity, indexFPR)
	ix.capacity = capacity
	ix.size = 0
	for _, p := range products {
		ix.add(p.Name)
	}
}

func (ix *nameIndex) add(name string) {
	ix.filter.AddString(NameKey(name))
	ix.size++
}

// full reports whether the filter has reached its estimated capacity and its
// false positive rate would start to degrade.
func (ix *nameIndex) full() bool {
	return ix.size >= ix.capacity
}

func (ix *nameIndex) mayContain(name string) bool {
	return ix.filter.TestString(NameKey(name))
}

// NameKey is the case-insensitive comparison key for names and categories.
func NameKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Package catalog describes the products and categories that order lines
// are priced against.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Category is a product category together with its immediate parent.
//
// Only one level of ancestry is ever loaded. Pricing rules look at the
// category and its parent and nothing above it, so a cycle in stored data
// cannot cause unbounded traversal.
type Category struct {
	ID    string
	Title string
	// ParentID is empty for a root category.
	ParentID string
}

// HasParent reports whether the category is nested under another one.
func (c Category) HasParent() bool {
	return c.ParentID != ""
}

// InLineage reports whether id names the category itself or its
// immediate parent.
func (c Category) InLineage(id string) bool {
	if id == "" {
		return false
	}
	return id == c.ID || (c.HasParent() && id == c.ParentID)
}

// Product represents a catalog item available for purchase.
type Product struct {
	ID       string
	Title    string
	Price    decimal.Decimal
	Category Category
}

// Repository defines read operations for the product catalog.
type Repository interface {
	// GetByIDs returns the products matching ids with their category
	// loaded. Unknown ids are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}

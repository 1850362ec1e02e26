package discount

import "github.com/xenking/kart-pricing/internal/domain/catalog"

// Scope describes which part of an order a code applies to.
type Scope uint8

const (
	// ScopeOrder codes apply once to the summed order total.
	ScopeOrder Scope = iota
	// ScopeCategory codes apply to lines in one category.
	ScopeCategory
	// ScopeProduct codes apply to lines of one product.
	ScopeProduct
	// ScopeCategoryAndProduct codes apply to one product within a category
	// or its parent.
	ScopeCategoryAndProduct
)

// Scope returns the scope implied by the code's restrictions.
func (c *Code) Scope() Scope {
	switch {
	case c.CategoryID != "" && c.ProductID != "":
		return ScopeCategoryAndProduct
	case c.CategoryID != "":
		return ScopeCategory
	case c.ProductID != "":
		return ScopeProduct
	default:
		return ScopeOrder
	}
}

// OrderLevel reports whether the code carries no product or category
// restriction.
func (c *Code) OrderLevel() bool {
	return c.Scope() == ScopeOrder
}

// Covers reports whether a line-level code applies to p. Order-level codes
// never cover a single line.
func (c *Code) Covers(p catalog.Product) bool {
	switch c.Scope() {
	case ScopeCategory:
		return c.CategoryID == p.Category.ID
	case ScopeProduct:
		return c.ProductID == p.ID
	case ScopeCategoryAndProduct:
		// One hop of ancestry only.
		return c.ProductID == p.ID && p.Category.InLineage(c.CategoryID)
	default:
		return false
	}
}

// Package order prices orders and redeems their discount codes.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order lookup and redemption.
var (
	ErrNotFound         = errors.New("order not found")
	ErrNotPaid          = errors.New("order not paid")
	ErrAlreadyRedeemed  = errors.New("order already redeemed")
	ErrInvalidOrderLine = errors.New("invalid order line")
)

// Order is a customer order. The discount code is fixed when the order is
// created.
type Order struct {
	ID     string
	UserID string
	Paid   bool
	// DiscountCode is empty when the order carries no code.
	DiscountCode string
	CreatedAt    time.Time
}

// Line is a single order detail row.
type Line struct {
	ID        string
	ProductID string
	Count     int
	// FinalPrice is the snapshot stored at redemption. Pricing always
	// recomputes and never reads it.
	FinalPrice decimal.NullDecimal
}

// ProductNotFoundError indicates a line references a missing product.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line has a count below one.
type InvalidQuantityError struct {
	LineID string
	Count  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("line %s: count %d must be at least 1", e.LineID, e.Count)
}

// Is makes errors.Is(err, ErrInvalidOrderLine) match.
func (e *InvalidQuantityError) Is(target error) bool {
	return target == ErrInvalidOrderLine
}

// Settlement is what gets persisted when a paid order is redeemed.
type Settlement struct {
	OrderID string
	// Code is the discount code to consume, empty when none applied.
	Code string
	// LinePrices holds the final price per line id.
	LinePrices map[string]decimal.Decimal
	Total      decimal.Decimal
	RedeemedAt time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	Get(ctx context.Context, id string) (*Order, error)
	Lines(ctx context.Context, orderID string) ([]Line, error)
	// HasPaidOrder reports whether userID has a paid order other than
	// excludeOrderID.
	HasPaidOrder(ctx context.Context, userID, excludeOrderID string) (bool, error)
	// Settle stores the settlement atomically. It returns
	// ErrAlreadyRedeemed for an order settled before and
	// discount.ErrExhausted when the code has no uses left.
	Settle(ctx context.Context, s Settlement) error
}

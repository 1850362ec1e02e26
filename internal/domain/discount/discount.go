// Package discount models discount codes: their terms, lifecycle, scope
// and the arithmetic that turns a total into a discounted total.
package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no discount code matches a lookup.
	ErrNotFound = errors.New("discount code not found")
	// ErrInactive is returned for a code that has not been activated.
	ErrInactive = errors.New("discount code inactive")
	// ErrDeleted is returned for a soft-deleted code.
	ErrDeleted = errors.New("discount code deleted")
	// ErrExpired is returned when the expiry date lies before today.
	ErrExpired = errors.New("discount code expired")
	// ErrExhausted is returned when the remaining use counter is spent.
	ErrExhausted = errors.New("discount code exhausted")
	// ErrNoDiscountValue is returned when neither a percentage nor a fixed
	// amount is configured.
	ErrNoDiscountValue = errors.New("discount code has no discount value")
)

// State is the lifecycle state of a discount code.
type State uint8

const (
	// StateDraft codes are stored but not yet usable.
	StateDraft State = iota
	// StateActive codes are usable subject to their other terms.
	StateActive
	// StateExpired codes were retired explicitly or ran past their date.
	StateExpired
	// StateDeleted codes are soft-deleted.
	StateDeleted
)

func (s State) String() string {
	switch s {
	case StateDraft:
		return "draft"
	case StateActive:
		return "active"
	case StateExpired:
		return "expired"
	case StateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// StateFromFlags folds the stored active and deleted flags into a State.
// Deletion wins over activation.
func StateFromFlags(active, deleted bool) State {
	switch {
	case deleted:
		return StateDeleted
	case active:
		return StateActive
	default:
		return StateDraft
	}
}

// ParseState parses the String form of a State.
func ParseState(s string) (State, error) {
	switch s {
	case "draft":
		return StateDraft, nil
	case "active":
		return StateActive, nil
	case "expired":
		return StateExpired, nil
	case "deleted":
		return StateDeleted, nil
	default:
		return StateDraft, errors.Errorf("unknown discount state %q", s)
	}
}

// Code holds the terms of a discount code.
type Code struct {
	Code string
	// OffPercent is a whole percentage in [0, 100]; nil when unset.
	OffPercent *int
	// OffPrice is a fixed amount taken off the total.
	OffPrice decimal.NullDecimal
	// MinPurchase is the smallest total the code applies to.
	MinPurchase decimal.NullDecimal
	State       State
	// FirstOrderOnly restricts the code to users without a paid order.
	FirstOrderOnly bool
	// ExpiresOn is the last calendar day the code is usable.
	ExpiresOn *time.Time
	// Quantity is the number of remaining uses; nil means unlimited.
	Quantity *int
	// CategoryID and ProductID restrict the code to matching lines.
	CategoryID string
	ProductID  string
}

func (c *Code) String() string {
	return c.Code
}

// Repository provides lookup of discount codes.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Code, error)
}

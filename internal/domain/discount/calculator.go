package discount

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/money"
)

// Meets reports whether total satisfies the code's minimum purchase.
func (c *Code) Meets(total decimal.Decimal) bool {
	return !c.MinPurchase.Valid || total.GreaterThanOrEqual(c.MinPurchase.Decimal)
}

// Apply returns total after the code's discount.
//
// When the code is not valid on today, or total is below the minimum
// purchase, total is returned unchanged and err is nil. With both a fixed
// amount and a percentage configured, the mode giving the smaller reduction
// wins. A fixed amount larger than total yields a negative result.
//
// If the percentage primitive rejects its input the returned error wraps
// money.ErrInvalidArgument and the returned amount is total, so callers that
// ignore the discount still hold the undiscounted value.
func Apply(c *Code, total decimal.Decimal, today time.Time) (decimal.Decimal, error) {
	if !c.IsValid(today) || !c.Meets(total) {
		return total, nil
	}

	switch {
	case c.OffPrice.Valid && c.OffPercent == nil:
		return total.Sub(c.OffPrice.Decimal), nil

	case !c.OffPrice.Valid && c.OffPercent != nil:
		discounted, err := c.percentage(total)
		if err != nil {
			return total, err
		}
		return discounted, nil

	case c.OffPrice.Valid && c.OffPercent != nil:
		discounted, err := c.percentage(total)
		if err != nil {
			return total, err
		}
		if total.Sub(discounted).GreaterThan(c.OffPrice.Decimal) {
			return total.Sub(c.OffPrice.Decimal), nil
		}
		return discounted, nil

	default:
		return total, nil
	}
}

func (c *Code) percentage(total decimal.Decimal) (decimal.Decimal, error) {
	discounted, err := money.ApplyPercentage(total, decimal.NewFromInt(int64(*c.OffPercent)))
	if err != nil {
		return total, errors.Wrapf(err, "apply %d%% from %q", *c.OffPercent, c.Code)
	}
	return discounted, nil
}

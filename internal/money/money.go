// Package money holds the fixed-precision decimal helpers shared by every
// pricing calculation. Values never pass through binary floating point.
package money

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Places is the number of decimal places used for display totals.
const Places = 2

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// ErrInvalidArgument is returned when an amount or percentage is not
// strictly positive.
var ErrInvalidArgument = errors.New("invalid argument")

// ApplyPercentage returns amount reduced by percentage percent.
//
// Both inputs must be positive, so a 0% discount or a zero-cost amount is
// rejected with ErrInvalidArgument. The result is not rounded; rounding
// happens at line and order boundaries.
func ApplyPercentage(amount, percentage decimal.Decimal) (decimal.Decimal, error) {
	if !amount.GreaterThan(zero) {
		return zero, errors.Wrapf(ErrInvalidArgument, "amount %s must be positive", amount)
	}
	if !percentage.GreaterThan(zero) {
		return zero, errors.Wrapf(ErrInvalidArgument, "percentage %s must be positive", percentage)
	}

	reduction := amount.Mul(percentage).Div(hundred)
	return amount.Sub(reduction), nil
}

// Round rounds v to Places decimals. Ties go to the even digit, so 0.125
// becomes 0.12 and 0.135 becomes 0.14.
func Round(v decimal.Decimal) decimal.Decimal {
	return v.RoundBank(Places)
}

// Parse converts a decimal string, wrapping parse failures in
// ErrInvalidArgument.
func Parse(s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return zero, errors.Wrapf(ErrInvalidArgument, "parse %q: %v", s, err)
	}
	return v, nil
}

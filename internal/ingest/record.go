// Package ingest imports discount codes from gzip-compressed JSON-lines
// files.
package ingest

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/discount"
	"github.com/xenking/kart-pricing/internal/money"
)

const maxCodeLen = 30

// LineError reports a record that could not be decoded.
type LineError struct {
	File string
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// DecodeRecord decodes one JSON object into a discount code.
//
// Recognised keys: code, off_per, off_price, min_purchase, state,
// is_active, is_delete, is_first, exp_date (YYYY-MM-DD), quantity,
// category, product. Decimals may be given as strings or numbers. When
// state is absent it is derived from is_active and is_delete.
func DecodeRecord(data []byte) (discount.Code, error) {
	var (
		c               discount.Code
		state           string
		active, deleted bool
	)

	err := jx.DecodeBytes(data).ObjBytes(func(d *jx.Decoder, key []byte) error {
		if d.Next() == jx.Null {
			return d.Null()
		}

		switch string(key) {
		case "code":
			v, err := d.Str()
			c.Code = v
			return err
		case "off_per":
			v, err := d.Int()
			c.OffPercent = &v
			return err
		case "off_price":
			v, err := decodeDecimal(d)
			c.OffPrice = decimal.NewNullDecimal(v)
			return err
		case "min_purchase":
			v, err := decodeDecimal(d)
			c.MinPurchase = decimal.NewNullDecimal(v)
			return err
		case "state":
			v, err := d.Str()
			state = v
			return err
		case "is_active":
			v, err := d.Bool()
			active = v
			return err
		case "is_delete":
			v, err := d.Bool()
			deleted = v
			return err
		case "is_first":
			v, err := d.Bool()
			c.FirstOrderOnly = v
			return err
		case "exp_date":
			s, err := d.Str()
			if err != nil {
				return err
			}
			t, err := time.Parse(time.DateOnly, s)
			if err != nil {
				return errors.Wrap(err, "exp_date")
			}
			c.ExpiresOn = &t
			return nil
		case "quantity":
			v, err := d.Int()
			c.Quantity = &v
			return err
		case "category":
			v, err := d.Str()
			c.CategoryID = v
			return err
		case "product":
			v, err := d.Str()
			c.ProductID = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return discount.Code{}, errors.Wrap(err, "decode record")
	}

	if state != "" {
		if c.State, err = discount.ParseState(state); err != nil {
			return discount.Code{}, err
		}
	} else {
		c.State = discount.StateFromFlags(active, deleted)
	}

	if err := validate(&c); err != nil {
		return discount.Code{}, err
	}
	return c, nil
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return money.Parse(s)
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return money.Parse(n.String())
	default:
		return decimal.Zero, errors.Errorf("unexpected %s for decimal", d.Next())
	}
}

func validate(c *discount.Code) error {
	switch {
	case c.Code == "":
		return errors.New("code is required")
	case len(c.Code) > maxCodeLen:
		return errors.Errorf("code %q longer than %d", c.Code, maxCodeLen)
	case c.OffPercent != nil && (*c.OffPercent < 0 || *c.OffPercent > 100):
		return errors.Errorf("off_per %d out of range", *c.OffPercent)
	case c.OffPrice.Valid && c.OffPrice.Decimal.IsNegative():
		return errors.Errorf("off_price %s is negative", c.OffPrice.Decimal)
	case c.MinPurchase.Valid && c.MinPurchase.Decimal.IsNegative():
		return errors.Errorf("min_purchase %s is negative", c.MinPurchase.Decimal)
	case c.Quantity != nil && *c.Quantity < 0:
		return errors.Errorf("quantity %d is negative", *c.Quantity)
	}
	return nil
}

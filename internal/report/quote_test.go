package report

import (
	"testing"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-pricing/internal/domain/order"
)

func TestQuote(t *testing.T) {
	q := &order.Quote{
		OrderID: "o1",
		Code:    "SAVE10",
		Lines: []order.LineQuote{{
			LineID:     "l1",
			ProductID:  "tee",
			Count:      3,
			UnitPrice:  decimal.RequireFromString("19.99"),
			Base:       decimal.RequireFromString("59.97"),
			Total:      decimal.RequireFromString("53.97"),
			Discounted: true,
		}},
		Subtotal: decimal.RequireFromString("53.97"),
		Total:    decimal.RequireFromString("-5"),
	}

	data := Quote(q)
	assert.True(t, jx.Valid(data))
	assert.JSONEq(t, `{
		"order_id": "o1",
		"discount_code": "SAVE10",
		"lines": [{
			"line_id": "l1",
			"product_id": "tee",
			"count": 3,
			"unit_price": "19.99",
			"base": "59.97",
			"total": "53.97",
			"discounted": true
		}],
		"subtotal": "53.97",
		"order_discounted": false,
		"total": "-5.00"
	}`, string(data))
}

func TestQuote_WithoutCode(t *testing.T) {
	data := Quote(&order.Quote{OrderID: "o2", Subtotal: decimal.Zero, Total: decimal.Zero})

	var keys []string
	err := jx.DecodeBytes(data).ObjBytes(func(d *jx.Decoder, key []byte) error {
		keys = append(keys, string(key))
		return d.Skip()
	})
	require.NoError(t, err)
	assert.NotContains(t, keys, "discount_code")
	assert.Contains(t, string(data), `"lines":[]`)
}

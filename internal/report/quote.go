// Package report renders priced orders as JSON.
package report

import (
	"github.com/go-faster/jx"

	"github.com/xenking/kart-pricing/internal/domain/order"
	"github.com/xenking/kart-pricing/internal/money"
)

// EncodeQuote writes q as a JSON object. Amounts are strings with two
// decimal places so no consumer has to parse them as floats.
func EncodeQuote(e *jx.Encoder, q *order.Quote) {
	e.ObjStart()
	e.Field("order_id", func(e *jx.Encoder) { e.Str(q.OrderID) })
	if q.Code != "" {
		e.Field("discount_code", func(e *jx.Encoder) { e.Str(q.Code) })
	}
	e.Field("lines", func(e *jx.Encoder) {
		e.ArrStart()
		for _, l := range q.Lines {
			encodeLine(e, l)
		}
		e.ArrEnd()
	})
	e.Field("subtotal", func(e *jx.Encoder) { e.Str(q.Subtotal.StringFixed(money.Places)) })
	e.Field("order_discounted", func(e *jx.Encoder) { e.Bool(q.OrderDiscounted) })
	e.Field("total", func(e *jx.Encoder) { e.Str(q.Total.StringFixed(money.Places)) })
	e.ObjEnd()
}

func encodeLine(e *jx.Encoder, l order.LineQuote) {
	e.ObjStart()
	e.Field("line_id", func(e *jx.Encoder) { e.Str(l.LineID) })
	e.Field("product_id", func(e *jx.Encoder) { e.Str(l.ProductID) })
	e.Field("count", func(e *jx.Encoder) { e.Int(l.Count) })
	e.Field("unit_price", func(e *jx.Encoder) { e.Str(l.UnitPrice.StringFixed(money.Places)) })
	e.Field("base", func(e *jx.Encoder) { e.Str(l.Base.StringFixed(money.Places)) })
	e.Field("total", func(e *jx.Encoder) { e.Str(l.Total.StringFixed(money.Places)) })
	e.Field("discounted", func(e *jx.Encoder) { e.Bool(l.Discounted) })
	e.ObjEnd()
}

// Quote returns q encoded as JSON.
func Quote(q *order.Quote) []byte {
	var e jx.Encoder
	EncodeQuote(&e, q)
	return e.Bytes()
}

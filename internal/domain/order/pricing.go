package order

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/kart-pricing/internal/domain/catalog"
	"github.com/xenking/kart-pricing/internal/domain/discount"
	"github.com/xenking/kart-pricing/internal/money"
)

// Item pairs an order line with its product.
type Item struct {
	Line    Line
	Product catalog.Product
}

// LineQuote is the priced form of one order line.
type LineQuote struct {
	LineID    string
	ProductID string
	Count     int
	UnitPrice decimal.Decimal
	// Base is count * unit price, rounded.
	Base decimal.Decimal
	// Total is the line price after any line-level discount, rounded.
	Total      decimal.Decimal
	Discounted bool
}

// Quote is the priced form of a whole order.
type Quote struct {
	OrderID string
	Code    string
	Lines   []LineQuote
	// Subtotal is the sum of the rounded line totals.
	Subtotal        decimal.Decimal
	Total           decimal.Decimal
	OrderDiscounted bool
}

// Discounted reports whether the code changed any price in the quote.
func (q *Quote) Discounted() bool {
	if q.OrderDiscounted {
		return true
	}
	for _, l := range q.Lines {
		if l.Discounted {
			return true
		}
	}
	return false
}

// Engine prices orders. It holds no state besides its logger, and every
// result is a function of the arguments.
type Engine struct {
	lg *zap.Logger
}

// NewEngine returns an Engine logging to lg. A nil lg disables logging.
func NewEngine(lg *zap.Logger) *Engine {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Engine{lg: lg}
}

// CodeValid reports whether code exists and is usable on today.
func (e *Engine) CodeValid(code *discount.Code, today time.Time) bool {
	return code != nil && code.IsValid(today)
}

// eligible reports whether the code may be used by this customer at all.
// First-order codes are forfeited once the user has paid for another order.
func (e *Engine) eligible(code *discount.Code, hasPriorPaidOrder bool, today time.Time) bool {
	if !e.CodeValid(code, today) {
		return false
	}
	return !code.FirstOrderOnly || !hasPriorPaidOrder
}

// LineTotal prices a single line. Order-level codes are not applied here,
// they are applied once by OrderTotal.
func (e *Engine) LineTotal(
	line Line,
	product catalog.Product,
	code *discount.Code,
	hasPriorPaidOrder bool,
	today time.Time,
) LineQuote {
	base := product.Price.Mul(decimal.NewFromInt(int64(line.Count)))
	q := LineQuote{
		LineID:    line.ID,
		ProductID: product.ID,
		Count:     line.Count,
		UnitPrice: product.Price,
		Base:      money.Round(base),
		Total:     money.Round(base),
	}

	if !e.eligible(code, hasPriorPaidOrder, today) || !code.Covers(product) {
		return q
	}

	total, err := discount.Apply(code, base, today)
	if err != nil {
		e.lg.Warn("Line discount not applied",
			zap.String("code", code.Code),
			zap.String("line", line.ID),
			zap.String("base", base.String()),
			zap.Error(err),
		)
		return q
	}

	q.Total = money.Round(total)
	q.Discounted = code.Meets(base)
	return q
}

// OrderTotal prices all items and applies an order-level code to the sum
// of the rounded line totals.
func (e *Engine) OrderTotal(
	orderID string,
	items []Item,
	code *discount.Code,
	hasPriorPaidOrder bool,
	today time.Time,
) Quote {
	q := Quote{
		OrderID: orderID,
		Lines:   make([]LineQuote, 0, len(items)),
	}
	if code != nil {
		q.Code = code.Code
	}

	subtotal := decimal.Zero
	for _, item := range items {
		lq := e.LineTotal(item.Line, item.Product, code, hasPriorPaidOrder, today)
		q.Lines = append(q.Lines, lq)
		subtotal = subtotal.Add(lq.Total)
	}
	q.Subtotal = subtotal
	q.Total = money.Round(subtotal)

	if !e.eligible(code, hasPriorPaidOrder, today) || !code.OrderLevel() {
		return q
	}

	total, err := discount.Apply(code, subtotal, today)
	if err != nil {
		e.lg.Warn("Order discount not applied",
			zap.String("code", code.Code),
			zap.String("order", orderID),
			zap.String("subtotal", subtotal.String()),
			zap.Error(err),
		)
		return q
	}

	q.Total = money.Round(total)
	q.OrderDiscounted = code.Meets(subtotal)
	return q
}

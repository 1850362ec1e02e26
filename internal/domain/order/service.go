package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kart-pricing/internal/domain/catalog"
	"github.com/xenking/kart-pricing/internal/domain/discount"
)

const instrumentationName = "github.com/xenking/kart-pricing/internal/domain/order"

// ServiceOptions configures optional Service dependencies.
type ServiceOptions struct {
	// Location is used to derive today's date from the clock. Defaults to UTC.
	Location       *time.Location
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

func (o *ServiceOptions) setDefaults() {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.TracerProvider == nil {
		o.TracerProvider = tracenoop.NewTracerProvider()
	}
	if o.MeterProvider == nil {
		o.MeterProvider = metricnoop.NewMeterProvider()
	}
}

// Service loads orders with their products and discount codes, and prices
// them with an Engine.
type Service struct {
	orders   Repository
	products catalog.Repository
	codes    discount.Repository
	now      func() time.Time
	loc      *time.Location

	tracer      trace.Tracer
	quotes      metric.Int64Counter
	redemptions metric.Int64Counter
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	orders Repository,
	products catalog.Repository,
	codes discount.Repository,
	opts ServiceOptions,
) (*Service, error) {
	opts.setDefaults()

	meter := opts.MeterProvider.Meter(instrumentationName)
	quotes, err := meter.Int64Counter("pricing.quotes",
		metric.WithDescription("Number of priced orders"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "quotes counter")
	}
	redemptions, err := meter.Int64Counter("pricing.redemptions",
		metric.WithDescription("Number of redeemed orders"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "redemptions counter")
	}

	return &Service{
		orders:      orders,
		products:    products,
		codes:       codes,
		now:         time.Now,
		loc:         opts.Location,
		tracer:      opts.TracerProvider.Tracer(instrumentationName),
		quotes:      quotes,
		redemptions: redemptions,
	}, nil
}

// Today returns the current calendar day in the service location.
func (s *Service) Today() time.Time {
	return s.now().In(s.loc)
}

// Quote prices the order identified by orderID.
func (s *Service) Quote(ctx context.Context, orderID string) (_ *Quote, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.Quote",
		trace.WithAttributes(attribute.String("order.id", orderID)),
	)
	defer func() { endSpan(span, rerr) }()

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}

	q, err := s.quote(ctx, o)
	if err != nil {
		return nil, err
	}

	s.quotes.Add(ctx, 1, metric.WithAttributes(attribute.Bool("discounted", q.Discounted())))
	return q, nil
}

// Redeem prices a paid order and settles it: the line prices are stored
// and, when the discount code changed the price, one use of the code is
// consumed in the same transaction.
func (s *Service) Redeem(ctx context.Context, orderID string) (_ *Quote, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.Redeem",
		trace.WithAttributes(attribute.String("order.id", orderID)),
	)
	defer func() { endSpan(span, rerr) }()

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	if !o.Paid {
		return nil, ErrNotPaid
	}

	q, err := s.quote(ctx, o)
	if err != nil {
		return nil, err
	}

	settlement := Settlement{
		OrderID:    o.ID,
		LinePrices: make(map[string]decimal.Decimal, len(q.Lines)),
		Total:      q.Total,
		RedeemedAt: s.now(),
	}
	if q.Discounted() {
		settlement.Code = q.Code
	}
	for _, l := range q.Lines {
		settlement.LinePrices[l.LineID] = l.Total
	}

	if err := s.orders.Settle(ctx, settlement); err != nil {
		return nil, errors.Wrap(err, "settle order")
	}

	zctx.From(ctx).Info("Order redeemed",
		zap.String("order", o.ID),
		zap.String("code", settlement.Code),
		zap.String("total", q.Total.StringFixed(2)),
	)
	s.redemptions.Add(ctx, 1, metric.WithAttributes(attribute.Bool("discounted", settlement.Code != "")))
	return q, nil
}

func (s *Service) quote(ctx context.Context, o *Order) (*Quote, error) {
	lines, err := s.orders.Lines(ctx, o.ID)
	if err != nil {
		return nil, errors.Wrap(err, "get order lines")
	}

	ids := make([]string, len(lines))
	for i, l := range lines {
		if l.Count < 1 {
			return nil, &InvalidQuantityError{LineID: l.ID, Count: l.Count}
		}
		ids[i] = l.ProductID
	}

	var (
		fetched []catalog.Product
		code    *discount.Code
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if fetched, err = s.products.GetByIDs(gctx, ids); err != nil {
			return errors.Wrap(err, "get products")
		}
		return nil
	})
	if o.DiscountCode != "" {
		g.Go(func() error {
			var err error
			if code, err = s.findCode(gctx, o.DiscountCode); err != nil {
				return errors.Wrap(err, "get discount code")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	productMap := make(map[string]catalog.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}
	items := make([]Item, len(lines))
	for i, l := range lines {
		p, ok := productMap[l.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: l.ProductID}
		}
		items[i] = Item{Line: l, Product: p}
	}

	var hasPriorPaidOrder bool
	if code != nil && code.FirstOrderOnly {
		if hasPriorPaidOrder, err = s.orders.HasPaidOrder(ctx, o.UserID, o.ID); err != nil {
			return nil, errors.Wrap(err, "check payment history")
		}
	}

	q := NewEngine(zctx.From(ctx)).OrderTotal(o.ID, items, code, hasPriorPaidOrder, s.Today())
	return &q, nil
}

// findCode treats a code that no longer exists as no code at all.
func (s *Service) findCode(ctx context.Context, c string) (*discount.Code, error) {
	code, err := s.codes.FindByCode(ctx, c)
	if errors.Is(err, discount.ErrNotFound) {
		zctx.From(ctx).Warn("Discount code referenced by order not found", zap.String("code", c))
		return nil, nil
	}
	return code, err
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

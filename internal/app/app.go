// Package app wires configuration, storage and the pricing service.
package app

import (
	"context"
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/xenking/kart-pricing/internal/domain/order"
	"github.com/xenking/kart-pricing/internal/report"
	"github.com/xenking/kart-pricing/internal/storage/postgres"
)

// Pricer is the part of order.Service the command line uses.
type Pricer interface {
	Quote(ctx context.Context, orderID string) (*order.Quote, error)
	Redeem(ctx context.Context, orderID string) (*order.Quote, error)
}

// Run creates all dependencies, performs the configured action and writes
// the resulting quote to out. It is the single wiring point for the
// application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config, out io.Writer) error {
	lg.Info("Initializing",
		zap.String("action", cfg.Action),
		zap.String("order", cfg.OrderID),
		zap.Stringer("location", cfg.Location()),
	)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if cfg.Migrate {
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
	}

	svc, err := order.NewService(
		postgres.NewOrderRepository(pool),
		postgres.NewProductRepository(pool),
		postgres.NewDiscountRepository(pool),
		order.ServiceOptions{
			Location:       cfg.Location(),
			TracerProvider: m.TracerProvider(),
			MeterProvider:  m.MeterProvider(),
		},
	)
	if err != nil {
		return errors.Wrap(err, "create order service")
	}

	return Execute(ctx, svc, cfg, out)
}

// Execute performs cfg.Action with p and writes the quote as JSON.
func Execute(ctx context.Context, p Pricer, cfg *Config, out io.Writer) error {
	var (
		q   *order.Quote
		err error
	)
	switch cfg.Action {
	case ActionQuote:
		q, err = p.Quote(ctx, cfg.OrderID)
	case ActionRedeem:
		q, err = p.Redeem(ctx, cfg.OrderID)
	default:
		return errors.Errorf("unknown action %q", cfg.Action)
	}
	if err != nil {
		return errors.Wrapf(err, "%s order %s", cfg.Action, cfg.OrderID)
	}

	if _, err := out.Write(append(report.Quote(q), '\n')); err != nil {
		return errors.Wrap(err, "write quote")
	}
	return nil
}

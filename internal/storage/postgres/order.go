package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/discount"
	"github.com/xenking/kart-pricing/internal/domain/order"
)

const (
	getOrderSQL = `SELECT id, user_id, is_payment, COALESCE(discount_code, ''), created_at
		FROM orders WHERE id = $1`

	getOrderLinesSQL = `SELECT id, product_id, count, final_price
		FROM order_details WHERE order_id = $1 ORDER BY id`

	// The order being priced is left out: Redeem only accepts paid orders,
	// so counting it would forfeit every first-order code on redemption.
	hasPaidOrderSQL = `SELECT EXISTS (
		SELECT 1 FROM orders WHERE user_id = $1 AND is_payment AND id <> $2)`

	insertRedemptionSQL = `INSERT INTO discount_redemptions (id, order_id, code, total, redeemed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (order_id) DO NOTHING`

	// Unlimited codes keep a NULL quantity.
	consumeDiscountCodeSQL = `UPDATE discount_codes SET quantity = quantity - 1
		WHERE code = $1 AND (quantity IS NULL OR quantity > 0)`

	setFinalPriceSQL = `UPDATE order_details SET final_price = $3
		WHERE order_id = $1 AND id = $2`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Get returns a single order by its identifier.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	err := r.pool.QueryRow(ctx, getOrderSQL, id).Scan(
		&o.ID, &o.UserID, &o.Paid, &o.DiscountCode, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// Lines returns the order details of an order ordered by id.
func (r *OrderRepository) Lines(ctx context.Context, orderID string) ([]order.Line, error) {
	rows, err := r.pool.Query(ctx, getOrderLinesSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("getting lines of order %q: %w", orderID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Line, error) {
		var (
			l     order.Line
			count int32
		)
		err := row.Scan(&l.ID, &l.ProductID, &count, &l.FinalPrice)
		l.Count = int(count)
		return l, err
	})
}

// HasPaidOrder reports whether the user has a paid order besides
// excludeOrderID.
func (r *OrderRepository) HasPaidOrder(ctx context.Context, userID, excludeOrderID string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, hasPaidOrderSQL, userID, excludeOrderID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking paid orders of user %q: %w", userID, err)
	}
	return exists, nil
}

// Settle records the redemption, consumes one use of the code and stores
// the final line prices in one transaction. The conditional UPDATE on the
// code row serializes concurrent redemptions of the same code.
func (r *OrderRepository) Settle(ctx context.Context, s order.Settlement) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, insertRedemptionSQL,
			uuid.New().String(), s.OrderID, nullString(s.Code), s.Total, s.RedeemedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting redemption: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return order.ErrAlreadyRedeemed
		}

		if s.Code != "" {
			tag, err := tx.Exec(ctx, consumeDiscountCodeSQL, s.Code)
			if err != nil {
				return fmt.Errorf("consuming discount code %q: %w", s.Code, err)
			}
			if tag.RowsAffected() == 0 {
				return discount.ErrExhausted
			}
		}

		return setFinalPrices(ctx, tx, s.OrderID, s.LinePrices)
	})
	if err != nil {
		return errors.Wrapf(err, "settle order %q", s.OrderID)
	}
	return nil
}

func setFinalPrices(ctx context.Context, tx pgx.Tx, orderID string, prices map[string]decimal.Decimal) error {
	if len(prices) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for lineID, price := range prices {
		batch.Queue(setFinalPriceSQL, orderID, lineID, price)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("storing final prices: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/discount"
)

const (
	getDiscountCodeSQL = `SELECT code, off_per, off_price, min_purchase, state, is_first,
		exp_date, quantity, COALESCE(category_id, ''), COALESCE(product_id, '')
		FROM discount_codes WHERE code = $1`

	upsertDiscountCodeSQL = `INSERT INTO discount_codes
		(code, off_per, off_price, min_purchase, state, is_first, exp_date, quantity, category_id, product_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (code) DO UPDATE SET
			off_per = EXCLUDED.off_per,
			off_price = EXCLUDED.off_price,
			min_purchase = EXCLUDED.min_purchase,
			state = EXCLUDED.state,
			is_first = EXCLUDED.is_first,
			exp_date = EXCLUDED.exp_date,
			quantity = EXCLUDED.quantity,
			category_id = EXCLUDED.category_id,
			product_id = EXCLUDED.product_id`
)

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// FindByCode looks up a discount code by its exact value.
// Returns discount.ErrNotFound when no such code exists.
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (*discount.Code, error) {
	rows, err := r.pool.Query(ctx, getDiscountCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding discount code %q: %w", code, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanDiscountCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrNotFound
		}
		return nil, fmt.Errorf("finding discount code %q: %w", code, err)
	}
	return &c, nil
}

// UpsertCodes inserts or replaces the given codes in a single batch.
func (r *DiscountRepository) UpsertCodes(ctx context.Context, codes []discount.Code) error {
	if len(codes) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range codes {
		c := &codes[i]
		var offPer *int32
		if c.OffPercent != nil {
			v := int32(*c.OffPercent)
			offPer = &v
		}
		var quantity *int32
		if c.Quantity != nil {
			v := int32(*c.Quantity)
			quantity = &v
		}
		batch.Queue(upsertDiscountCodeSQL,
			c.Code, offPer, c.OffPrice, c.MinPurchase, c.State.String(), c.FirstOrderOnly,
			c.ExpiresOn, quantity, nullString(c.CategoryID), nullString(c.ProductID),
		)
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting %d discount codes: %w", len(codes), err)
	}
	return nil
}

func scanDiscountCode(row pgx.CollectableRow) (discount.Code, error) {
	var (
		c           discount.Code
		offPer      *int32
		offPrice    decimal.NullDecimal
		minPurchase decimal.NullDecimal
		state       string
		expDate     *time.Time
		quantity    *int32
	)
	err := row.Scan(
		&c.Code, &offPer, &offPrice, &minPurchase, &state, &c.FirstOrderOnly,
		&expDate, &quantity, &c.CategoryID, &c.ProductID,
	)
	if err != nil {
		return c, err
	}

	if c.State, err = discount.ParseState(state); err != nil {
		return c, err
	}
	if offPer != nil {
		v := int(*offPer)
		c.OffPercent = &v
	}
	if quantity != nil {
		v := int(*quantity)
		c.Quantity = &v
	}
	c.OffPrice = offPrice
	c.MinPurchase = minPurchase
	c.ExpiresOn = expDate
	return c, nil
}

package ingest

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-pricing/internal/domain/discount"
)

func TestDecodeRecord(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		c, err := DecodeRecord([]byte(`{
			"code": "SUMMER",
			"off_per": 15,
			"off_price": "12.50",
			"min_purchase": 40,
			"state": "active",
			"is_first": true,
			"exp_date": "2025-08-31",
			"quantity": 100,
			"category": "shirts",
			"product": "tee",
			"comment": {"ignored": [1, 2]}
		}`))
		require.NoError(t, err)

		assert.Equal(t, "SUMMER", c.Code)
		require.NotNil(t, c.OffPercent)
		assert.Equal(t, 15, *c.OffPercent)
		assert.True(t, decimal.RequireFromString("12.50").Equal(c.OffPrice.Decimal))
		assert.True(t, decimal.NewFromInt(40).Equal(c.MinPurchase.Decimal))
		assert.Equal(t, discount.StateActive, c.State)
		assert.True(t, c.FirstOrderOnly)
		require.NotNil(t, c.ExpiresOn)
		assert.Equal(t, "2025-08-31", c.ExpiresOn.Format("2006-01-02"))
		assert.Equal(t, 100, *c.Quantity)
		assert.Equal(t, discount.ScopeCategoryAndProduct, c.Scope())
	})

	t.Run("state from flags", func(t *testing.T) {
		c, err := DecodeRecord([]byte(`{"code":"A","off_per":5,"is_active":true}`))
		require.NoError(t, err)
		assert.Equal(t, discount.StateActive, c.State)

		c, err = DecodeRecord([]byte(`{"code":"B","off_per":5,"is_active":true,"is_delete":true}`))
		require.NoError(t, err)
		assert.Equal(t, discount.StateDeleted, c.State)

		c, err = DecodeRecord([]byte(`{"code":"C","off_per":5}`))
		require.NoError(t, err)
		assert.Equal(t, discount.StateDraft, c.State)
	})

	t.Run("nulls leave fields unset", func(t *testing.T) {
		c, err := DecodeRecord([]byte(`{"code":"N","off_per":null,"off_price":"3","quantity":null,"exp_date":null}`))
		require.NoError(t, err)
		assert.Nil(t, c.OffPercent)
		assert.Nil(t, c.Quantity)
		assert.Nil(t, c.ExpiresOn)
		assert.True(t, c.OffPrice.Valid)
		assert.False(t, c.MinPurchase.Valid)
	})

	for _, tt := range []struct {
		name string
		data string
	}{
		{name: "missing code", data: `{"off_per":5}`},
		{name: "code too long", data: `{"code":"ABCDEFGHIJKLMNOPQRSTUVWXYZ012345"}`},
		{name: "percentage above 100", data: `{"code":"X","off_per":101}`},
		{name: "negative price", data: `{"code":"X","off_price":"-1"}`},
		{name: "negative quantity", data: `{"code":"X","off_per":1,"quantity":-1}`},
		{name: "bad decimal", data: `{"code":"X","off_price":"ten"}`},
		{name: "bad date", data: `{"code":"X","exp_date":"31/08/2025"}`},
		{name: "unknown state", data: `{"code":"X","state":"paused"}`},
		{name: "not an object", data: `["X"]`},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

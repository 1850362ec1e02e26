package discount

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func price(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(d(v))
}

func pct(v int) *int {
	return &v
}

func qty(v int) *int {
	return &v
}

var today = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func day(offset int) *time.Time {
	t := today.AddDate(0, 0, offset)
	return &t
}

func TestStateFromFlags(t *testing.T) {
	assert.Equal(t, StateActive, StateFromFlags(true, false))
	assert.Equal(t, StateDraft, StateFromFlags(false, false))
	assert.Equal(t, StateDeleted, StateFromFlags(true, true))
	assert.Equal(t, StateDeleted, StateFromFlags(false, true))
}

func TestParseState(t *testing.T) {
	for _, s := range []State{StateDraft, StateActive, StateExpired, StateDeleted} {
		got, err := ParseState(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseState("paused")
	require.Error(t, err)
}

func TestCode_Check(t *testing.T) {
	tests := []struct {
		name    string
		code    Code
		wantErr error
	}{
		{
			name: "active with percentage",
			code: Code{Code: "PCT", State: StateActive, OffPercent: pct(10)},
		},
		{
			name: "active with fixed amount",
			code: Code{Code: "FIX", State: StateActive, OffPrice: price("5")},
		},
		{
			name:    "draft",
			code:    Code{Code: "DRAFT", State: StateDraft, OffPercent: pct(10)},
			wantErr: ErrInactive,
		},
		{
			name:    "deleted",
			code:    Code{Code: "DEL", State: StateDeleted, OffPercent: pct(10)},
			wantErr: ErrDeleted,
		},
		{
			name:    "explicitly expired",
			code:    Code{Code: "OLD", State: StateExpired, OffPercent: pct(10)},
			wantErr: ErrExpired,
		},
		{
			name:    "quantity spent",
			code:    Code{Code: "Q0", State: StateActive, OffPercent: pct(10), Quantity: qty(0)},
			wantErr: ErrExhausted,
		},
		{
			name:    "negative quantity",
			code:    Code{Code: "QNEG", State: StateActive, OffPercent: pct(10), Quantity: qty(-1)},
			wantErr: ErrExhausted,
		},
		{
			name: "quantity remaining",
			code: Code{Code: "Q1", State: StateActive, OffPercent: pct(10), Quantity: qty(1)},
		},
		{
			name:    "no discount value",
			code:    Code{Code: "EMPTY", State: StateActive},
			wantErr: ErrNoDiscountValue,
		},
		{
			name:    "expired yesterday",
			code:    Code{Code: "Y", State: StateActive, OffPercent: pct(10), ExpiresOn: day(-1)},
			wantErr: ErrExpired,
		},
		{
			name: "expires today",
			code: Code{Code: "T", State: StateActive, OffPercent: pct(10), ExpiresOn: day(0)},
		},
		{
			name: "expires tomorrow",
			code: Code{Code: "TM", State: StateActive, OffPercent: pct(10), ExpiresOn: day(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.code.Check(today)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.False(t, tt.code.IsValid(today))
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.code.IsValid(today))
		})
	}
}

func TestCode_ExpiryUsesCalendarDay(t *testing.T) {
	// Expiry at the very start of the day is still valid late that day.
	expires := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	c := Code{Code: "EOD", State: StateActive, OffPercent: pct(10), ExpiresOn: &expires}

	assert.True(t, c.IsValid(time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)))
	assert.False(t, c.IsValid(time.Date(2025, 6, 16, 0, 0, 1, 0, time.UTC)))
}

func TestCode_EffectiveState(t *testing.T) {
	c := Code{Code: "E", State: StateActive, OffPercent: pct(10), ExpiresOn: day(-1)}
	assert.Equal(t, StateExpired, c.EffectiveState(today))

	c.ExpiresOn = day(0)
	assert.Equal(t, StateActive, c.EffectiveState(today))

	c.State = StateDeleted
	assert.Equal(t, StateDeleted, c.EffectiveState(today))
}

func TestCode_CheckDoesNotMutate(t *testing.T) {
	c := Code{Code: "Q", State: StateActive, OffPercent: pct(10), Quantity: qty(3)}
	require.NoError(t, c.Check(today))
	require.NoError(t, c.Check(today))
	assert.Equal(t, 3, *c.Quantity)
}

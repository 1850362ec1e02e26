package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestApplyPercentage(t *testing.T) {
	tests := []struct {
		name       string
		amount     decimal.Decimal
		percentage decimal.Decimal
		want       decimal.Decimal
		wantErr    error
	}{
		{name: "20% off 100", amount: d("100"), percentage: d("20"), want: d("80")},
		{name: "100% off", amount: d("42.50"), percentage: d("100"), want: d("0")},
		{name: "keeps full precision", amount: d("10.01"), percentage: d("33"), want: d("6.7067")},
		{name: "zero percentage rejected", amount: d("100"), percentage: d("0"), wantErr: ErrInvalidArgument},
		{name: "negative percentage rejected", amount: d("100"), percentage: d("-5"), wantErr: ErrInvalidArgument},
		{name: "zero amount rejected", amount: d("0"), percentage: d("10"), wantErr: ErrInvalidArgument},
		{name: "negative amount rejected", amount: d("-1"), percentage: d("10"), wantErr: ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyPercentage(tt.amount, tt.percentage)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "expected %s, got %s", tt.want, got)
		})
	}
}

func TestRound(t *testing.T) {
	assert.True(t, d("4.50").Equal(Round(d("4.4955"))))
	assert.True(t, d("-5").Equal(Round(d("-5.001"))))
	assert.Equal(t, "3.34", Round(d("3.336333")).StringFixed(Places))
}

func TestRound_HalfToEven(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want string
	}{
		{in: "0.125", want: "0.12"},
		{in: "0.135", want: "0.14"},
		{in: "2.675", want: "2.68"},
		{in: "2.665", want: "2.66"},
		{in: "1.005", want: "1.00"},
		{in: "-0.125", want: "-0.12"},
	} {
		t.Run(tt.in, func(t *testing.T) {
			got := Round(d(tt.in))
			assert.True(t, d(tt.want).Equal(got), "expected %s, got %s", tt.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	v, err := Parse("19.99")
	require.NoError(t, err)
	assert.True(t, d("19.99").Equal(v))

	_, err = Parse("abc")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

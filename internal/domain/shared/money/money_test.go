package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidCurrency(t *testing.T) {
	_, err := New(decimal.NewFromInt(1), "US")
	assert.ErrorIs(t, err, ErrInvalidCurrency)

	m, err := New(decimal.NewFromInt(1), "usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", m.Currency)
}

func TestAddRequiresSameCurrency(t *testing.T) {
	_, err := USD("1.00").Add(Must(decimal.NewFromInt(1), "EUR"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	sum, err := USD("36.00").Add(USD("3.60"))
	require.NoError(t, err)
	assert.True(t, sum.Equal(USD("39.60")))
}

func TestRoundCentsHalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2.772", "2.77"},
		{"2.775", "2.78"},
		{"1.005", "1.01"},
		{"0.004", "0.00"},
		{"92.3720", "92.37"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := USD(tt.in).RoundCents()
			assert.Equal(t, tt.want, got.Amount.StringFixed(2))
		})
	}
}

func TestCentsAndString(t *testing.T) {
	m := USD("92.37")
	assert.Equal(t, int64(9237), m.Cents())
	assert.Equal(t, "$92.37", m.String())
	assert.Equal(t, "$50.00", USD("50").String())
	assert.Equal(t, "12.50 EUR", Must(decimal.RequireFromString("12.5"), "EUR").String())

	fromCents, err := FromCents(1250, DefaultCurrency)
	require.NoError(t, err)
	assert.True(t, fromCents.Equal(USD("12.50")))
}

func TestMultiply(t *testing.T) {
	assert.True(t, USD("12").Multiply(3).Equal(USD("36")))
	assert.True(t, USD("36").Mul(decimal.RequireFromString("0.10")).Equal(USD("3.6")))
}

package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
)

// DefaultCurrency is used by price labels that only carry a "$" sign.
const DefaultCurrency = "USD"

// CentPlaces is the precision of a published amount.
const CentPlaces = 2

// Money keeps amounts as exact decimals; values leaving the pricing engine are rounded to cents.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// New constructs Money validating minimal invariants.
func New(amount decimal.Decimal, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: strings.ToUpper(currency)}, nil
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount decimal.Decimal, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// USD is shorthand for dollar amounts written as strings ("36.00").
func USD(amount string) Money {
	return Must(decimal.RequireFromString(amount), DefaultCurrency)
}

// FromCents builds Money from an integer amount of minor units.
func FromCents(cents int64, currency string) (Money, error) {
	return New(decimal.New(cents, -CentPlaces), currency)
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: strings.ToUpper(currency)}
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub subtracts other from the receiver.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// Mul multiplies the amount by an arbitrary decimal factor without rounding.
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(factor), Currency: m.Currency}
}

// Multiply multiplies the amount by an integer quantity.
func (m Money) Multiply(times int64) Money {
	return m.Mul(decimal.NewFromInt(times))
}

// RoundCents rounds half-up to two decimal places. Published amounts are
// never negative, so half-away-from-zero is equivalent.
func (m Money) RoundCents() Money {
	return Money{Amount: m.Amount.Round(CentPlaces), Currency: m.Currency}
}

// Cents returns the amount in minor units, rounding first.
func (m Money) Cents() int64 {
	return m.Amount.Round(CentPlaces).Shift(CentPlaces).IntPart()
}

// Float64 is meant for JSON payloads consumed by the client; arithmetic stays in decimals.
func (m Money) Float64() float64 {
	return m.Amount.Round(CentPlaces).InexactFloat64()
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// String formats like the receipt screen: "$92.37" for dollars, "92.37 EUR" otherwise.
func (m Money) String() string {
	amount := m.Amount.StringFixed(CentPlaces)
	if m.Currency == DefaultCurrency || m.Currency == "" {
		if m.Amount.IsNegative() {
			return "-$" + strings.TrimPrefix(amount, "-")
		}
		return "$" + amount
	}
	return fmt.Sprintf("%s %s", amount, m.Currency)
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}

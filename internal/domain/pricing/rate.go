package pricing

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"rentbook/internal/domain/shared/money"
)

var (
	ErrUnparsablePrice = errors.New("pricing: price label has no numeric amount")
	ErrUnknownUnit     = errors.New("pricing: unknown rate unit")
)

// RateUnit determines how a flat per-unit rate is prorated across a stay.
type RateUnit string

const (
	UnitHour RateUnit = "hour"
	UnitDay  RateUnit = "day"
	UnitWeek RateUnit = "week"
)

func (u RateUnit) Valid() bool {
	switch u {
	case UnitHour, UnitDay, UnitWeek:
		return true
	}
	return false
}

// ParseUnit accepts the canonical names and the suffixes used in price labels.
func ParseUnit(raw string) (RateUnit, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case value == "":
		return UnitDay, nil
	case strings.Contains(value, "hr"), strings.Contains(value, "hour"):
		return UnitHour, nil
	case strings.Contains(value, "week"):
		return UnitWeek, nil
	case strings.Contains(value, "day"):
		return UnitDay, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnit, raw)
}

// Rate is a parsed price: an amount charged per unit.
type Rate struct {
	Amount decimal.Decimal
	Unit   RateUnit
	// Parsed is false when the label carried no usable amount and Amount
	// fell back to zero, as opposed to a genuinely free "$0" item.
	Parsed bool
}

// Price returns the per-unit amount as Money.
func (r Rate) Price() money.Money {
	return money.Must(r.Amount, money.DefaultCurrency)
}

// Label renders the canonical display label, e.g. "$45/day" or "$12.50/hr".
func (r Rate) Label() string {
	amount := r.Amount.String()
	if !r.Amount.Equal(r.Amount.Truncate(0)) {
		amount = r.Amount.StringFixed(money.CentPlaces)
	}
	suffix := string(r.Unit)
	switch r.Unit {
	case UnitHour:
		suffix = "hr"
	case "":
		suffix = string(UnitDay)
	}
	return "$" + amount + "/" + suffix
}

// leadingNumber has no exponent part: "1e9" reads as 1.
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)

// MaxAmount bounds a per-unit rate; larger labels are treated as unparsed.
var MaxAmount = decimal.NewFromInt(1_000_000_000)

// ParsePrice turns a display label such as "$45/day" or "$10/hr" into a Rate.
// It never fails: a label without a usable amount yields a zero, unparsed
// day rate so the booking flow keeps rendering.
func ParsePrice(text string) Rate {
	cleaned := strings.ToLower(strings.Replace(text, "$", "", 1))
	parts := strings.Split(cleaned, "/")

	rate := Rate{Amount: decimal.Zero, Unit: UnitDay}
	if amount, ok := parseAmount(parts[0]); ok {
		rate.Amount = amount
		rate.Parsed = true
	}
	if len(parts) > 1 {
		rate.Unit = unitFromSuffix(parts[1])
	}
	return rate
}

// ParsePriceStrict rejects labels ParsePrice would silently degrade, and
// unit suffixes it would silently treat as days.
func ParsePriceStrict(text string) (Rate, error) {
	rate := ParsePrice(text)
	if !rate.Parsed {
		return Rate{}, fmt.Errorf("%w: %q", ErrUnparsablePrice, text)
	}
	if idx := strings.Index(text, "/"); idx >= 0 {
		suffix := strings.SplitN(text[idx+1:], "/", 2)[0]
		unit, err := ParseUnit(suffix)
		if err != nil {
			return Rate{}, err
		}
		rate.Unit = unit
	}
	return rate, nil
}

func parseAmount(raw string) (decimal.Decimal, bool) {
	match := leadingNumber.FindString(strings.TrimSpace(raw))
	if match == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(match)
	if err != nil || amount.IsNegative() || amount.GreaterThan(MaxAmount) {
		return decimal.Zero, false
	}
	return amount, true
}

// unitFromSuffix is deliberately lenient: anything unrecognised bills per day.
func unitFromSuffix(raw string) RateUnit {
	value := strings.TrimSpace(raw)
	switch {
	case strings.Contains(value, "hr"), strings.Contains(value, "hour"):
		return UnitHour
	case strings.Contains(value, "week"):
		return UnitWeek
	default:
		return UnitDay
	}
}

package dto

import "rentbook/internal/domain/shared/money"

// MoneyDTO carries an amount both as an exact decimal string and in cents.
type MoneyDTO struct {
	Amount   string `json:"amount"`
	Cents    int64  `json:"cents"`
	Currency string `json:"currency"`
	Display  string `json:"display"`
}

func MapMoney(value money.Money) MoneyDTO {
	currency := value.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}
	return MoneyDTO{
		Amount:   value.Amount.StringFixed(money.CentPlaces),
		Cents:    value.Cents(),
		Currency: currency,
		Display:  value.String(),
	}
}

package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an integer amount of a currency's minor unit.
type Money struct {
	Amount   int64
	Currency Code
}

func New(amount int64, code Code) Money {
	return Money{Amount: amount, Currency: code}
}

func Zero(code Code) Money {
	return Money{Currency: code}
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

// Add only works within one currency; convert first otherwise.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s + %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Multiply scales the amount by a real factor, rounding half away from zero.
func (m Money) Multiply(factor decimal.Decimal) Money {
	amount := decimal.NewFromInt(m.Amount).Mul(factor).Round(0).IntPart()
	return Money{Amount: amount, Currency: m.Currency}
}

// Decimal returns the amount in major units. Codes outside the table are
// treated as having no minor unit.
func (m Money) Decimal() decimal.Decimal {
	currency, err := Lookup(m.Currency)
	if err != nil {
		return decimal.NewFromInt(m.Amount)
	}
	return decimal.NewFromInt(m.Amount).Div(currency.unit())
}

func (m Money) String() string {
	places := int32(0)
	if currency, err := Lookup(m.Currency); err == nil {
		places = int32(currency.Exponent)
	}
	return m.Decimal().StringFixed(places) + " " + string(m.Currency)
}

package money

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Code is an ISO-4217 currency code that is known to the currency table.
type Code string

// Currency describes how a currency is split into minor units.
type Currency struct {
	Code     Code
	Base     int
	Exponent int
}

const DefaultCode Code = "USD"

var currencies = map[Code]Currency{
	"AUD": {Code: "AUD", Base: 10, Exponent: 2},
	"BGN": {Code: "BGN", Base: 10, Exponent: 2},
	"BHD": {Code: "BHD", Base: 10, Exponent: 3},
	"BRL": {Code: "BRL", Base: 10, Exponent: 2},
	"BYN": {Code: "BYN", Base: 10, Exponent: 2},
	"CAD": {Code: "CAD", Base: 10, Exponent: 2},
	"CHF": {Code: "CHF", Base: 10, Exponent: 2},
	"CNY": {Code: "CNY", Base: 10, Exponent: 2},
	"CZK": {Code: "CZK", Base: 10, Exponent: 2},
	"DKK": {Code: "DKK", Base: 10, Exponent: 2},
	"EUR": {Code: "EUR", Base: 10, Exponent: 2},
	"GBP": {Code: "GBP", Base: 10, Exponent: 2},
	"HKD": {Code: "HKD", Base: 10, Exponent: 2},
	"HUF": {Code: "HUF", Base: 10, Exponent: 2},
	"IDR": {Code: "IDR", Base: 10, Exponent: 2},
	"ILS": {Code: "ILS", Base: 10, Exponent: 2},
	"INR": {Code: "INR", Base: 10, Exponent: 2},
	"ISK": {Code: "ISK", Base: 10, Exponent: 0},
	"JPY": {Code: "JPY", Base: 10, Exponent: 0},
	"KRW": {Code: "KRW", Base: 10, Exponent: 0},
	"KWD": {Code: "KWD", Base: 10, Exponent: 3},
	"MXN": {Code: "MXN", Base: 10, Exponent: 2},
	"MYR": {Code: "MYR", Base: 10, Exponent: 2},
	"NOK": {Code: "NOK", Base: 10, Exponent: 2},
	"NZD": {Code: "NZD", Base: 10, Exponent: 2},
	"PHP": {Code: "PHP", Base: 10, Exponent: 2},
	"PLN": {Code: "PLN", Base: 10, Exponent: 2},
	"RON": {Code: "RON", Base: 10, Exponent: 2},
	"SEK": {Code: "SEK", Base: 10, Exponent: 2},
	"SGD": {Code: "SGD", Base: 10, Exponent: 2},
	"THB": {Code: "THB", Base: 10, Exponent: 2},
	"TRY": {Code: "TRY", Base: 10, Exponent: 2},
	"UAH": {Code: "UAH", Base: 10, Exponent: 2},
	"USD": {Code: "USD", Base: 10, Exponent: 2},
	"ZAR": {Code: "ZAR", Base: 10, Exponent: 2},
}

// ParseCode validates user input against the currency table.
func ParseCode(value string) (Code, error) {
	code := Code(strings.ToUpper(strings.TrimSpace(value)))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, value)
	}
	if _, ok := currencies[code]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, value)
	}
	return code, nil
}

func Lookup(code Code) (Currency, error) {
	currency, ok := currencies[code]
	if !ok {
		return Currency{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, string(code))
	}
	return currency, nil
}

// Codes returns every known currency code in alphabetical order.
func Codes() []Code {
	result := make([]Code, 0, len(currencies))
	for code := range currencies {
		result = append(result, code)
	}
	slices.Sort(result)
	return result
}

// Normalize converts a decimal amount into integer minor units,
// rounding half away from zero.
func Normalize(amount decimal.Decimal, code Code) (int64, error) {
	currency, err := Lookup(code)
	if err != nil {
		return 0, err
	}
	return amount.Mul(currency.unit()).Round(0).IntPart(), nil
}

func (c Currency) unit() decimal.Decimal {
	unit := decimal.NewFromInt(1)
	base := decimal.NewFromInt(int64(c.Base))
	for i := 0; i < c.Exponent; i++ {
		unit = unit.Mul(base)
	}
	return unit
}

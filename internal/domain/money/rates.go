package money

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FactorDigits is the fixed-point precision of conversion factors.
const FactorDigits = 6

var factorScale = decimal.New(1, FactorDigits)

// RateTable holds rates relative to a single pivot currency.
type RateTable struct {
	Pivot     Code
	Rates     map[Code]decimal.Decimal
	FetchedAt time.Time
	Stale     bool
}

func (t RateTable) Rate(code Code) (decimal.Decimal, error) {
	rate, ok := t.Rates[code]
	if !ok {
		if code == t.Pivot && code != "" {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrMissingRate, code)
	}
	if !rate.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s has non-positive rate", ErrMissingRate, code)
	}
	return rate, nil
}

// Factor returns rate(to)/rate(from) as a fixed-point integer with
// FactorDigits fractional digits.
func (t RateTable) Factor(from, to Code) (int64, error) {
	fromRate, err := t.Rate(from)
	if err != nil {
		return 0, err
	}
	toRate, err := t.Rate(to)
	if err != nil {
		return 0, err
	}
	return toRate.Div(fromRate).Mul(factorScale).Round(0).IntPart(), nil
}

// Convert moves m into target's minor unit using the quantized factor.
func Convert(m Money, target Code, rates RateTable) (Money, error) {
	if m.Currency == target {
		return m, nil
	}

	source, err := Lookup(m.Currency)
	if err != nil {
		return Money{}, err
	}
	destination, err := Lookup(target)
	if err != nil {
		return Money{}, err
	}

	factor, err := rates.Factor(m.Currency, target)
	if err != nil {
		return Money{}, err
	}

	amount := decimal.NewFromInt(m.Amount).
		Mul(decimal.NewFromInt(factor)).
		Div(factorScale).
		Mul(destination.unit()).
		Div(source.unit()).
		Round(0).
		IntPart()

	return Money{Amount: amount, Currency: target}, nil
}

// Sum converts every item into target and adds them up in order.
func Sum(items []Money, target Code, rates RateTable) (Money, error) {
	total := Zero(target)
	for _, item := range items {
		converted, err := Convert(item, target, rates)
		if err != nil {
			return Money{}, err
		}
		total, err = total.Add(converted)
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

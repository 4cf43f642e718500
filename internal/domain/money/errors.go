package money

import "errors"

var (
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrMissingRate      = errors.New("exchange rate missing")
)

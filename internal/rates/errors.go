package rates

import "errors"

var (
	ErrUpstreamUnavailable = errors.New("exchange rates unavailable")
	ErrPivotMismatch       = errors.New("rate table pivot mismatch")
)

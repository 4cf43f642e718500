package revenue

import (
	"time"

	"time-report-go/internal/domain/money"

	"github.com/shopspring/decimal"
)

type SummaryFilter struct {
	ClientID string
	PeriodID string
	From     *time.Time
	To       *time.Time
	// Currency is the requested target; empty means the tenant default.
	Currency string
}

type ClientTotal struct {
	ClientID string
	Total    money.Money
	Hours    decimal.Decimal
	Count    int
}

type Summary struct {
	Total          money.Money
	Hours          decimal.Decimal
	Count          int
	Clients        []ClientTotal
	RatesFetchedAt *time.Time
	RatesStale     bool
}

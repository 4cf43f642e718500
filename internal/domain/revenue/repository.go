package revenue

import (
	"context"

	"time-report-go/internal/domain/money"
	"time-report-go/internal/domain/tracking"
)

// Repository returns timeslots in a stable order so sums are reproducible.
type Repository interface {
	ListTimeslots(ctx context.Context, tenantID string, filter tracking.TimeslotFilter) ([]tracking.Timeslot, error)
}

type RateSource interface {
	Rates(ctx context.Context) (money.RateTable, error)
}

type CurrencyPreference interface {
	DefaultCurrency(ctx context.Context, tenantID string) (money.Code, error)
}

package revenue

import (
	"context"
	"fmt"

	"time-report-go/internal/domain/money"
	"time-report-go/internal/domain/tracking"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("revenue")

type Service struct {
	repo  Repository
	rates RateSource
	prefs CurrencyPreference
}

func NewService(repo Repository, rates RateSource, prefs CurrencyPreference) *Service {
	return &Service{repo: repo, rates: rates, prefs: prefs}
}

// Summary aggregates the tenant's timeslots into one currency. The rate
// table is only fetched when at least one timeslot is in another currency,
// and the same snapshot is used for every line.
func (s *Service) Summary(ctx context.Context, tenantID string, filter SummaryFilter) (Summary, error) {
	ctx, span := tracer.Start(ctx, "revenue.Summary")
	defer span.End()

	target, err := s.targetCurrency(ctx, tenantID, filter.Currency)
	if err != nil {
		return Summary{}, err
	}
	span.SetAttributes(attribute.String("currency", string(target)))

	timeslots, err := s.repo.ListTimeslots(ctx, tenantID, tracking.TimeslotFilter{
		ClientID: filter.ClientID,
		PeriodID: filter.PeriodID,
		From:     filter.From,
		To:       filter.To,
	})
	if err != nil {
		return Summary{}, err
	}
	span.SetAttributes(attribute.Int("timeslots", len(timeslots)))

	result := Summary{
		Total:   money.Zero(target),
		Hours:   decimal.Zero,
		Clients: []ClientTotal{},
	}

	var rates money.RateTable
	if needsRates(timeslots, target) {
		rates, err = s.rates.Rates(ctx)
		if err != nil {
			span.RecordError(err)
			return Summary{}, err
		}
		fetchedAt := rates.FetchedAt
		result.RatesFetchedAt = &fetchedAt
		result.RatesStale = rates.Stale
	}

	byClient := make(map[string][]tracking.Timeslot)
	order := make([]string, 0)
	for _, timeslot := range timeslots {
		if _, ok := byClient[timeslot.ClientID]; !ok {
			order = append(order, timeslot.ClientID)
		}
		byClient[timeslot.ClientID] = append(byClient[timeslot.ClientID], timeslot)
	}

	for _, clientID := range order {
		clientSlots := byClient[clientID]
		total, err := Aggregate(clientSlots, target, rates)
		if err != nil {
			return Summary{}, fmt.Errorf("aggregate client %s: %w", clientID, err)
		}
		hours := sumHours(clientSlots)

		result.Clients = append(result.Clients, ClientTotal{
			ClientID: clientID,
			Total:    total,
			Hours:    hours,
			Count:    len(clientSlots),
		})
		result.Hours = result.Hours.Add(hours)
	}

	result.Total, err = Aggregate(timeslots, target, rates)
	if err != nil {
		return Summary{}, err
	}
	result.Count = len(timeslots)

	return result, nil
}

func (s *Service) targetCurrency(ctx context.Context, tenantID, requested string) (money.Code, error) {
	if requested != "" {
		code, err := money.ParseCode(requested)
		if err != nil {
			return "", &tracking.ValidationError{Field: "currency", Message: "unknown currency code", Err: err}
		}
		return code, nil
	}
	if s.prefs == nil {
		return money.DefaultCode, nil
	}
	return s.prefs.DefaultCurrency(ctx, tenantID)
}

func sumHours(timeslots []tracking.Timeslot) decimal.Decimal {
	hours := decimal.Zero
	for _, timeslot := range timeslots {
		hours = hours.Add(timeslot.Duration)
	}
	return hours
}

package tracking

import (
	"context"

	"github.com/google/uuid"
)

func (s *Service) ListPeriods(ctx context.Context, tenantID, clientID string) ([]Period, error) {
	if err := validateID("client_id", clientID); err != nil {
		return nil, ErrClientNotFound
	}

	if cached, ok := s.cache.Get(tenantID, TagPeriods, clientID); ok {
		if periods, ok := cached.([]Period); ok {
			return append([]Period(nil), periods...), nil
		}
	}

	generation := s.cache.Generation(tenantID, TagPeriods)
	if _, err := s.repo.GetClientByID(ctx, tenantID, clientID); err != nil {
		return nil, err
	}

	periods, err := s.repo.ListPeriods(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(tenantID, TagPeriods, clientID, append([]Period(nil), periods...), generation, s.viewTTL)
	return periods, nil
}

func (s *Service) GetOpenPeriod(ctx context.Context, tenantID, clientID string) (*Period, error) {
	if err := validateID("client_id", clientID); err != nil {
		return nil, ErrClientNotFound
	}
	return s.repo.GetOpenPeriod(ctx, tenantID, clientID)
}

// SuggestNextPeriod returns the default bounds offered when periodID is
// closed: the client's cadence window starting the day after it ends.
func (s *Service) SuggestNextPeriod(ctx context.Context, tenantID, periodID string) (Bounds, error) {
	if err := validateID("period_id", periodID); err != nil {
		return Bounds{}, ErrPeriodNotFound
	}

	period, err := s.repo.GetPeriodByID(ctx, tenantID, periodID)
	if err != nil {
		return Bounds{}, err
	}
	client, err := s.repo.GetClientByID(ctx, tenantID, period.ClientID)
	if err != nil {
		return Bounds{}, err
	}

	return NextBounds(period.EndDate, client.BillingPeriod)
}

// ClosePeriod moves an open period to closed and optionally opens its
// successor. Both writes share one transaction. A period that is missing,
// owned by another tenant, or already closed yields ErrUnauthorized.
func (s *Service) ClosePeriod(ctx context.Context, input ClosePeriodInput) (*ClosePeriodResult, error) {
	ctx, span := tracer.Start(ctx, "tracking.ClosePeriod")
	defer span.End()

	if err := validateID("period_id", input.PeriodID); err != nil {
		return nil, ErrUnauthorized
	}

	var explicit *Bounds
	if input.OpenNew && (input.StartDate != nil || input.EndDate != nil) {
		if input.StartDate == nil || input.EndDate == nil {
			return nil, invalid("start_date", "start and end dates must be provided together")
		}
		bounds := Bounds{Start: dateOnly(*input.StartDate), End: dateOnly(*input.EndDate)}
		if bounds.End.Before(bounds.Start) {
			return nil, &ValidationError{Field: "end_date", Message: "end date must not precede start date", Err: ErrInvalidPeriodBounds}
		}
		explicit = &bounds
	}

	var result ClosePeriodResult
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		affected, err := tx.ClosePeriod(ctx, input.TenantID, input.PeriodID, s.now().UTC())
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrUnauthorized
		}

		closed, err := tx.GetPeriodByID(ctx, input.TenantID, input.PeriodID)
		if err != nil {
			return err
		}
		result.Closed = *closed

		if !input.OpenNew {
			return nil
		}

		bounds := explicit
		if bounds == nil {
			client, err := tx.GetClientByID(ctx, input.TenantID, closed.ClientID)
			if err != nil {
				return err
			}
			next, err := NextBounds(closed.EndDate, client.BillingPeriod)
			if err != nil {
				return err
			}
			bounds = &next
		}

		opened := Period{
			ID:        uuid.NewString(),
			TenantID:  input.TenantID,
			ClientID:  closed.ClientID,
			StartDate: bounds.Start,
			EndDate:   bounds.End,
			Status:    PeriodOpen,
		}
		if err := tx.CreatePeriod(ctx, &opened); err != nil {
			return err
		}
		result.Opened = &opened
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.cache.Invalidate(input.TenantID, TagPeriods)
	return &result, nil
}

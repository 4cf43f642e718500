package tracking

import (
	"context"
	"strings"
	"time"

	"time-report-go/internal/domain/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (s *Service) ListTimeslots(ctx context.Context, tenantID string, filter TimeslotFilter) ([]Timeslot, error) {
	key := timeslotsCacheKey(filter)
	if cached, ok := s.cache.Get(tenantID, TagTimeslots, key); ok {
		if timeslots, ok := cached.([]Timeslot); ok {
			return append([]Timeslot(nil), timeslots...), nil
		}
	}

	generation := s.cache.Generation(tenantID, TagTimeslots)
	timeslots, err := s.repo.ListTimeslots(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	s.cache.Set(tenantID, TagTimeslots, key, append([]Timeslot(nil), timeslots...), generation, s.viewTTL)
	return timeslots, nil
}

// ReportTime logs time against the client's open period. Periods are never
// created implicitly here.
func (s *Service) ReportTime(ctx context.Context, input ReportTimeInput) (*Timeslot, error) {
	if err := validateID("client_id", input.ClientID); err != nil {
		return nil, ErrClientNotFound
	}
	if input.Date.IsZero() {
		return nil, invalid("date", "date is required")
	}
	if err := validateDuration(input.Duration); err != nil {
		return nil, err
	}
	requested, err := optionalCurrency(input.Currency)
	if err != nil {
		return nil, err
	}
	if err := validateChargeRate(input.ChargeRate); err != nil {
		return nil, err
	}

	description := normalizeDescription(input.Description)

	var created Timeslot
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		client, err := tx.GetClientByID(ctx, input.TenantID, input.ClientID)
		if err != nil {
			return err
		}
		code, chargeRate, err := resolveCharge(input.ChargeRate, requested, client.ChargeRate, client.Currency)
		if err != nil {
			return err
		}

		period, err := tx.GetOpenPeriod(ctx, input.TenantID, input.ClientID)
		if err != nil {
			return err
		}

		created = Timeslot{
			ID:          uuid.NewString(),
			TenantID:    input.TenantID,
			ClientID:    input.ClientID,
			PeriodID:    period.ID,
			Date:        dateOnly(input.Date),
			Duration:    input.Duration,
			ChargeRate:  chargeRate,
			Currency:    string(code),
			Description: description,
		}
		return tx.CreateTimeslot(ctx, &created)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(input.TenantID, TagTimeslots)
	return &created, nil
}

// UpdateTimeslot changes duration, rate and currency only. Omitted fields
// keep their stored values.
func (s *Service) UpdateTimeslot(ctx context.Context, input UpdateTimeslotInput) (*Timeslot, error) {
	if err := validateID("timeslot_id", input.TimeslotID); err != nil {
		return nil, ErrTimeslotNotFound
	}
	if input.Duration != nil {
		if err := validateDuration(*input.Duration); err != nil {
			return nil, err
		}
	}
	requested, err := optionalCurrency(input.Currency)
	if err != nil {
		return nil, err
	}
	if err := validateChargeRate(input.ChargeRate); err != nil {
		return nil, err
	}

	var updated Timeslot
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		timeslot, err := tx.GetTimeslotByID(ctx, input.TenantID, input.TimeslotID)
		if err != nil {
			return err
		}
		code, chargeRate, err := resolveCharge(input.ChargeRate, requested, timeslot.ChargeRate, timeslot.Currency)
		if err != nil {
			return err
		}

		if input.Duration != nil {
			timeslot.Duration = *input.Duration
		}
		timeslot.ChargeRate = chargeRate
		timeslot.Currency = string(code)
		timeslot.UpdatedAt = s.now().UTC()

		if err := tx.UpdateTimeslot(ctx, timeslot); err != nil {
			return err
		}

		updated = *timeslot
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(input.TenantID, TagTimeslots)
	return &updated, nil
}

func (s *Service) DeleteTimeslot(ctx context.Context, tenantID, timeslotID string) error {
	if err := validateID("timeslot_id", timeslotID); err != nil {
		return ErrTimeslotNotFound
	}

	deleted, err := s.repo.DeleteTimeslot(ctx, tenantID, timeslotID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTimeslotNotFound
	}

	s.cache.Invalidate(tenantID, TagTimeslots)
	return nil
}

// resolveCharge reuses the stored rate when none is given. A stored rate is
// only valid in its own currency, so a currency change needs an explicit rate.
func resolveCharge(rate *decimal.Decimal, requested money.Code, storedRate int64, storedCurrency string) (money.Code, int64, error) {
	code := requested
	if code == "" {
		code = money.Code(storedCurrency)
	}
	if rate == nil {
		if string(code) != storedCurrency {
			return "", 0, invalid("charge_rate", "charge_rate is required when the currency differs from "+storedCurrency)
		}
		return code, storedRate, nil
	}

	amount, err := normalizeChargeRate(*rate, code)
	if err != nil {
		return "", 0, err
	}
	return code, amount, nil
}

func optionalCurrency(value string) (money.Code, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return parseCurrency(value)
}

func validateChargeRate(rate *decimal.Decimal) error {
	if rate != nil && rate.IsNegative() {
		return invalid("charge_rate", "charge rate must not be negative")
	}
	return nil
}

func normalizeDescription(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func timeslotsCacheKey(filter TimeslotFilter) string {
	parts := []string{"client=" + filter.ClientID, "period=" + filter.PeriodID}
	if filter.From != nil {
		parts = append(parts, "from="+filter.From.Format(time.DateOnly))
	}
	if filter.To != nil {
		parts = append(parts, "to="+filter.To.Format(time.DateOnly))
	}
	return strings.Join(parts, "&")
}

package tracking

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

func (s *Service) ListClients(ctx context.Context, tenantID string) ([]Client, error) {
	if cached, ok := s.cache.Get(tenantID, TagClients, "all"); ok {
		if clients, ok := cached.([]Client); ok {
			return append([]Client(nil), clients...), nil
		}
	}

	generation := s.cache.Generation(tenantID, TagClients)
	clients, err := s.repo.ListClients(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(tenantID, TagClients, "all", append([]Client(nil), clients...), generation, s.viewTTL)
	return clients, nil
}

func (s *Service) GetClient(ctx context.Context, tenantID, clientID string) (*Client, error) {
	if err := validateID("client_id", clientID); err != nil {
		return nil, ErrClientNotFound
	}
	return s.repo.GetClientByID(ctx, tenantID, clientID)
}

// CreateClient stores the client together with its first open period.
func (s *Service) CreateClient(ctx context.Context, input CreateClientInput) (*Client, *Period, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, nil, err
	}
	code, err := parseCurrency(input.Currency)
	if err != nil {
		return nil, nil, err
	}
	chargeRate, err := normalizeChargeRate(input.ChargeRate, code)
	if err != nil {
		return nil, nil, err
	}
	cadence, err := ParseCadence(input.BillingPeriod)
	if err != nil {
		return nil, nil, invalidCadence(err)
	}

	bounds, err := ComputeBounds(s.today(), cadence)
	if err != nil {
		return nil, nil, err
	}

	client := Client{
		ID:            uuid.NewString(),
		TenantID:      input.TenantID,
		Name:          name,
		Currency:      string(code),
		ChargeRate:    chargeRate,
		BillingPeriod: cadence,
		ImageURL:      input.ImageURL,
	}
	period := Period{
		ID:        uuid.NewString(),
		TenantID:  input.TenantID,
		ClientID:  client.ID,
		StartDate: bounds.Start,
		EndDate:   bounds.End,
		Status:    PeriodOpen,
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.CreateClient(ctx, &client); err != nil {
			return err
		}
		return tx.CreatePeriod(ctx, &period)
	})
	if err != nil {
		return nil, nil, err
	}

	s.cache.Invalidate(input.TenantID, TagClients, TagPeriods)
	return &client, &period, nil
}

func (s *Service) UpdateClient(ctx context.Context, input UpdateClientInput) (*Client, error) {
	if err := validateID("client_id", input.ClientID); err != nil {
		return nil, ErrClientNotFound
	}
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	code, err := parseCurrency(input.Currency)
	if err != nil {
		return nil, err
	}
	chargeRate, err := normalizeChargeRate(input.ChargeRate, code)
	if err != nil {
		return nil, err
	}
	cadence, err := ParseCadence(input.BillingPeriod)
	if err != nil {
		return nil, invalidCadence(err)
	}

	var (
		updated    Client
		staleImage *string
	)
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		client, err := tx.GetClientByID(ctx, input.TenantID, input.ClientID)
		if err != nil {
			return err
		}

		client.Name = name
		client.Currency = string(code)
		client.ChargeRate = chargeRate
		client.BillingPeriod = cadence
		if input.ImageURL.Set {
			if client.ImageURL != nil && (input.ImageURL.Value == nil || *input.ImageURL.Value != *client.ImageURL) {
				previous := *client.ImageURL
				staleImage = &previous
			}
			client.ImageURL = input.ImageURL.Value
		}
		client.UpdatedAt = s.now().UTC()

		if err := tx.UpdateClient(ctx, client); err != nil {
			return err
		}

		updated = *client
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(input.TenantID, TagClients)

	if staleImage != nil {
		if err := s.images.DeleteByURL(ctx, *staleImage); err != nil {
			return &updated, fmt.Errorf("delete previous image: %w", err)
		}
	}

	return &updated, nil
}

// DeleteClient removes the client row, its periods, its timeslots and its
// stored image concurrently. Every branch runs to completion; the first
// failure is returned. Views are invalidated as soon as any row is gone.
func (s *Service) DeleteClient(ctx context.Context, tenantID, clientID string) error {
	ctx, span := tracer.Start(ctx, "tracking.DeleteClient")
	defer span.End()

	if err := validateID("client_id", clientID); err != nil {
		return ErrClientNotFound
	}

	client, err := s.repo.GetClientByID(ctx, tenantID, clientID)
	if err != nil {
		return err
	}

	var (
		g       errgroup.Group
		changed atomic.Bool
	)
	g.Go(func() error {
		if _, err := s.repo.DeleteTimeslotsByClient(ctx, tenantID, clientID); err != nil {
			return fmt.Errorf("delete timeslots: %w", err)
		}
		changed.Store(true)
		return nil
	})
	g.Go(func() error {
		if _, err := s.repo.DeletePeriodsByClient(ctx, tenantID, clientID); err != nil {
			return fmt.Errorf("delete periods: %w", err)
		}
		changed.Store(true)
		return nil
	})
	g.Go(func() error {
		deleted, err := s.repo.DeleteClient(ctx, tenantID, clientID)
		if err != nil {
			return fmt.Errorf("delete client: %w", err)
		}
		if !deleted {
			return ErrClientNotFound
		}
		changed.Store(true)
		return nil
	})
	if client.ImageURL != nil && *client.ImageURL != "" {
		imageURL := *client.ImageURL
		g.Go(func() error {
			if err := s.images.DeleteByURL(ctx, imageURL); err != nil {
				return fmt.Errorf("delete image: %w", err)
			}
			return nil
		})
	}

	err = g.Wait()
	if changed.Load() {
		s.cache.Invalidate(tenantID, TagClients, TagPeriods, TagTimeslots)
	}
	if err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

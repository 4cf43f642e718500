package user

import (
	"context"
	"errors"
	"fmt"

	"time-report-go/internal/domain/money"
	"time-report-go/internal/domain/tracking"
)

// ProfileCache holds profiles read by DefaultCurrency.
type ProfileCache interface {
	Get(userID string) (Profile, bool)
	Set(userID string, profile Profile)
	Delete(userID string)
}

type Service struct {
	repo  Repository
	cache ProfileCache
}

func NewService(repo Repository, cache ProfileCache) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) UpsertProfile(ctx context.Context, userID, email, avatarURL string) error {
	if userID == "" {
		return ErrUserIDRequired
	}

	profile := Profile{UserID: userID, DefaultCurrency: string(money.DefaultCode)}
	if email != "" {
		profile.Email = &email
	}
	if avatarURL != "" {
		profile.AvatarURL = &avatarURL
	}

	return s.repo.UpsertProfile(ctx, &profile)
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	return s.repo.GetProfile(ctx, userID)
}

func (s *Service) UpdateDefaultCurrency(ctx context.Context, userID, currency string) (*Profile, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	code, err := money.ParseCode(currency)
	if err != nil {
		return nil, &tracking.ValidationError{Field: "default_currency", Message: "unknown currency code", Err: err}
	}

	if err := s.repo.UpdateDefaultCurrency(ctx, userID, string(code)); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Delete(userID)
	}
	return s.repo.GetProfile(ctx, userID)
}

// DefaultCurrency is the tenant's preferred reporting currency. Tenants
// without a profile get USD; an unusable stored code is an error.
func (s *Service) DefaultCurrency(ctx context.Context, tenantID string) (money.Code, error) {
	profile, err := s.cachedProfile(ctx, tenantID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return money.DefaultCode, nil
		}
		return "", err
	}

	code, err := money.ParseCode(profile.DefaultCurrency)
	if err != nil {
		return "", fmt.Errorf("stored default currency of %s: %w", tenantID, err)
	}
	return code, nil
}

func (s *Service) cachedProfile(ctx context.Context, userID string) (*Profile, error) {
	if s.cache != nil {
		if profile, ok := s.cache.Get(userID); ok {
			return &profile, nil
		}
	}

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(userID, *profile)
	}
	return profile, nil
}

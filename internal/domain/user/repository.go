package user

import "context"

type Repository interface {
	// UpsertProfile never overwrites the stored default currency.
	UpsertProfile(ctx context.Context, profile *Profile) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateDefaultCurrency(ctx context.Context, userID, currency string) error
}

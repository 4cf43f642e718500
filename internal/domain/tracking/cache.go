package tracking

import (
	"context"
	"time"
)

// Tag groups cached read views that a mutation invalidates together.
type Tag string

const (
	TagClients   Tag = "clients"
	TagPeriods   Tag = "periods"
	TagTimeslots Tag = "timeslots"
)

// ViewCache stores read views. Generation moves on every Invalidate of a
// tag; Set drops values that were read under an older generation.
type ViewCache interface {
	Get(tenantID string, tag Tag, key string) (any, bool)
	Generation(tenantID string, tag Tag) uint64
	Set(tenantID string, tag Tag, key string, value any, generation uint64, ttl time.Duration)
	Invalidate(tenantID string, tags ...Tag)
}

type noopViewCache struct{}

func (noopViewCache) Get(string, Tag, string) (any, bool) {
	return nil, false
}

func (noopViewCache) Generation(string, Tag) uint64 {
	return 0
}

func (noopViewCache) Set(string, Tag, string, any, uint64, time.Duration) {}

func (noopViewCache) Invalidate(string, ...Tag) {}

// ImageStore removes uploaded client images referenced by URL.
type ImageStore interface {
	DeleteByURL(ctx context.Context, url string) error
}

type noopImageStore struct{}

func (noopImageStore) DeleteByURL(context.Context, string) error {
	return nil
}

package tracking

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	ListClients(ctx context.Context, tenantID string) ([]Client, error)
	GetClientByID(ctx context.Context, tenantID, clientID string) (*Client, error)
	CreateClient(ctx context.Context, client *Client) error
	UpdateClient(ctx context.Context, client *Client) error
	DeleteClient(ctx context.Context, tenantID, clientID string) (bool, error)

	ListPeriods(ctx context.Context, tenantID, clientID string) ([]Period, error)
	GetPeriodByID(ctx context.Context, tenantID, periodID string) (*Period, error)
	GetOpenPeriod(ctx context.Context, tenantID, clientID string) (*Period, error)
	CreatePeriod(ctx context.Context, period *Period) error
	// ClosePeriod only touches an open period owned by tenantID and returns
	// the number of rows changed.
	ClosePeriod(ctx context.Context, tenantID, periodID string, closedAt time.Time) (int64, error)
	DeletePeriodsByClient(ctx context.Context, tenantID, clientID string) (int64, error)

	ListTimeslots(ctx context.Context, tenantID string, filter TimeslotFilter) ([]Timeslot, error)
	GetTimeslotByID(ctx context.Context, tenantID, timeslotID string) (*Timeslot, error)
	CreateTimeslot(ctx context.Context, timeslot *Timeslot) error
	UpdateTimeslot(ctx context.Context, timeslot *Timeslot) error
	DeleteTimeslot(ctx context.Context, tenantID, timeslotID string) (bool, error)
	DeleteTimeslotsByClient(ctx context.Context, tenantID, clientID string) (int64, error)
}

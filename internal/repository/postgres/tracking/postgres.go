package tracking

import (
	"context"
	"errors"
	"time"

	trackingdomain "time-report-go/internal/domain/tracking"

	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(trackingdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) ListClients(ctx context.Context, tenantID string) ([]trackingdomain.Client, error) {
	var clients []trackingdomain.Client
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name asc, id asc").
		Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *PostgresRepository) GetClientByID(ctx context.Context, tenantID, clientID string) (*trackingdomain.Client, error) {
	var client trackingdomain.Client
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, clientID).
		First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, trackingdomain.ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (r *PostgresRepository) CreateClient(ctx context.Context, client *trackingdomain.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *PostgresRepository) UpdateClient(ctx context.Context, client *trackingdomain.Client) error {
	result := r.db.WithContext(ctx).
		Model(&trackingdomain.Client{}).
		Where("tenant_id = ? AND id = ?", client.TenantID, client.ID).
		Updates(map[string]interface{}{
			"name":           client.Name,
			"currency":       client.Currency,
			"charge_rate":    client.ChargeRate,
			"billing_period": client.BillingPeriod,
			"image_url":      client.ImageURL,
			"updated_at":     client.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return trackingdomain.ErrClientNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteClient(ctx context.Context, tenantID, clientID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, clientID).
		Delete(&trackingdomain.Client{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) ListPeriods(ctx context.Context, tenantID, clientID string) ([]trackingdomain.Period, error) {
	var periods []trackingdomain.Period
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		Order("start_date desc, created_at desc").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

func (r *PostgresRepository) GetPeriodByID(ctx context.Context, tenantID, periodID string) (*trackingdomain.Period, error) {
	var period trackingdomain.Period
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, periodID).
		First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, trackingdomain.ErrPeriodNotFound
		}
		return nil, err
	}
	return &period, nil
}

func (r *PostgresRepository) GetOpenPeriod(ctx context.Context, tenantID, clientID string) (*trackingdomain.Period, error) {
	var period trackingdomain.Period
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND client_id = ? AND status = ?", tenantID, clientID, trackingdomain.PeriodOpen).
		Order("start_date desc").
		First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, trackingdomain.ErrNoOpenPeriod
		}
		return nil, err
	}
	return &period, nil
}

func (r *PostgresRepository) CreatePeriod(ctx context.Context, period *trackingdomain.Period) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *PostgresRepository) ClosePeriod(ctx context.Context, tenantID, periodID string, closedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&trackingdomain.Period{}).
		Where("id = ? AND tenant_id = ? AND status = ?", periodID, tenantID, trackingdomain.PeriodOpen).
		Updates(map[string]interface{}{
			"status":    trackingdomain.PeriodClosed,
			"closed_at": closedAt,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *PostgresRepository) DeletePeriodsByClient(ctx context.Context, tenantID, clientID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		Delete(&trackingdomain.Period{})
	return result.RowsAffected, result.Error
}

func (r *PostgresRepository) ListTimeslots(ctx context.Context, tenantID string, filter trackingdomain.TimeslotFilter) ([]trackingdomain.Timeslot, error) {
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.PeriodID != "" {
		query = query.Where("period_id = ?", filter.PeriodID)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}

	var timeslots []trackingdomain.Timeslot
	if err := query.Order("date desc, created_at desc, id asc").Find(&timeslots).Error; err != nil {
		return nil, err
	}
	return timeslots, nil
}

func (r *PostgresRepository) GetTimeslotByID(ctx context.Context, tenantID, timeslotID string) (*trackingdomain.Timeslot, error) {
	var timeslot trackingdomain.Timeslot
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, timeslotID).
		First(&timeslot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, trackingdomain.ErrTimeslotNotFound
		}
		return nil, err
	}
	return &timeslot, nil
}

func (r *PostgresRepository) CreateTimeslot(ctx context.Context, timeslot *trackingdomain.Timeslot) error {
	return r.db.WithContext(ctx).Create(timeslot).Error
}

func (r *PostgresRepository) UpdateTimeslot(ctx context.Context, timeslot *trackingdomain.Timeslot) error {
	result := r.db.WithContext(ctx).
		Model(&trackingdomain.Timeslot{}).
		Where("tenant_id = ? AND id = ?", timeslot.TenantID, timeslot.ID).
		Updates(map[string]interface{}{
			"duration":    timeslot.Duration,
			"charge_rate": timeslot.ChargeRate,
			"currency":    timeslot.Currency,
			"updated_at":  timeslot.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return trackingdomain.ErrTimeslotNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteTimeslot(ctx context.Context, tenantID, timeslotID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, timeslotID).
		Delete(&trackingdomain.Timeslot{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) DeleteTimeslotsByClient(ctx context.Context, tenantID, clientID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		Delete(&trackingdomain.Timeslot{})
	return result.RowsAffected, result.Error
}

package revenue

import (
	"context"

	trackingdomain "time-report-go/internal/domain/tracking"

	"gorm.io/gorm"
)

// PostgresRepository reads timeslots for aggregation, oldest first, so
// repeated summaries add lines in the same order.
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListTimeslots(ctx context.Context, tenantID string, filter trackingdomain.TimeslotFilter) ([]trackingdomain.Timeslot, error) {
	query := r.db.WithContext(ctx).
		Select("id", "tenant_id", "client_id", "period_id", "date", "duration", "charge_rate", "currency").
		Where("tenant_id = ?", tenantID)
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
	if err := query.Order("date asc, created_at asc, id asc").Find(&timeslots).Error; err != nil {
		return nil, err
	}
	return timeslots, nil
}

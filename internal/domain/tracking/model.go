package tracking

import (
	"time"

	"time-report-go/internal/domain/money"

	"github.com/shopspring/decimal"
)

type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "open"
	PeriodClosed PeriodStatus = "closed"
)

type Client struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	TenantID      string    `gorm:"type:uuid;index;not null"`
	Name          string    `gorm:"not null"`
	Currency      string    `gorm:"size:3;not null"`
	ChargeRate    int64     `gorm:"not null"`
	BillingPeriod Cadence   `gorm:"type:varchar(16);not null"`
	ImageURL      *string   `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// Charge is the client's default hourly rate.
func (c Client) Charge() money.Money {
	return money.New(c.ChargeRate, money.Code(c.Currency))
}

type Period struct {
	ID        string       `gorm:"type:uuid;primaryKey"`
	TenantID  string       `gorm:"type:uuid;index;not null"`
	ClientID  string       `gorm:"type:uuid;index;not null"`
	StartDate time.Time    `gorm:"type:date;not null"`
	EndDate   time.Time    `gorm:"type:date;not null"`
	Status    PeriodStatus `gorm:"type:varchar(16);not null;index"`
	ClosedAt  *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (p Period) IsOpen() bool {
	return p.Status == PeriodOpen
}

type Timeslot struct {
	ID          string          `gorm:"type:uuid;primaryKey"`
	TenantID    string          `gorm:"type:uuid;index;not null"`
	ClientID    string          `gorm:"type:uuid;index;not null"`
	PeriodID    string          `gorm:"type:uuid;index;not null"`
	Date        time.Time       `gorm:"type:date;not null"`
	Duration    decimal.Decimal `gorm:"type:numeric(10,4);not null"`
	ChargeRate  int64           `gorm:"not null"`
	Currency    string          `gorm:"size:3;not null"`
	Description *string         `gorm:"type:text"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
}

// Charge is the hourly rate recorded on the timeslot.
func (t Timeslot) Charge() money.Money {
	return money.New(t.ChargeRate, money.Code(t.Currency))
}

// LineTotal is the hourly rate multiplied by the decimal duration.
func (t Timeslot) LineTotal() money.Money {
	return t.Charge().Multiply(t.Duration)
}

type TimeslotFilter struct {
	ClientID string
	PeriodID string
	From     *time.Time
	To       *time.Time
}

type CreateClientInput struct {
	TenantID      string
	Name          string
	Currency      string
	ChargeRate    decimal.Decimal
	BillingPeriod string
	ImageURL      *string
}

type OptionalNullableString struct {
	Set   bool
	Value *string
}

type UpdateClientInput struct {
	TenantID      string
	ClientID      string
	Name          string
	Currency      string
	ChargeRate    decimal.Decimal
	BillingPeriod string
	ImageURL      OptionalNullableString
}

type ClosePeriodInput struct {
	TenantID  string
	PeriodID  string
	OpenNew   bool
	StartDate *time.Time
	EndDate   *time.Time
}

type ClosePeriodResult struct {
	Closed Period
	Opened *Period
}

// ReportTimeInput leaves ChargeRate nil and Currency empty to bill at the
// client's rate. A rate is required once the currency differs from the
// client's.
type ReportTimeInput struct {
	TenantID    string
	ClientID    string
	Date        time.Time
	Duration    decimal.Decimal
	ChargeRate  *decimal.Decimal
	Currency    string
	Description *string
}

// UpdateTimeslotInput keeps stored values for nil or empty fields.
type UpdateTimeslotInput struct {
	TenantID   string
	TimeslotID string
	Duration   *decimal.Decimal
	ChargeRate *decimal.Decimal
	Currency   string
}

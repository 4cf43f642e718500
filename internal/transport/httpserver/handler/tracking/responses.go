package tracking

import (
	"time"

	trackingdomain "time-report-go/internal/domain/tracking"
	commonhandler "time-report-go/internal/transport/httpserver/handler/common"
)

type clientResponse struct {
	ID            string                      `json:"id"`
	Name          string                      `json:"name"`
	Currency      string                      `json:"currency"`
	ChargeRate    commonhandler.MoneyResponse `json:"charge_rate"`
	BillingPeriod string                      `json:"billing_period"`
	ImageURL      *string                     `json:"image_url"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

type periodResponse struct {
	ID        string     `json:"id"`
	ClientID  string     `json:"client_id"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Status    string     `json:"status"`
	ClosedAt  *time.Time `json:"closed_at"`
	CreatedAt time.Time  `json:"created_at"`
}

type timeslotResponse struct {
	ID          string                      `json:"id"`
	ClientID    string                      `json:"client_id"`
	PeriodID    string                      `json:"period_id"`
	Date        string                      `json:"date"`
	Duration    string                      `json:"duration"`
	ChargeRate  commonhandler.MoneyResponse `json:"charge_rate"`
	LineTotal   commonhandler.MoneyResponse `json:"line_total"`
	Description *string                     `json:"description"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

type boundsResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func toClientResponse(client trackingdomain.Client) clientResponse {
	return clientResponse{
		ID:            client.ID,
		Name:          client.Name,
		Currency:      client.Currency,
		ChargeRate:    commonhandler.ToMoneyResponse(client.Charge()),
		BillingPeriod: string(client.BillingPeriod),
		ImageURL:      client.ImageURL,
		CreatedAt:     client.CreatedAt,
		UpdatedAt:     client.UpdatedAt,
	}
}

func toPeriodResponse(period trackingdomain.Period) periodResponse {
	return periodResponse{
		ID:        period.ID,
		ClientID:  period.ClientID,
		StartDate: formatDate(period.StartDate),
		EndDate:   formatDate(period.EndDate),
		Status:    string(period.Status),
		ClosedAt:  period.ClosedAt,
		CreatedAt: period.CreatedAt,
	}
}

func toTimeslotResponse(timeslot trackingdomain.Timeslot) timeslotResponse {
	return timeslotResponse{
		ID:          timeslot.ID,
		ClientID:    timeslot.ClientID,
		PeriodID:    timeslot.PeriodID,
		Date:        formatDate(timeslot.Date),
		Duration:    timeslot.Duration.String(),
		ChargeRate:  commonhandler.ToMoneyResponse(timeslot.Charge()),
		LineTotal:   commonhandler.ToMoneyResponse(timeslot.LineTotal()),
		Description: timeslot.Description,
		CreatedAt:   timeslot.CreatedAt,
		UpdatedAt:   timeslot.UpdatedAt,
	}
}

func toBoundsResponse(bounds trackingdomain.Bounds) boundsResponse {
	return boundsResponse{
		StartDate: formatDate(bounds.Start),
		EndDate:   formatDate(bounds.End),
	}
}

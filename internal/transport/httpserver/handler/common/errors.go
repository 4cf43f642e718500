package common

import (
	"errors"
	"net/http"

	"time-report-go/internal/domain/money"
	trackingdomain "time-report-go/internal/domain/tracking"
	userdomain "time-report-go/internal/domain/user"
	"time-report-go/internal/rates"
	"time-report-go/pkg/logger"
)

// WriteServiceError maps a domain error onto the HTTP error envelope and
// logs it under op. User-caused failures log as business errors.
func WriteServiceError(w http.ResponseWriter, log logger.Logger, op string, err error, args ...any) {
	var validation *trackingdomain.ValidationError

	switch {
	case errors.As(err, &validation):
		log.BusinessError(op+": invalid input", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", validation.Error())
	case errors.Is(err, money.ErrInvalidCurrency):
		log.BusinessError(op+": invalid currency", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", "unknown currency code")
	case errors.Is(err, trackingdomain.ErrUnauthorized):
		log.BusinessError(op+": unauthorized", err, args...)
		writeError(w, http.StatusForbidden, "unauthorized", "operation not permitted")
	case errors.Is(err, trackingdomain.ErrClientNotFound):
		log.BusinessError(op+": client not found", err, args...)
		writeError(w, http.StatusNotFound, "client_not_found", "client not found")
	case errors.Is(err, trackingdomain.ErrPeriodNotFound):
		log.BusinessError(op+": period not found", err, args...)
		writeError(w, http.StatusNotFound, "period_not_found", "period not found")
	case errors.Is(err, trackingdomain.ErrTimeslotNotFound):
		log.BusinessError(op+": timeslot not found", err, args...)
		writeError(w, http.StatusNotFound, "timeslot_not_found", "timeslot not found")
	case errors.Is(err, userdomain.ErrProfileNotFound):
		log.BusinessError(op+": profile not found", err, args...)
		writeError(w, http.StatusNotFound, "profile_not_found", "profile not found")
	case errors.Is(err, trackingdomain.ErrNoOpenPeriod):
		log.BusinessError(op+": no open period", err, args...)
		writeError(w, http.StatusConflict, "no_open_period", "client has no open period")
	case errors.Is(err, rates.ErrUpstreamUnavailable), errors.Is(err, money.ErrMissingRate):
		log.InternalError(op+": exchange rates unavailable", err, args...)
		writeError(w, http.StatusServiceUnavailable, "rates_unavailable", "exchange rates unavailable")
	default:
		log.InternalError(op+": failed", err, args...)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

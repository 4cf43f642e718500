package tracking

import (
	"net/http"
	"strings"

	trackingdomain "time-report-go/internal/domain/tracking"
	commonhandler "time-report-go/internal/transport/httpserver/handler/common"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type reportTimeRequest struct {
	ClientID    string           `json:"client_id"`
	Date        string           `json:"date"`
	Duration    decimal.Decimal  `json:"duration"`
	ChargeRate  *decimal.Decimal `json:"charge_rate"`
	Currency    string           `json:"currency"`
	Description *string          `json:"description"`
}

type updateTimeslotRequest struct {
	Duration   *decimal.Decimal `json:"duration"`
	ChargeRate *decimal.Decimal `json:"charge_rate"`
	Currency   string           `json:"currency"`
}

func (h *Handlers) ListTimeslots(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	clientID, err := commonhandler.ParseIDParam(query.Get("client_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid client_id")
		return
	}
	periodID, err := commonhandler.ParseIDParam(query.Get("period_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid period_id")
		return
	}
	from, err := parseDateParam(query.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid from date")
		return
	}
	to, err := parseDateParam(query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid to date")
		return
	}

	timeslots, err := h.Tracking.ListTimeslots(r.Context(), tenant, trackingdomain.TimeslotFilter{
		ClientID: clientID,
		PeriodID: periodID,
		From:     from,
		To:       to,
	})
	if err != nil {
		h.fail(w, "timeslots.list", err, "tenant_id", tenant)
		return
	}

	response := make([]timeslotResponse, 0, len(timeslots))
	for _, timeslot := range timeslots {
		response = append(response, toTimeslotResponse(timeslot))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) ReportTime(w http.ResponseWriter, r *http.Request) {
	var req reportTimeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	date, err := commonhandler.ParseDateRequired(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid date")
		return
	}

	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	input := trackingdomain.ReportTimeInput{
		TenantID:    tenant,
		ClientID:    strings.TrimSpace(req.ClientID),
		Date:        date,
		Duration:    req.Duration,
		ChargeRate:  req.ChargeRate,
		Currency:    req.Currency,
		Description: req.Description,
	}

	created, err := h.Tracking.ReportTime(r.Context(), input)
	if err != nil {
		h.fail(w, "timeslots.report", err, "tenant_id", tenant, "client_id", input.ClientID)
		return
	}

	writeJSON(w, http.StatusCreated, toTimeslotResponse(*created))
}

func (h *Handlers) UpdateTimeslot(w http.ResponseWriter, r *http.Request) {
	timeslotID := strings.TrimSpace(chi.URLParam(r, "id"))

	var req updateTimeslotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	updated, err := h.Tracking.UpdateTimeslot(r.Context(), trackingdomain.UpdateTimeslotInput{
		TenantID:   tenant,
		TimeslotID: timeslotID,
		Duration:   req.Duration,
		ChargeRate: req.ChargeRate,
		Currency:   req.Currency,
	})
	if err != nil {
		h.fail(w, "timeslots.update", err, "tenant_id", tenant, "timeslot_id", timeslotID)
		return
	}

	writeJSON(w, http.StatusOK, toTimeslotResponse(*updated))
}

func (h *Handlers) DeleteTimeslot(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}
	timeslotID := strings.TrimSpace(chi.URLParam(r, "id"))

	if err := h.Tracking.DeleteTimeslot(r.Context(), tenant, timeslotID); err != nil {
		h.fail(w, "timeslots.delete", err, "tenant_id", tenant, "timeslot_id", timeslotID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

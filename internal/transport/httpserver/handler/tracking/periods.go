package tracking

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	trackingdomain "time-report-go/internal/domain/tracking"

	"github.com/go-chi/chi/v5"
)

type closePeriodRequest struct {
	OpenNewPeriod bool   `json:"open_new_period"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
}

type closePeriodResponse struct {
	Closed periodResponse  `json:"closed"`
	Opened *periodResponse `json:"opened"`
}

func (h *Handlers) ListPeriods(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}
	clientID := strings.TrimSpace(chi.URLParam(r, "id"))

	periods, err := h.Tracking.ListPeriods(r.Context(), tenant, clientID)
	if err != nil {
		h.fail(w, "periods.list", err, "tenant_id", tenant, "client_id", clientID)
		return
	}

	response := make([]periodResponse, 0, len(periods))
	for _, period := range periods {
		response = append(response, toPeriodResponse(period))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetOpenPeriod(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}
	clientID := strings.TrimSpace(chi.URLParam(r, "id"))

	period, err := h.Tracking.GetOpenPeriod(r.Context(), tenant, clientID)
	if err != nil {
		h.fail(w, "periods.open", err, "tenant_id", tenant, "client_id", clientID)
		return
	}

	writeJSON(w, http.StatusOK, toPeriodResponse(*period))
}

func (h *Handlers) SuggestNextPeriod(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}
	periodID := strings.TrimSpace(chi.URLParam(r, "id"))

	bounds, err := h.Tracking.SuggestNextPeriod(r.Context(), tenant, periodID)
	if err != nil {
		h.fail(w, "periods.next", err, "tenant_id", tenant, "period_id", periodID)
		return
	}

	writeJSON(w, http.StatusOK, toBoundsResponse(bounds))
}

func (h *Handlers) ClosePeriod(w http.ResponseWriter, r *http.Request) {
	periodID := strings.TrimSpace(chi.URLParam(r, "id"))

	var req closePeriodRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	start, err := parseDateParam(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid start_date")
		return
	}
	end, err := parseDateParam(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid end_date")
		return
	}

	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	result, err := h.Tracking.ClosePeriod(r.Context(), trackingdomain.ClosePeriodInput{
		TenantID:  tenant,
		PeriodID:  periodID,
		OpenNew:   req.OpenNewPeriod,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		h.fail(w, "periods.close", err, "tenant_id", tenant, "period_id", periodID)
		return
	}

	response := closePeriodResponse{Closed: toPeriodResponse(result.Closed)}
	if result.Opened != nil {
		opened := toPeriodResponse(*result.Opened)
		response.Opened = &opened
	}

	h.log.Info("periods.close: closed", "tenant_id", tenant, "period_id", periodID, "opened", result.Opened != nil, "closed_at", closedAt(result.Closed))
	writeJSON(w, http.StatusOK, response)
}

func closedAt(period trackingdomain.Period) string {
	if period.ClosedAt == nil {
		return ""
	}
	return period.ClosedAt.Format(time.RFC3339)
}

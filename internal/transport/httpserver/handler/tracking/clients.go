package tracking

import (
	"net/http"
	"strings"

	trackingdomain "time-report-go/internal/domain/tracking"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type createClientRequest struct {
	Name          string          `json:"name"`
	Currency      string          `json:"currency"`
	ChargeRate    decimal.Decimal `json:"charge_rate"`
	BillingPeriod string          `json:"billing_period"`
	ImageURL      *string         `json:"image_url"`
}

type updateClientRequest struct {
	Name          string                 `json:"name"`
	Currency      string                 `json:"currency"`
	ChargeRate    decimal.Decimal        `json:"charge_rate"`
	BillingPeriod string                 `json:"billing_period"`
	ImageURL      optionalNullableString `json:"image_url"`
}

type createClientResponse struct {
	Client clientResponse `json:"client"`
	Period periodResponse `json:"period"`
}

func (h *Handlers) ListClients(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	clients, err := h.Tracking.ListClients(r.Context(), tenant)
	if err != nil {
		h.fail(w, "clients.list", err, "tenant_id", tenant)
		return
	}

	response := make([]clientResponse, 0, len(clients))
	for _, client := range clients {
		response = append(response, toClientResponse(client))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetClient(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}
	clientID := strings.TrimSpace(chi.URLParam(r, "id"))

	client, err := h.Tracking.GetClient(r.Context(), tenant, clientID)
	if err != nil {
		h.fail(w, "clients.get", err, "tenant_id", tenant, "client_id", clientID)
		return
	}

	writeJSON(w, http.StatusOK, toClientResponse(*client))
}

func (h *Handlers) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	client, period, err := h.Tracking.CreateClient(r.Context(), trackingdomain.CreateClientInput{
		TenantID:      tenant,
		Name:          req.Name,
		Currency:      req.Currency,
		ChargeRate:    req.ChargeRate,
		BillingPeriod: req.BillingPeriod,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		h.fail(w, "clients.create", err, "tenant_id", tenant)
		return
	}

	h.log.Info("clients.create: created", "tenant_id", tenant, "client_id", client.ID, "period_id", period.ID)
	writeJSON(w, http.StatusCreated, createClientResponse{
		Client: toClientResponse(*client),
		Period: toPeriodResponse(*period),
	})
}

func (h *Handlers) UpdateClient(w http.ResponseWriter, r *http.Request) {
	clientID := strings.TrimSpace(chi.URLParam(r, "id"))

	var req updateClientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	updated, err := h.Tracking.UpdateClient(r.Context(), trackingdomain.UpdateClientInput{
		TenantID:      tenant,
		ClientID:      clientID,
		Name:          req.Name,
		Currency:      req.Currency,
		ChargeRate:    req.ChargeRate,
		BillingPeriod: req.BillingPeriod,
		ImageURL: trackingdomain.OptionalNullableString{
			Set:   req.ImageURL.Set,
			Value: req.ImageURL.Value,
		},
	})
	if err != nil {
		if updated == nil {
			h.fail(w, "clients.update", err, "tenant_id", tenant, "client_id", clientID)
			return
		}
		// The row is saved; only the old image could not be removed.
		h.log.InternalError("clients.update: previous image left behind", err, "tenant_id", tenant, "client_id", clientID)
	}

	writeJSON(w, http.StatusOK, toClientResponse(*updated))
}

func (h *Handlers) DeleteClient(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}
	clientID := strings.TrimSpace(chi.URLParam(r, "id"))

	if err := h.Tracking.DeleteClient(r.Context(), tenant, clientID); err != nil {
		h.fail(w, "clients.delete", err, "tenant_id", tenant, "client_id", clientID)
		return
	}

	h.log.Info("clients.delete: deleted", "tenant_id", tenant, "client_id", clientID)
	w.WriteHeader(http.StatusNoContent)
}

package revenue

import (
	"context"
	"net/http"
	"time"

	"time-report-go/internal/domain/money"
	revenuedomain "time-report-go/internal/domain/revenue"
	commonhandler "time-report-go/internal/transport/httpserver/handler/common"
	"time-report-go/internal/transport/httpserver/middleware"
	"time-report-go/pkg/logger"
)

type RateSource interface {
	Rates(ctx context.Context) (money.RateTable, error)
}

type Handlers struct {
	Revenue *revenuedomain.Service
	Rates   RateSource
	log     logger.Logger
}

func New(revenue *revenuedomain.Service, rates RateSource, log logger.Logger) *Handlers {
	return &Handlers{
		Revenue: revenue,
		Rates:   rates,
		log:     log,
	}
}

type clientTotalResponse struct {
	ClientID string                      `json:"client_id"`
	Total    commonhandler.MoneyResponse `json:"total"`
	Hours    string                      `json:"hours"`
	Count    int                         `json:"count"`
}

type summaryResponse struct {
	Total          commonhandler.MoneyResponse `json:"total"`
	Hours          string                      `json:"hours"`
	Count          int                         `json:"count"`
	Clients        []clientTotalResponse       `json:"clients"`
	RatesFetchedAt *time.Time                  `json:"rates_fetched_at"`
	RatesStale     bool                        `json:"rates_stale"`
}

type ratesResponse struct {
	Pivot     string            `json:"pivot"`
	FetchedAt time.Time         `json:"fetched_at"`
	Stale     bool              `json:"stale"`
	Rates     map[string]string `json:"rates"`
}

func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	tenant, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		commonhandler.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	query := r.URL.Query()
	clientID, err := commonhandler.ParseIDParam(query.Get("client_id"))
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid client_id")
		return
	}
	periodID, err := commonhandler.ParseIDParam(query.Get("period_id"))
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid period_id")
		return
	}
	from, err := commonhandler.ParseDateParam(query.Get("from"))
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid from date")
		return
	}
	to, err := commonhandler.ParseDateParam(query.Get("to"))
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid to date")
		return
	}

	summary, err := h.Revenue.Summary(r.Context(), tenant, revenuedomain.SummaryFilter{
		ClientID: clientID,
		PeriodID: periodID,
		From:     from,
		To:       to,
		Currency: query.Get("currency"),
	})
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "revenue.summary", err, "tenant_id", tenant)
		return
	}

	clients := make([]clientTotalResponse, 0, len(summary.Clients))
	for _, client := range summary.Clients {
		clients = append(clients, clientTotalResponse{
			ClientID: client.ClientID,
			Total:    commonhandler.ToMoneyResponse(client.Total),
			Hours:    client.Hours.String(),
			Count:    client.Count,
		})
	}

	commonhandler.WriteJSON(w, http.StatusOK, summaryResponse{
		Total:          commonhandler.ToMoneyResponse(summary.Total),
		Hours:          summary.Hours.String(),
		Count:          summary.Count,
		Clients:        clients,
		RatesFetchedAt: summary.RatesFetchedAt,
		RatesStale:     summary.RatesStale,
	})
}

func (h *Handlers) CurrentRates(w http.ResponseWriter, r *http.Request) {
	table, err := h.Rates.Rates(r.Context())
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "rates.get", err)
		return
	}

	rates := make(map[string]string, len(table.Rates))
	for code, rate := range table.Rates {
		rates[string(code)] = rate.String()
	}

	commonhandler.WriteJSON(w, http.StatusOK, ratesResponse{
		Pivot:     string(table.Pivot),
		FetchedAt: table.FetchedAt,
		Stale:     table.Stale,
		Rates:     rates,
	})
}

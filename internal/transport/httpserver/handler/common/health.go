package common

import (
	"net/http"
	"time"

	"time-report-go/internal/domain/money"
)

type healthResponse struct {
	Status string       `json:"status"`
	Rates  *ratesHealth `json:"rates,omitempty"`
}

type ratesHealth struct {
	Loaded    bool       `json:"loaded"`
	Stale     bool       `json:"stale"`
	FetchedAt *time.Time `json:"fetched_at"`
}

type currencyResponse struct {
	Code     string `json:"code"`
	Exponent int    `json:"exponent"`
}

// Health never triggers a rate fetch; it only reports the cached table.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{Status: "ok"}
	if h.rates != nil {
		health := &ratesHealth{}
		if table, ok := h.rates.Snapshot(); ok {
			fetchedAt := table.FetchedAt
			health.Loaded = true
			health.Stale = table.Stale
			health.FetchedAt = &fetchedAt
		}
		response.Rates = health
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) Currencies(w http.ResponseWriter, r *http.Request) {
	codes := money.Codes()
	response := make([]currencyResponse, 0, len(codes))
	for _, code := range codes {
		currency, err := money.Lookup(code)
		if err != nil {
			continue
		}
		response = append(response, currencyResponse{Code: string(code), Exponent: currency.Exponent})
	}
	writeJSON(w, http.StatusOK, response)
}

package common

import (
	"net/http"

	"time-report-go/internal/transport/httpserver/middleware"
)

// authMeResponse describes the caller as a tenant: every client, period and
// timeslot is scoped by TenantID, and reports default to DefaultCurrency.
type authMeResponse struct {
	ID              string `json:"id"`
	TenantID        string `json:"tenant_id"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	AvatarURL       string `json:"avatar_url"`
	DefaultCurrency string `json:"default_currency"`
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	currency, err := h.Profiles.DefaultCurrency(r.Context(), user.ID)
	if err != nil {
		WriteServiceError(w, h.log, "auth.me", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, authMeResponse{
		ID:              user.ID,
		TenantID:        user.ID,
		Email:           user.Email,
		Name:            user.Name,
		AvatarURL:       user.AvatarURL,
		DefaultCurrency: string(currency),
	})
}

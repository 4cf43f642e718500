package common

import (
	"net/http"
	"time"

	userdomain "time-report-go/internal/domain/user"
	"time-report-go/internal/transport/httpserver/middleware"
)

type profileResponse struct {
	UserID          string    `json:"user_id"`
	Email           *string   `json:"email"`
	AvatarURL       *string   `json:"avatar_url"`
	DefaultCurrency string    `json:"default_currency"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type updateProfileRequest struct {
	DefaultCurrency string `json:"default_currency"`
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	profile, err := h.Profiles.GetProfile(r.Context(), user.ID)
	if err != nil {
		WriteServiceError(w, h.log, "profile.get", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(*profile))
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	profile, err := h.Profiles.UpdateDefaultCurrency(r.Context(), user.ID, req.DefaultCurrency)
	if err != nil {
		WriteServiceError(w, h.log, "profile.update", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(*profile))
}

func toProfileResponse(profile userdomain.Profile) profileResponse {
	return profileResponse{
		UserID:          profile.UserID,
		Email:           profile.Email,
		AvatarURL:       profile.AvatarURL,
		DefaultCurrency: profile.DefaultCurrency,
		CreatedAt:       profile.CreatedAt,
		UpdatedAt:       profile.UpdatedAt,
	}
}

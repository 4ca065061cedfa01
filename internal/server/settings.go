package server

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/headtrack/internal/app"
	"github.com/ayusman/headtrack/internal/smoothing"
	"github.com/ayusman/headtrack/internal/tracking"
)

// SettingsHandler reads and updates the runtime settings.
type SettingsHandler struct {
	tracker Tracker
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(t Tracker) *SettingsHandler {
	return &SettingsHandler{tracker: t}
}

// settingsRequest is a partial update; absent fields keep their value.
type settingsRequest struct {
	Strategy   *smoothing.Strategy  `json:"strategy"`
	ScaleIndex *int                 `json:"scale_index"`
	Paused     *bool                `json:"paused"`
	MissPolicy *tracking.MissPolicy `json:"miss_policy"`
}

type settingsResponse struct {
	app.Settings
	ScaleFactor float64 `json:"scale"`
}

func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, toSettingsResponse(h.tracker.Settings()))
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid settings: "+err.Error())
		return
	}

	updated := h.tracker.UpdateSettings(func(s app.Settings) app.Settings {
		if req.Strategy != nil {
			s.Strategy = *req.Strategy
		}
		if req.ScaleIndex != nil {
			s.ScaleIndex = *req.ScaleIndex
		}
		if req.Paused != nil {
			s.Paused = *req.Paused
		}
		if req.MissPolicy != nil {
			s.MissPolicy = *req.MissPolicy
		}
		return s
	})

	writeJSON(w, http.StatusOK, toSettingsResponse(updated))
}

func toSettingsResponse(s app.Settings) settingsResponse {
	return settingsResponse{Settings: s, ScaleFactor: s.Scale()}
}

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/headtrack/internal/metrics"
	"github.com/ayusman/headtrack/internal/store"
)

// SessionHandler handles HTTP requests for recorded sessions.
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a new SessionHandler with the given store.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

// ServeHTTP routes /api/sessions, /api/sessions/{id},
// /api/sessions/{id}/samples and /api/sessions/{id}/chart.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := parts[0]

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && (parts[1] == "samples" || parts[1] == "chart"):
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if parts[1] == "samples" {
			h.samples(w, r, id)
		} else {
			h.chart(w, r, id)
		}
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type sessionResponse struct {
	ID         string `json:"id"`
	Detector   string `json:"detector"`
	Strategy   string `json:"strategy"`
	MissPolicy string `json:"miss_policy"`
	StartedAt  string `json:"started_at"`
	EndedAt    string `json:"ended_at,omitempty"`
	Frames     int    `json:"frames"`
	Detections int    `json:"detections"`

	Summary           *metrics.Summary `json:"summary,omitempty"`
	LocalizationError *float64         `json:"localization_error,omitempty"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type listSamplesResponse struct {
	Samples []store.Sample `json:"samples"`
}

func toResponse(s *store.Session) sessionResponse {
	resp := sessionResponse{
		ID:         s.ID,
		Detector:   s.Detector,
		Strategy:   s.Strategy,
		MissPolicy: s.MissPolicy,
		StartedAt:  s.StartedAt.Format(time.RFC3339),
		Frames:     s.Frames,
		Detections: s.Detections,
	}
	if s.EndedAt != nil {
		resp.EndedAt = s.EndedAt.Format(time.RFC3339)
	}
	return resp
}

// metricSamples converts stored samples to the metrics representation.
func metricSamples(samples []store.Sample) []metrics.Sample {
	out := make([]metrics.Sample, len(samples))
	for i, s := range samples {
		out[i] = metrics.Sample{
			Detected:  s.Detected,
			X:         s.X,
			Y:         s.Y,
			LatencyUS: float64(s.LatencyUS),
		}
	}
	return out
}

// list handles GET /api/sessions.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, toResponse(s))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/sessions/{id}. The optional target_x and target_y
// query parameters add the mean localization error against that point.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sess, samples, ok := h.load(w, id)
	if !ok {
		return
	}

	resp := toResponse(sess)
	ms := metricSamples(samples)
	summary := metrics.Summarize(ms)
	resp.Summary = &summary

	q := r.URL.Query()
	if q.Has("target_x") || q.Has("target_y") {
		tx, errX := strconv.ParseFloat(q.Get("target_x"), 64)
		ty, errY := strconv.ParseFloat(q.Get("target_y"), 64)
		if errX != nil || errY != nil {
			writeError(w, http.StatusBadRequest, "target_x and target_y must both be numbers")
			return
		}
		e := metrics.LocalizationError(ms, tx, ty)
		resp.LocalizationError = &e
	}

	writeJSON(w, http.StatusOK, resp)
}

// delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// samples handles GET /api/sessions/{id}/samples.
func (h *SessionHandler) samples(w http.ResponseWriter, r *http.Request, id string) {
	_, samples, ok := h.load(w, id)
	if !ok {
		return
	}
	if samples == nil {
		samples = []store.Sample{}
	}
	writeJSON(w, http.StatusOK, listSamplesResponse{Samples: samples})
}

// load fetches a session and its samples, writing the error response
// itself when that fails.
func (h *SessionHandler) load(w http.ResponseWriter, id string) (*store.Session, []store.Sample, bool) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return nil, nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return nil, nil, false
	}

	samples, err := h.store.Samples().List(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return nil, nil, false
	}
	return sess, samples, true
}

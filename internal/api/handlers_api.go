package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	readings, err := s.climate.Precipitation(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, precipitationPayload(readings))
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	ids, err := s.climate.Stations(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stationsPayload(ids))
}

func (s *Server) handleTobs(w http.ResponseWriter, r *http.Request) {
	obs, err := s.climate.TemperatureObservations(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tobsPayload(obs))
}

// handleTemperatureStats serves both /{start} and /{start}/{end}. Dates are
// passed through unvalidated.
func (s *Server) handleTemperatureStats(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	start := vars["start"]

	var end *string
	if e, ok := vars["end"]; ok {
		end = &e
	}

	stats, err := s.climate.TemperatureStats(r.Context(), start, end)
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, temperatureStatsPayload(stats))
}

type HealthStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.pinger.Ping(r.Context()); err != nil {
		slog.Error("health check failed", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthStatus{Status: "error", Error: "dataset unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, HealthStatus{Status: "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "err", err)
	}
}

func serverError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": http.StatusText(http.StatusInternalServerError)})
}

/*
health.go - Server registry and health-check HTTP handlers

ENDPOINTS:
  GET/POST       /api/health/servers
  PUT/DELETE     /api/health/servers/{id}
  GET            /api/health/check    Probe every registered server
*/
package api

import (
	"errors"
	"net/http"

	"github.com/deskhub/team-portal/health"
	"github.com/deskhub/team-portal/store/sqlite"
)

// ListServers returns the monitored-server registry.
func (h *Handler) ListServers(w http.ResponseWriter, r *http.Request) {
	servers, err := h.Store.ListServers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list servers", err)
		return
	}

	dtos := make([]ServerDTO, len(servers))
	for i, s := range servers {
		dtos[i] = toServerDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateServer registers a server for monitoring.
func (h *Handler) CreateServer(w http.ResponseWriter, r *http.Request) {
	var req ServerRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	srv, err := h.Store.InsertServer(r.Context(), health.Server{
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, sqlite.ErrDuplicateServerName) {
			writeError(w, http.StatusConflict, "Server name already registered", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to register server", err)
		return
	}
	writeJSON(w, http.StatusCreated, toServerDTO(*srv))
}

// UpdateServer replaces a registry entry's fields.
func (h *Handler) UpdateServer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ServerRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	srv := health.Server{ID: id, Name: req.Name, URL: req.URL, Description: req.Description}
	if err := h.Store.UpdateServer(r.Context(), srv); err != nil {
		switch {
		case errors.Is(err, sqlite.ErrServerNotFound):
			writeError(w, http.StatusNotFound, "Server not found", err)
		case errors.Is(err, sqlite.ErrDuplicateServerName):
			writeError(w, http.StatusConflict, "Server name already registered", err)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update server", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toServerDTO(srv))
}

// DeleteServer removes a registry entry.
func (h *Handler) DeleteServer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteServer(r.Context(), id); err != nil {
		if errors.Is(err, sqlite.ErrServerNotFound) {
			writeError(w, http.StatusNotFound, "Server not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete server", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckServers probes every registered server and reports the results.
func (h *Handler) CheckServers(w http.ResponseWriter, r *http.Request) {
	results, err := h.Monitor.CheckAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to run health check", err)
		return
	}

	dtos := make([]CheckResultDTO, len(results))
	for i, res := range results {
		dtos[i] = CheckResultDTO{
			Server:     toServerDTO(res.Server),
			Healthy:    res.Healthy,
			StatusCode: res.StatusCode,
			LatencyMS:  res.Latency.Milliseconds(),
			Error:      res.Error,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

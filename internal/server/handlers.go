package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vibing2/vibing-desktop/internal/config"
	"github.com/vibing2/vibing-desktop/internal/store"
	"github.com/vibing2/vibing-desktop/internal/svc"
)

type handlers struct {
	svc *svc.ServiceContext
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps store and updater errors onto status codes. The body is
// always {"error": "..."} so the UI has one error shape to handle.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var vErr *store.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &vErr):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": h.svc.Version})
}

func (h *handlers) saveProject(w http.ResponseWriter, r *http.Request) {
	var req store.SaveProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	id, err := h.svc.Projects.SaveProject(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *handlers) listProjects(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.Projects.ListProjects(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *handlers) loadProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.svc.Projects.LoadProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *handlers) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Projects.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) saveSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.svc.Settings.SaveSettings(r.Context(), values); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) loadSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.Settings.LoadSettings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *handlers) checkUpdates(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Updates.Check(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *handlers) downloadUpdate(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Updates.Download(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *handlers) installUpdate(w http.ResponseWriter, r *http.Request) {
	// On success the process is replaced and this never responds.
	if err := h.svc.Updates.Install(); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) getUpdateConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Updates.GetConfig())
}

func (h *handlers) setUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.UpdateConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.svc.Updates.SetConfig(cfg)
	h.svc.Config.Update = cfg
	writeJSON(w, http.StatusOK, cfg)
}

func (h *handlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Updates.Status())
}

func (h *handlers) updateAvailable(w http.ResponseWriter, r *http.Request) {
	available, version := h.svc.Updates.Available()
	writeJSON(w, http.StatusOK, map[string]any{"available": available, "version": version})
}

func (h *handlers) version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": h.svc.Version})
}

func (h *handlers) trayRefresh(w http.ResponseWriter, r *http.Request) {
	h.svc.RefreshTray()
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) trayBadge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.svc.SetTrayBadge(req.Count)
	w.WriteHeader(http.StatusNoContent)
}

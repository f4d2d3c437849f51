package handler

import (
	"errors"
	"fmt"
	"net/http"

	"outlook-email-extractor/internal/archive"
	"outlook-email-extractor/internal/export"
	"outlook-email-extractor/internal/logging"
	"outlook-email-extractor/internal/session"

	"github.com/go-chi/chi/v5"
)

// Handler serves the capture commands
type Handler struct {
	controller Controller
}

// New creates the capture command handler
func New(controller Controller) *Handler {
	return &Handler{controller: controller}
}

// RegisterRoutes registers the capture command routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/emails", h.handleShow)
	r.Delete("/emails", h.handleClear)
	r.Post("/capture", h.handleCapture)
	r.Post("/debug", h.handleDebug)
	r.Get("/export/{format}", h.handleExport)
	r.Post("/monitor/start", h.handleStart)
	r.Post("/monitor/stop", h.handleStop)
	r.Post("/archive", h.handleArchive)
}

func (h *Handler) handleShow(w http.ResponseWriter, r *http.Request) {
	emails := h.controller.Show()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"emails":     emails,
		"count":      len(emails),
		"monitoring": h.controller.Monitoring(),
	})
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]int{"cleared": h.controller.Clear()})
}

func (h *Handler) handleCapture(w http.ResponseWriter, r *http.Request) {
	res, err := h.controller.Capture(r.Context())
	if err != nil {
		logging.Log.WithError(err).Warn("Manual capture failed")
		respondError(w, http.StatusBadGateway, "capture failed")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handler) handleDebug(w http.ResponseWriter, r *http.Request) {
	report, err := h.controller.Debug(r.Context())
	if err != nil {
		logging.Log.WithError(err).Warn("Debug analysis failed")
		respondError(w, http.StatusBadGateway, "debug analysis failed")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, name, err := h.controller.Render(format)
	switch {
	case errors.Is(err, export.ErrNothingToExport):
		respondError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		logging.Log.WithError(err).Error("Export failed")
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Log.WithError(err).Warn("failed to write export")
	}
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Start(); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"monitoring": h.controller.Monitoring()})
}

func (h *Handler) handleStop(w http.ResponseWriter, r *http.Request) {
	h.controller.Stop()
	respondJSON(w, http.StatusOK, map[string]bool{"monitoring": h.controller.Monitoring()})
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	n, err := h.controller.Archive(r.Context())
	switch {
	case errors.Is(err, session.ErrArchiveUnavailable), errors.Is(err, archive.ErrDisabled):
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		logging.Log.WithError(err).Error("Archive failed")
		respondError(w, http.StatusBadGateway, "archive failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"archived": n})
}

package handler

import (
	"context"
	"net/http"

	"outlook-email-extractor/internal/export"
	"outlook-email-extractor/internal/extractor"
	"outlook-email-extractor/internal/models"
	"outlook-email-extractor/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Controller is the part of session.Session exposed over HTTP
type Controller interface {
	Show() []models.CapturedEmail
	Capture(ctx context.Context) (session.Result, error)
	Debug(ctx context.Context) (extractor.Report, error)
	Render(format export.Format) ([]byte, string, error)
	Clear() int
	Start() error
	Stop()
	Monitoring() bool
	Archive(ctx context.Context) (int, error)
}

// NewRouter wires the control API routes. feed may be nil to disable the websocket endpoint.
func NewRouter(controller Controller, feed *Feed) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	emails := New(controller)

	r.Route("/api", func(api chi.Router) {
		emails.RegisterRoutes(api)

		if feed != nil {
			api.Get("/feed", feed.ServeHTTP)
		}
	})

	return r
}

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		// uploads run the decoder synchronously and are bounded by its timeout
		r.Post("/replays/analyze", s.handleAnalyzeReplay)
		r.Post("/replays", s.handleSubmitReplay)

		r.Group(func(r chi.Router) {
			r.Use(timeoutMiddleware(10 * time.Second))
			r.Get("/replays", s.handleListReplays)
			r.Get("/replays/{id}", s.handleGetReplay)
			r.Get("/players/{battleTag}/replays", s.handlePlayerHistory)
		})
	})
	return r
}

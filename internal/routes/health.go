package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Pinger checks reachability of the remote restaurant API.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterHealthRoutes creates the health check endpoints. Readiness
// requires the remote API to answer.
func RegisterHealthRoutes(remote Pinger) func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
			if err := remote.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("remote api not ready"))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Ready"))
		})
	}
}

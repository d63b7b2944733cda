/**
 * @description
 * This file sets up the HTTP router for the settlement service using the
 * go-chi/chi router. It defines the admin API routes, applies middleware
 * for logging, CORS, and internal authentication, and maps the routes to
 * their corresponding handler functions.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers the settlement routes.
func NewRouter(h *Handler, internalAPIKey string) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Internal-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Settlement service is healthy"))
	})

	// Admin routes guarded by the internal API key
	r.Group(func(r chi.Router) {
		r.Use(InternalAuthMiddleware(internalAPIKey))

		r.Post("/sellers", h.handleRegisterSeller)
		r.Get("/sellers/{id}", h.handleGetSeller)
		r.Post("/sellers/{id}/verify", h.handleVerifySeller)
		r.Post("/sellers/{id}/deactivate", h.handleDeactivateSeller)
		r.Post("/sellers/{id}/channel", h.handleAllocateChannel)
		r.Get("/sellers/{id}/payouts", h.handleListSellerPayouts)

		r.Delete("/channels/{id}", h.handleReleaseChannel)

		r.Post("/payouts", h.handleCreatePayout)
		r.Post("/payouts/run", h.handleRunPayouts)
		r.Post("/payouts/{id}/approve", h.handleApprovePayout)
		r.Post("/payouts/{id}/reject", h.handleRejectPayout)
		r.Post("/payouts/{id}/paid", h.handleMarkPayoutPaid)

		r.Get("/payouts/settings", h.handleGetPayoutSettings)
		r.Put("/payouts/settings/frequency", h.handleUpdatePayoutFrequency)
	})

	return r
}

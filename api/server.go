/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. requestLog: Structured request logging via zerolog
  4. CORS:       Cross-origin requests for the portal frontend

ROUTE GROUPS:
  /api/calendar/*   Employees, holiday types, allowances, bookings, status
  /api/bookmarks/*  Bookmarks catalog
  /api/categories   Category listing
  /api/export       Catalog export
  /api/health/*     Server registry and health checks

SECURITY NOTE:
  No authentication middleware. The service runs on an internal network.
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLog(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Work calendar routes
		r.Route("/calendar", func(r chi.Router) {
			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.ListEmployees)
				r.Post("/", h.CreateEmployee)
				r.Put("/{username}", h.UpdateEmployee)
				r.Delete("/{username}", h.DeleteEmployee)
			})
			r.Route("/types", func(r chi.Router) {
				r.Get("/", h.ListHolidayTypes)
				r.Post("/", h.CreateHolidayType)
				r.Put("/{id}", h.UpdateHolidayType)
				r.Delete("/{id}", h.DeleteHolidayType)
			})
			r.Route("/allowances", func(r chi.Router) {
				r.Get("/", h.ListAllowances)
				r.Post("/", h.CreateAllowance)
				r.Put("/{id}", h.UpdateAllowance)
				r.Delete("/{id}", h.DeleteAllowance)
			})
			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", h.ListBookings)
				r.Post("/", h.CreateBooking)
				r.Put("/{id}", h.UpdateBooking)
				r.Delete("/{id}", h.DeleteBooking)
			})
			r.Get("/status", h.GetStatus)
		})

		// Bookmarks routes
		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", h.ListBookmarks)
			r.Post("/", h.CreateBookmark)
			r.Get("/category/{category}", h.ListBookmarksByCategory)
			r.Get("/{id}", h.GetBookmark)
			r.Put("/{id}", h.UpdateBookmark)
			r.Delete("/{id}", h.DeleteBookmark)
		})
		r.Get("/categories", h.ListCategories)
		r.Get("/export", h.ExportBookmarks)

		// Health monitor routes
		r.Route("/health", func(r chi.Router) {
			r.Route("/servers", func(r chi.Router) {
				r.Get("/", h.ListServers)
				r.Post("/", h.CreateServer)
				r.Put("/{id}", h.UpdateServer)
				r.Delete("/{id}", h.DeleteServer)
			})
			r.Get("/check", h.CheckServers)
		})
	})

	return r
}

// requestLog emits one structured log line per request.
func requestLog(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}

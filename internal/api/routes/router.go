package routes

import (
	"net/http"

	"github.com/healthbuddy/backend/internal/api/handlers"
	"github.com/healthbuddy/backend/internal/api/middleware"
	"github.com/healthbuddy/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	doctorHandler *handlers.DoctorHandler
	pageHandler   *handlers.PageHandler

	allowedOrigins string
	metrics        *observability.Metrics
	metricsHandler http.Handler
}

// NewRouter creates a new router
func NewRouter(
	doctorHandler *handlers.DoctorHandler,
	pageHandler *handlers.PageHandler,
	allowedOrigins string,
	metrics *observability.Metrics,
	metricsHandler http.Handler,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		doctorHandler:  doctorHandler,
		pageHandler:    pageHandler,
		allowedOrigins: allowedOrigins,
		metrics:        metrics,
		metricsHandler: metricsHandler,
	}
}

// SetupRoutes registers all routes and returns the handler wrapped in middleware
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Prometheus scrape endpoint
	if r.metricsHandler != nil {
		r.mux.Handle("GET /metrics", r.metricsHandler)
	}

	// Doctor lookup API
	r.mux.HandleFunc("POST /api/find-doctor", r.doctorHandler.FindDoctor)

	// Web UI
	if r.pageHandler != nil {
		r.mux.HandleFunc("GET /{$}", r.pageHandler.Index)
		r.mux.HandleFunc("POST /predict", r.pageHandler.Predict)
		r.mux.HandleFunc("POST /find", r.pageHandler.Find)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.Compression(handler)
	handler = middleware.NoStore(handler)
	// CORS wraps everything so preflights never reach the handlers
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)
	handler = middleware.RequestIDMiddleware(handler)

	return handler
}

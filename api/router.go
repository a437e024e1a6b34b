package api

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// newRouter builds a router with the middleware both servers share. Cookies
// are allowed cross-origin only when the origins are listed explicitly.
func newRouter(allowedOrigins []string, methods []string, metrics http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   methods,
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: !slices.Contains(allowedOrigins, "*"),
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	return r
}

// NewSessionRouter serves the browser-facing session API.
func NewSessionRouter(h *SessionHandler, allowedOrigins []string, metrics http.Handler) http.Handler {
	r := newRouter(allowedOrigins, []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}, metrics)
	h.Routes(r)
	return r
}

// NewProductRouter serves the product search API.
func NewProductRouter(h *Handler, allowedOrigins []string, metrics http.Handler) http.Handler {
	r := newRouter(allowedOrigins, []string{"GET", "POST", "OPTIONS"}, metrics)
	r.Post("/api/v1/search", h.Search)
	return r
}

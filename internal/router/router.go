package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/sisgestion/empresas/internal/api/auth"
	"github.com/sisgestion/empresas/internal/api/empresa"
	"github.com/sisgestion/empresas/internal/web"
)

// Config contains dependencies needed for the router setup.
type Config struct {
	AuthHandler            *auth.AuthHandler
	EmpresaHandler         *empresa.Handler
	WebHandler             *web.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
	CORSOrigins            []string
}

// SetupRouter initializes and configures the API router. Server-wide
// middleware (logger, requestID, safety net) are applied before mounting
// this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	// The SPA runs on a different origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api", func(r chi.Router) {
		// Public auth routes.
		r.Group(func(r chi.Router) {
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/register", cfg.AuthHandler.Register)
		})

		// Everything else requires a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)
			r.Route("/empresas", cfg.EmpresaHandler.RegisterRoutes)
		})
	})

	// Server-rendered surface, cookie-authenticated.
	if cfg.WebHandler != nil {
		cfg.WebHandler.RegisterRoutes(r)
	}

	return r
}

package api

import (
	"net/http"

	"github.com/WidodoTrh/api-exordium/internal/api/handlers"
	"github.com/WidodoTrh/api-exordium/internal/api/middleware"
	"github.com/WidodoTrh/api-exordium/internal/config"
	"github.com/WidodoTrh/api-exordium/internal/repository"
	"github.com/WidodoTrh/api-exordium/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, repos *repository.Repositories, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)
	r.Use(middleware.CSRF(middleware.CSRFConfig{
		ExemptPrefix:   "/api/v1/auth",
		SensitivePaths: []string{"/api/v1/data"},
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, services.Token)
	userHandler := handlers.NewUserHandler(repos.User, services.Auth)
	dataHandler := handlers.NewDataHandler()

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Auth exchange boundary (CSRF-exempt)
		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", authHandler.LoginRedirect)
			r.Post("/login", authHandler.Login)
			r.Post("/google/callback", authHandler.GoogleCallback)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
			})
		})

		// User routes
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Create)
			r.Get("/", userHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Put("/me/password", userHandler.SetPassword)
			})

			r.Get("/{id}", userHandler.Get)
			r.Put("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))
			r.Get("/data", dataHandler.Get)
		})
	})

	return r
}

package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRouter настраивает маршруты для API
func SetupRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Публичные маршруты (без аутентификации)
	r.Group(func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Get("/token-info", h.TokenInfo)
	})

	// Защищенные маршруты (с аутентификацией)
	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware)
		r.Post("/drills", h.CreateDrill)
		r.Route("/drills/{id}", func(r chi.Router) {
			r.Get("/next", h.NextTask)
			r.Post("/answer", h.Answer)
			r.Get("/summary", h.Summary)
		})
		r.Get("/history", h.History)
	})

	return r
}

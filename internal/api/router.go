package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/ramitgoyal/zensync/internal/auth"
	"github.com/ramitgoyal/zensync/internal/session"
	"github.com/ramitgoyal/zensync/internal/store"
)

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(
	db *store.DB,
	sessions *store.SessionStore,
	controller *session.Controller,
	authSvc *auth.Service,
	tokens *auth.TokenIssuer,
	corsOrigin string,
	secureCookies bool,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on ALL routes including /health)
	r.Use(CORS(corsOrigin))
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	// Handlers
	healthH := NewHealthHandler(db)
	authH := NewAuthHandler(authSvc, tokens, secureCookies)
	sessionH := NewSessionHandler(sessions, controller)
	analyticsH := NewAnalyticsHandler(sessions)
	transferH := NewTransferHandler(sessions, authSvc)

	// Unauthenticated routes
	r.Get("/health", healthH.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authH.Register)
			r.Post("/login", authH.Login)
			r.Post("/logout", authH.Logout)

			r.Group(func(r chi.Router) {
				r.Use(TokenAuth(tokens))
				r.Get("/current-user", authH.CurrentUser)
			})
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(TokenAuth(tokens))

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", sessionH.List)
				r.Post("/start", sessionH.Start)
				r.Post("/pause", sessionH.Pause)
				r.Post("/resume", sessionH.Resume)
				r.Post("/end", sessionH.End)
				r.Get("/active", sessionH.Active)
				r.Delete("/{id}", sessionH.Delete)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/stats", analyticsH.Stats)
				r.Get("/weekly", analyticsH.Weekly)
				r.Get("/monthly", analyticsH.Monthly)
				r.Get("/streak", analyticsH.Streak)
				r.Get("/today", analyticsH.Today)
			})

			r.Route("/data", func(r chi.Router) {
				r.Get("/export", transferH.Export)
				r.Post("/import", transferH.Import)
				r.Delete("/", transferH.Wipe)
			})
		})
	})

	return r
}

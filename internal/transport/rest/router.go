package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/care-management/internal/auth"
	"github.com/frahmantamala/care-management/internal/contract"
	"github.com/frahmantamala/care-management/internal/transport/middleware"
	"github.com/frahmantamala/care-management/internal/transport/swagger"
	"github.com/frahmantamala/care-management/internal/user"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, contractHandler *contract.Handler, webhookHandler *contract.WebhookHandler, metricsEnabled bool, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestLogger)
	router.Use(middleware.RecoveryMiddleware(logger))
	if metricsEnabled {
		router.Use(middleware.Metrics)
		router.Handle("/metrics", promhttp.Handler())
	}

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// signature provider callback, authenticated by obscurity of the
		// document hash rather than a bearer token
		if webhookHandler != nil {
			r.Post("/esign/callback", webhookHandler.HandleSignatureCallback)
		}

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		if authHandler != nil {
			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				if userHandler != nil {
					pr.Get("/users/me", userHandler.GetCurrentUser)
					pr.Get("/users/{userID}", userHandler.GetUser)
				}

				if contractHandler != nil {
					pr.Route("/contracts", func(cr chi.Router) {
						cr.Group(func(rr chi.Router) {
							rr.Use(middleware.RequireScope("contracts:edit", "exports:read"))
							rr.Get("/", contractHandler.ListContracts)
							rr.Get("/{contractID}", contractHandler.GetContract)
							rr.Get("/{contractID}/info", contractHandler.GetContractInfo)
						})

						cr.Group(func(er chi.Router) {
							er.Use(middleware.RequireScope("contracts:edit"))
							er.Post("/", contractHandler.CreateContract)
							er.Put("/{contractID}/end", contractHandler.EndContract)
							er.Post("/{contractID}/versions", contractHandler.CreateVersion)
							er.Put("/{contractID}/versions/{versionID}", contractHandler.UpdateVersion)
							er.Delete("/{contractID}/versions/{versionID}", contractHandler.DeleteVersion)
						})
					})
				}
			})
		}
	})
}

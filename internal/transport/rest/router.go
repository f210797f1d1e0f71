package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/radityasurya/pharmacy-network/internal"
	"github.com/radityasurya/pharmacy-network/internal/audit"
	"github.com/radityasurya/pharmacy-network/internal/channel"
	"github.com/radityasurya/pharmacy-network/internal/message"
	"github.com/radityasurya/pharmacy-network/internal/permission"
	"github.com/radityasurya/pharmacy-network/internal/settings"
	"github.com/radityasurya/pharmacy-network/internal/tenant"
	"github.com/radityasurya/pharmacy-network/internal/transport/middleware"
	"github.com/radityasurya/pharmacy-network/internal/transport/swagger"
)

type Handlers struct {
	Channel    *channel.Handler
	Permission *permission.Handler
	Message    *message.Handler
	Audit      *audit.Handler
	Tenant     *tenant.Handler
	Settings   *settings.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, cfg *internal.Config, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	if cfg.Observability.Metrics.Enabled {
		router.Use(middleware.Instrument)
		router.Handle(cfg.Observability.Metrics.Path, promhttp.Handler())
	}

	// Serve the OpenAPI spec at root, outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Everything below requires a verified session
		r.Group(func(pr chi.Router) {
			pr.Use(middleware.Session(cfg.Security.SessionSecret))

			pr.Route("/channels", func(cr chi.Router) {
				cr.Post("/", h.Channel.CreateChannel)
				cr.Get("/", h.Channel.ListChannels)
				cr.Get("/{id}", h.Channel.GetChannel)
				cr.Patch("/{id}", h.Channel.UpdateChannel)
				cr.Delete("/{id}", h.Channel.DeleteChannel)
				cr.Patch("/{id}/archive", h.Channel.ArchiveChannel)
				cr.Patch("/{id}/pause", h.Channel.PauseChannel)
				cr.Patch("/{id}/activate", h.Channel.ActivateChannel)

				cr.Post("/{id}/messages", h.Message.PostMessage)
				cr.Get("/{id}/messages", h.Message.ListMessages)
			})

			pr.Route("/permissions", func(gr chi.Router) {
				gr.Get("/", h.Permission.ListGrants)
				gr.Post("/grant", h.Permission.Grant)
				gr.Post("/revoke", h.Permission.Revoke)
				gr.Get("/check", h.Permission.Check)
			})

			pr.Route("/audit", func(ar chi.Router) {
				ar.Get("/", h.Audit.Query)
				ar.Get("/export", h.Audit.Export)
			})

			pr.Route("/settings", func(sr chi.Router) {
				sr.Get("/", h.Settings.GetSettings)
				sr.Put("/", h.Settings.UpdateSetting)
			})

			pr.Get("/tenants", h.Tenant.ListTenants)
			pr.Get("/tenants/{id}", h.Tenant.GetTenant)
		})
	})
}

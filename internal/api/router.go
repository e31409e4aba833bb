// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/filmvault/internal/auth"
	"github.com/tomtom215/filmvault/internal/authz"
	"github.com/tomtom215/filmvault/internal/middleware"
)

// Router wires the handler, authentication and authorization into chi.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	authn         *auth.Middleware
	authz         *authz.Middleware
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, chiMW *ChiMiddleware, authn *auth.Middleware, authzMW *authz.Middleware) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: chiMW,
		authn:         authn,
		authz:         authzMW,
	}
}

// Setup builds the HTTP handler.
func (router *Router) Setup() http.Handler {
	h := router.handler
	allow := router.authz.Authorize

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(router.chiMiddleware.RateLimit())
	r.Use(middleware.PrometheusMetrics)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.authn.Authenticate)

		r.Route("/backups", func(r chi.Router) {
			r.With(allow(authz.ObjectBackups, authz.ActionWrite)).Post("/", h.CreateBackup)
			r.With(allow(authz.ObjectBackups, authz.ActionRead)).Get("/", h.ListBackups)
			r.With(allow(authz.ObjectHistory, authz.ActionRead)).Get("/history", h.BackupHistory)

			r.With(allow(authz.ObjectRestore, authz.ActionWrite)).Post("/restore", h.RestoreBackup)
			r.With(allow(authz.ObjectCleanup, authz.ActionWrite)).Post("/cleanup", h.CleanupBackups)

			r.Route("/schedule", func(r chi.Router) {
				r.Use(router.authz.AuthorizeMethod(authz.ObjectSchedule))
				r.Get("/", h.GetSchedule)
				r.Put("/", h.SetSchedule)
				r.Post("/trigger", h.TriggerBackup)
			})

			r.With(allow(authz.ObjectBackups, authz.ActionRead)).Get("/{filename}/download", h.DownloadBackup)
			r.With(allow(authz.ObjectBackups, authz.ActionDelete)).Delete("/{filename}", h.DeleteBackup)
		})

		r.With(allow(authz.ObjectImport, authz.ActionWrite)).Post("/import", h.ImportSpreadsheet)
	})

	return r
}

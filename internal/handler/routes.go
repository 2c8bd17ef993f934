package handler

import (
	"mbs-hub/internal/logger"
	mbsmiddleware "mbs-hub/internal/middleware"
	"mbs-hub/internal/session"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterDeps are the pieces NewRouter mounts.
type RouterDeps struct {
	RPC         *RPC
	Auth        *AuthHandler
	Seo         *SeoHandler
	Sessions    session.Manager
	Authorizer  func(http.Handler) http.Handler
	RateLimiter func(http.Handler) http.Handler
	Log         logger.Logger
}

// NewRouter creates and configures a new chi router.
func NewRouter(d RouterDeps) *chi.Mux {
	r := chi.NewRouter()
	errorHandler := mbsmiddleware.Error(d.Log)

	// A good base middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// SEO routes
	r.Get("/robots.txt", d.Seo.robotsHandler)
	r.Method(http.MethodGet, "/sitemap.xml", errorHandler(d.Seo.sitemapHandler))
	r.Method(http.MethodGet, "/rss.xml", errorHandler(d.Seo.rssHandler))

	r.Group(func(r chi.Router) {
		r.Use(d.Sessions.LoadAndSave)
		r.Use(mbsmiddleware.LoadUser(d.Sessions))

		// Authentication routes
		r.Method(http.MethodGet, "/auth/login", errorHandler(d.Auth.handleLogin))
		r.Method(http.MethodGet, "/auth/callback", errorHandler(d.Auth.handleCallback))

		// Procedure routes
		// Inline groups so the authorizer sees the {procedure} param.
		r.Route("/api/trpc", func(r chi.Router) {
			rpc := errorHandler(d.RPC.serve)
			r.Group(func(r chi.Router) {
				r.Use(d.Authorizer)
				newsletter := r
				if d.RateLimiter != nil {
					newsletter = r.With(d.RateLimiter)
				}
				newsletter.Handle("/{procedure:newsletter\\..+}", rpc)
				r.Handle("/{procedure}", rpc)
			})
		})
	})

	return r
}

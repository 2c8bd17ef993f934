package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mbs-hub/internal/auth"
	"mbs-hub/internal/cache"
	"mbs-hub/internal/cms"
	"mbs-hub/internal/config"
	"mbs-hub/internal/data"
	"mbs-hub/internal/handler"
	"mbs-hub/internal/middleware"
	"mbs-hub/internal/richtext"
	"mbs-hub/internal/service"
	"mbs-hub/internal/session"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// contentStores are the read paths selected by content.backend.
type contentStores struct {
	content service.ContentRepository
	preview service.PreviewRepository
	images  richtext.ImageResolver
	status  service.PreviewStatus
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Pre-flight Checks ---
	if cfg.Session.Secret == "" {
		return errors.New("session secret not set; set MBS_SESSION_SECRET")
	}
	if cfg.Content.Backend != config.BackendCMS && cfg.Content.Backend != config.BackendSQL {
		return fmt.Errorf("unknown content backend %q", cfg.Content.Backend)
	}

	// --- Database Initialization and Migration ---
	conn := data.NewConnector(cfg.DB)
	defer conn.Close()
	var appDB *sqlx.DB
	if conn.Configured() {
		log.Info("Applying database migrations...")
		if err := data.ApplyMigrations(cfg.DB); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		db, err := conn.DB(ctx)
		if err != nil {
			// The connector retries on the next call.
			log.Error(err, "Database unavailable at start-up")
		} else {
			appDB = db
			log.Info("Database connection successful.")
		}
	} else {
		log.Warn("db.dsn is not set; relational reads and writes report the store as unconfigured")
	}

	// --- Cache Initialization ---
	log.Info("Initializing SQLite cache...")
	responseCache, err := cache.New(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer responseCache.Close()

	// --- Content Stores ---
	stores := newContentStores(cfg, conn, responseCache)
	renderer := richtext.New(stores.images)

	// --- Session Management Setup ---
	sessionManager := session.New(cfg.Session, cfg.Server.TLS.Enabled, session.NewStore(conn.Driver(), sessionDB(appDB)))

	// --- Authentication and Authorization Setup ---
	log.Info("Initializing authentication and authorization...")
	var authenticator handler.Authenticator
	if a, err := auth.NewAuthenticator(ctx, cfg.OAuth); err != nil {
		log.Warn(fmt.Sprintf("Sign-in disabled: %v", err))
	} else {
		authenticator = a
	}
	stateSigner, err := auth.NewStateSigner(cfg.Session.Secret, 10*time.Minute)
	if err != nil {
		return err
	}
	enforcer, err := auth.NewEnforcer(appDB)
	if err != nil {
		return fmt.Errorf("failed to initialize enforcer: %w", err)
	}
	auth.SeedDefaultPolicies(enforcer, cfg.Preview.RequireAdmin, log)

	// --- Dependency Injection and Handler Initialization ---
	// Initialize the application layers, injecting dependencies from top to bottom.
	ownerPolicy := auth.NewOwnerPolicy(cfg.Owner)
	contentService := service.NewContentService(stores.content, renderer, log)
	previewService := service.NewPreviewService(stores.preview, renderer, stores.status, log)
	newsletterService := service.NewNewsletterService(data.NewSQLNewsletterRepository(conn), log)
	authService := service.NewAuthService(data.NewSQLUserRepository(conn, ownerPolicy), ownerPolicy, log)

	rpc := handler.NewRPC(handler.Procedures{
		Content:    contentService,
		Preview:    previewService,
		Newsletter: newsletterService,
		Sessions:   sessionManager,
		Log:        log,
	})
	limiter := middleware.NewRateLimiter(cfg.Newsletter.RatePerMinute)
	defer limiter.Stop()

	// --- Router Setup ---
	router := handler.NewRouter(handler.RouterDeps{
		RPC:         rpc,
		Auth:        handler.NewAuthHandler(authenticator, stateSigner, sessionManager, authService, log),
		Seo:         handler.NewSeoHandler(contentService, cfg.Server.BaseURL),
		Sessions:    sessionManager,
		Authorizer:  middleware.Authorizer(enforcer, rpc),
		RateLimiter: limiter.Middleware,
		Log:         log,
	})

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		var err error
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			err = server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Warn("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exiting")
	return nil
}

// newContentStores builds the repositories for the configured backend.
func newContentStores(cfg *config.Config, conn *data.Connector, rc cms.ResponseCache) contentStores {
	if cfg.Content.Backend == config.BackendSQL {
		repo := data.NewSQLContentRepository(conn)
		log.Info("Serving content from the relational store")
		return contentStores{
			content: repo,
			preview: repo,
			status:  service.PreviewStatus{Enabled: conn.Configured(), HasToken: false},
		}
	}

	client := cms.NewClient(cfg.CMS, cms.WithCache(rc), cms.WithLogger(log))
	log.Info(fmt.Sprintf("Serving content from CMS project %q, dataset %q", client.ProjectID(), client.Dataset()))
	return contentStores{
		content: cms.NewRepository(client),
		preview: cms.NewPreviewRepository(client),
		images: func(ref string) string {
			return cms.ImageURL(client.ProjectID(), client.Dataset(), ref)
		},
		status: service.PreviewStatus{Enabled: client.HasToken(), HasToken: client.HasToken()},
	}
}

func sessionDB(db *sqlx.DB) *sql.DB {
	if db == nil {
		return nil
	}
	return db.DB
}

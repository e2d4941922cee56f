// Package router assembles the HTTP routes and middleware chain.
package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/murmur/murmur/internal/handler"
	"github.com/murmur/murmur/internal/metrics"
	"github.com/murmur/murmur/internal/middleware"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	Logger         *slog.Logger
	Accounts       handler.AccountService
	Transcriptions handler.TranscriptionService
	Verifier       middleware.TokenVerifier
	Metrics        metrics.Snapshotter

	// DB and Cache back /readyz. Leave Cache nil when Redis is not configured.
	DB    handler.HealthChecker
	Cache handler.HealthChecker

	UploadDir          string
	MaxUploadSize      int64
	MaxRequestBodySize int64
	CORSAllowedOrigins []string
	Development        bool
}

// New configures the chi router with all routes and middleware.
func New(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recoverer(d.Logger))
	r.Use(middleware.Security(d.Development))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = d.CORSAllowedOrigins
	r.Use(middleware.CORS(corsCfg))

	h := handler.New()
	health := handler.NewHealthHandler(d.Logger, d.DB, d.Cache)
	accounts := handler.NewAccountHandler(d.Accounts, d.Logger)
	transcriptions := handler.NewTranscriptionHandler(d.Transcriptions, d.Logger, d.UploadDir, d.MaxUploadSize)

	r.Get("/", h.Hello)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	r.Get("/metrics", handler.NewMetricsHandler(d.Metrics).Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.MaxBodySize(d.MaxRequestBodySize))
			r.Post("/signup", accounts.Signup)
			r.Post("/login", accounts.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(middleware.AuthConfig{
				Logger:   d.Logger,
				Verifier: d.Verifier,
			}))
			r.Post("/upload", transcriptions.Upload)
			r.Get("/history", transcriptions.History)
		})
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iglloo/lead-intake/internal/http/handlers"
	httpmiddleware "github.com/iglloo/lead-intake/internal/http/middleware"
	"github.com/iglloo/lead-intake/pkg/logging"
	"github.com/redis/go-redis/v9"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	IntakeHandler      http.Handler
	MetricsHandler     http.Handler
	AdminLeadsHandler  *handlers.AdminLeadsHandler
	AdminAuthSecret    string
	CORSAllowedOrigins []string

	// Submission rate limiting (disabled when Redis is nil)
	Redis              redis.Cmdable
	RateLimitPerMinute int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "Not found"})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.IntakeHandler != nil {
		limited := httpmiddleware.RateLimit(cfg.Redis, cfg.RateLimitPerMinute, cfg.Logger)
		r.Route("/api", func(api chi.Router) {
			api.Use(limited)
			// /api/send-email is the path the site has always posted to.
			api.Handle("/send-email", cfg.IntakeHandler)
			api.Handle("/leads", cfg.IntakeHandler)
		})
	}

	if cfg.MetricsHandler != nil {
		if cfg.AdminAuthSecret != "" {
			r.With(httpmiddleware.AdminJWT(cfg.AdminAuthSecret)).Handle("/metrics", cfg.MetricsHandler)
		} else {
			r.Handle("/metrics", cfg.MetricsHandler)
		}
	}

	// Stored leads carry visitor PII; the lookup only exists behind operator auth.
	if cfg.AdminLeadsHandler != nil && cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/leads/{leadID}", cfg.AdminLeadsHandler.GetLead)
		})
	}

	return r
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

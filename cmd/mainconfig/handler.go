package mainconfig

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iglloo/lead-intake/internal/api/router"
	"github.com/iglloo/lead-intake/internal/app/bootstrap"
	appconfig "github.com/iglloo/lead-intake/internal/config"
	"github.com/iglloo/lead-intake/internal/http/handlers"
	"github.com/iglloo/lead-intake/internal/intake"
	"github.com/iglloo/lead-intake/pkg/logging"
)

// BuildHandler assembles the full HTTP surface. cleanup is never nil.
func BuildHandler(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, func(), error) {
	var awsCfg *aws.Config
	if bootstrap.NeedsAWS(cfg) {
		loaded, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, func() {}, fmt.Errorf("load aws config: %w", err)
		}
		awsCfg = &loaded
	}

	metricsHandler, reg := SetupMetrics()
	pipeline, err := bootstrap.BuildIntakeService(ctx, cfg, awsCfg, reg, logger)
	if err != nil {
		return nil, func() {}, err
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	cleanup := func() {
		pipeline.Close()
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}

	var adminLeads *handlers.AdminLeadsHandler
	if pipeline.Reader != nil {
		adminLeads = handlers.NewAdminLeadsHandler(pipeline.Reader, logger)
	}

	r := router.New(&router.Config{
		Logger:             logger,
		IntakeHandler:      intake.NewHandler(pipeline.Service, logger),
		MetricsHandler:     metricsHandler,
		AdminLeadsHandler:  adminLeads,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Redis:              bootstrap.RateLimitBackend(redisClient),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	return r, cleanup, nil
}

// SetupMetrics returns a registry with runtime collectors and its scrape handler.
func SetupMetrics() (http.Handler, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), reg
}

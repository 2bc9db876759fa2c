package bootstrap

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"

	appconfig "github.com/iglloo/lead-intake/internal/config"
	"github.com/iglloo/lead-intake/internal/intake"
	"github.com/iglloo/lead-intake/internal/leads"
	"github.com/iglloo/lead-intake/internal/observability/metrics"
	"github.com/iglloo/lead-intake/pkg/logging"
)

// NeedsAWS reports whether any configured collaborator talks to AWS.
func NeedsAWS(cfg *appconfig.Config) bool {
	if cfg == nil {
		return false
	}
	return cfg.ForwardProvider == ProviderSES ||
		(cfg.CommentaryEnabled && cfg.CommentaryProvider == CommentaryBedrock)
}

// Intake is the assembled pipeline plus the resources it holds open.
type Intake struct {
	Service *intake.Service
	Metrics *metrics.LeadMetrics
	// Reader is set when the configured store can read leads back.
	Reader leads.Reader

	closers []func()
}

// Close releases database pools and model clients.
func (i *Intake) Close() {
	if i == nil {
		return
	}
	for j := len(i.closers) - 1; j >= 0; j-- {
		i.closers[j]()
	}
}

// BuildIntakeService wires every collaborator from cfg. reg receives the
// pipeline metrics; a nil reg skips them. awsCfg may be nil unless NeedsAWS.
func BuildIntakeService(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, reg prometheus.Registerer, logger *logging.Logger) (*Intake, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	out := &Intake{}

	primary, err := BuildPrimaryChannel(cfg, logger)
	if err != nil {
		return nil, err
	}
	secondary, err := BuildSecondaryChannel(cfg, awsCfg, logger)
	if err != nil {
		return nil, err
	}
	if primary == nil && secondary == nil {
		logger.Warn("no delivery channel configured; submissions will fail")
	}

	store, closeStore, err := BuildStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	out.closers = append(out.closers, closeStore)
	if reader, ok := store.(leads.Reader); ok {
		out.Reader = reader
	}

	locator, err := BuildLocator(cfg)
	if err != nil {
		out.Close()
		return nil, err
	}

	advisor, closeAdvisor, err := BuildAdvisor(ctx, cfg, awsCfg, logger)
	if err != nil {
		out.Close()
		return nil, err
	}
	out.closers = append(out.closers, closeAdvisor)

	observers := intake.MultiObserver{intake.NewLogObserver(logger)}
	if reg != nil {
		out.Metrics = metrics.NewLeadMetrics(reg)
		observers = append(observers, out.Metrics)
	}

	out.Service = intake.NewService(intake.Options{
		Rules:      leads.ServerRules(cfg),
		Primary:    primary,
		Secondary:  secondary,
		Store:      store,
		Locator:    locator,
		Advisor:    advisor,
		Observer:   observers,
		Timeout:    cfg.CollaboratorTimeout,
		Concurrent: cfg.ConcurrentFanout,
	})
	return out, nil
}

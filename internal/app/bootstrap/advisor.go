package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/iglloo/lead-intake/internal/commentary"
	appconfig "github.com/iglloo/lead-intake/internal/config"
	"github.com/iglloo/lead-intake/internal/geo"
	"github.com/iglloo/lead-intake/pkg/logging"
)

// Commentary providers accepted by COMMENTARY_PROVIDER.
const (
	CommentaryGemini  = "gemini"
	CommentaryBedrock = "bedrock"
)

// BuildAdvisor wires the optional AI commentary stage. The closer is never nil.
func BuildAdvisor(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (commentary.Advisor, func(), error) {
	noop := func() {}
	if cfg == nil {
		return nil, noop, errors.New("bootstrap: config is required")
	}
	if !cfg.CommentaryEnabled {
		return nil, noop, nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.CommentaryProvider))
	switch provider {
	case "", CommentaryGemini:
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			logger.Warn("commentary enabled but gemini api key empty; disabling")
			return nil, noop, nil
		}
		advisor, err := commentary.NewGeminiAdvisor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: gemini advisor: %w", err)
		}
		logger.Info("commentary enabled", "provider", CommentaryGemini)
		return advisor, func() { _ = advisor.Close() }, nil
	case CommentaryBedrock:
		if strings.TrimSpace(cfg.BedrockModelID) == "" {
			logger.Warn("commentary enabled but bedrock model id empty; disabling")
			return nil, noop, nil
		}
		if awsCfg == nil {
			return nil, noop, errors.New("bootstrap: aws config is required for bedrock commentary")
		}
		advisor, err := commentary.NewBedrockAdvisor(bedrockruntime.NewFromConfig(*awsCfg), cfg.BedrockModelID)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: bedrock advisor: %w", err)
		}
		logger.Info("commentary enabled", "provider", CommentaryBedrock, "model", cfg.BedrockModelID)
		return advisor, noop, nil
	default:
		return nil, noop, fmt.Errorf("bootstrap: unknown commentary provider %q", provider)
	}
}

// BuildLocator wires visitor geolocation, or returns nil when it is turned off.
func BuildLocator(cfg *appconfig.Config) (geo.Locator, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}
	if !cfg.GeoLookupEnabled {
		return nil, nil
	}
	locator, err := geo.NewHTTPLocator(geo.Config{
		URLTemplate: cfg.GeoLookupURL,
		Timeout:     cfg.CollaboratorTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: geolocation: %w", err)
	}
	return locator, nil
}

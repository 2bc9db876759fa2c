package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/iglloo/lead-intake/internal/config"
	"github.com/iglloo/lead-intake/internal/notify"
	"github.com/iglloo/lead-intake/pkg/logging"
)

// Secondary channel providers accepted by FORWARD_PROVIDER.
const (
	ProviderMailtrap = "mailtrap"
	ProviderSendGrid = "sendgrid"
	ProviderSES      = "ses"
	ProviderNone     = "none"
)

// BuildPrimaryChannel wires the SMTP relay that delivers to the sandbox inbox.
// It returns nil when the relay credentials are incomplete.
func BuildPrimaryChannel(cfg *appconfig.Config, logger *logging.Logger) (*notify.Channel, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if !cfg.SMTPConfigured() {
		logger.Warn("smtp relay not configured, primary channel disabled")
		return nil, nil
	}

	sender, err := notify.NewSMTPSender(notify.SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUser,
		Password:  cfg.SMTPPass,
		FromEmail: cfg.MailFromEmail,
		FromName:  cfg.MailFromName,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: primary channel: %w", err)
	}
	return notify.NewChannel("primary", sender, cfg.SandboxToEmail), nil
}

// BuildSecondaryChannel wires the forwarding channel selected by
// cfg.ForwardProvider. A provider without credentials is disabled rather
// than treated as an error; awsCfg is only consulted for SES.
func BuildSecondaryChannel(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (*notify.Channel, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.ForwardProvider))
	var (
		sender notify.EmailSender
		err    error
	)
	switch provider {
	case "", ProviderMailtrap:
		var s *notify.MailtrapSender
		s, err = notify.NewMailtrapSender(notify.MailtrapConfig{
			APIToken:  cfg.MailtrapAPIToken,
			URL:       cfg.MailtrapAPIURL,
			FromEmail: cfg.MailFromEmail,
			FromName:  cfg.MailFromName,
		}, logger)
		if s != nil {
			sender = s
		}
	case ProviderSendGrid:
		var s *notify.SendGridSender
		s, err = notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.MailFromEmail,
			FromName:  cfg.MailFromName,
		}, logger)
		if s != nil {
			sender = s
		}
	case ProviderSES:
		if awsCfg == nil {
			err = fmt.Errorf("aws config missing: %w", notify.ErrNotConfigured)
			break
		}
		var s *notify.SESSender
		s, err = notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail:        cfg.MailFromEmail,
			FromName:         cfg.MailFromName,
			ConfigurationSet: cfg.SESConfigSet,
		}, logger)
		if s != nil {
			sender = s
		}
	case ProviderNone:
		logger.Info("secondary channel disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown forward provider %q", provider)
	}

	if errors.Is(err, notify.ErrNotConfigured) {
		logger.Warn("secondary channel not configured, disabled", "provider", provider, "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("bootstrap: secondary channel: %w", err)
	}
	return notify.NewChannel("secondary", sender, cfg.ProductionToEmail), nil
}

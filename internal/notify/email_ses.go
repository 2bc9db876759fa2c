package notify

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/iglloo/lead-intake/pkg/logging"
)

const sesCharset = "UTF-8"

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESConfig describes the verified SES identity leads are forwarded from.
type SESConfig struct {
	FromEmail string
	FromName  string
	// ConfigurationSet routes delivery events; empty uses the account default.
	ConfigurationSet string
}

// SESSender forwards lead notifications through Amazon SES v2.
type SESSender struct {
	client    sesAPI
	from      string
	configSet string
	logger    *logging.Logger
}

// NewSESSender wraps an SES client. A nil client is ErrNotConfigured.
func NewSESSender(client *sesv2.Client, cfg SESConfig, logger *logging.Logger) (*SESSender, error) {
	if client == nil {
		return nil, fmt.Errorf("notify: ses client missing: %w", ErrNotConfigured)
	}
	return newSESSender(client, cfg, logger), nil
}

func newSESSender(client sesAPI, cfg SESConfig, logger *logging.Logger) *SESSender {
	if logger == nil {
		logger = logging.Default()
	}
	email := strings.TrimSpace(cfg.FromEmail)
	if email == "" {
		email = defaultFromEmail
	}
	name := strings.TrimSpace(cfg.FromName)
	if name == "" {
		name = defaultFromName
	}
	return &SESSender{
		client:    client,
		from:      (&mail.Address{Name: name, Address: email}).String(),
		configSet: strings.TrimSpace(cfg.ConfigurationSet),
		logger:    logger,
	}
}

// Send forwards msg. The lead's address becomes the Reply-To so operators can
// answer directly.
func (s *SESSender) Send(ctx context.Context, msg EmailMessage) error {
	input, err := s.buildInput(msg)
	if err != nil {
		return err
	}

	output, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("ses send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: ses send failed: %w", err)
	}

	s.logger.Info("lead forwarded via ses", "to", msg.To, "message_id", aws.ToString(output.MessageId))
	return nil
}

func (s *SESSender) buildInput(msg EmailMessage) (*sesv2.SendEmailInput, error) {
	if strings.TrimSpace(msg.To) == "" {
		return nil, errors.New("notify: ses message has no recipient")
	}
	body := &types.Body{}
	if msg.Body != "" {
		body.Text = sesContent(msg.Body)
	}
	if msg.HTML != "" {
		body.Html = sesContent(msg.HTML)
	}
	if body.Text == nil && body.Html == nil {
		return nil, errors.New("notify: ses message has no body")
	}

	to := msg.To
	if msg.ToName != "" {
		to = (&mail.Address{Name: msg.ToName, Address: msg.To}).String()
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{Subject: sesContent(msg.Subject), Body: body},
		},
		EmailTags: []types.MessageTag{{Name: aws.String("category"), Value: aws.String(leadCategory)}},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}
	if s.configSet != "" {
		input.ConfigurationSetName = aws.String(s.configSet)
	}
	return input, nil
}

func sesContent(data string) *types.Content {
	return &types.Content{Data: aws.String(data), Charset: aws.String(sesCharset)}
}

var _ EmailSender = (*SESSender)(nil)

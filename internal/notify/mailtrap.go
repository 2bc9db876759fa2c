package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iglloo/lead-intake/pkg/logging"
)

const defaultMailtrapURL = "https://send.api.mailtrap.io/api/send"

// MailtrapConfig describes how to reach the Mailtrap Email Sending API.
type MailtrapConfig struct {
	APIToken  string
	URL       string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// MailtrapSender sends transactional mail through the Mailtrap Send API.
type MailtrapSender struct {
	endpoint  string
	apiToken  string
	fromEmail string
	fromName  string
	http      *http.Client
	logger    *logging.Logger
}

type mailtrapAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailtrapPayload struct {
	From     mailtrapAddress   `json:"from"`
	To       []mailtrapAddress `json:"to"`
	ReplyTo  *mailtrapAddress  `json:"reply_to,omitempty"`
	Subject  string            `json:"subject"`
	Text     string            `json:"text,omitempty"`
	HTML     string            `json:"html,omitempty"`
	Category string            `json:"category,omitempty"`
}

// NewMailtrapSender validates the configuration and returns a sender.
func NewMailtrapSender(cfg MailtrapConfig, logger *logging.Logger) (*MailtrapSender, error) {
	if strings.TrimSpace(cfg.APIToken) == "" {
		return nil, fmt.Errorf("notify: mailtrap api token missing: %w", ErrNotConfigured)
	}
	if logger == nil {
		logger = logging.Default()
	}
	endpoint := strings.TrimSpace(cfg.URL)
	if endpoint == "" {
		endpoint = defaultMailtrapURL
	}
	if cfg.FromEmail == "" {
		cfg.FromEmail = defaultFromEmail
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MailtrapSender{
		endpoint:  endpoint,
		apiToken:  cfg.APIToken,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		http:      &http.Client{Timeout: timeout},
		logger:    logger,
	}, nil
}

// Send posts msg to the API. Non-2xx responses become errors carrying the
// provider's error text.
func (s *MailtrapSender) Send(ctx context.Context, msg EmailMessage) error {
	payload := mailtrapPayload{
		From:     mailtrapAddress{Email: s.fromEmail, Name: s.fromName},
		To:       []mailtrapAddress{{Email: msg.To, Name: msg.ToName}},
		Subject:  msg.Subject,
		Text:     msg.Body,
		HTML:     msg.HTML,
		Category: leadCategory,
	}
	if msg.ReplyTo != "" {
		payload.ReplyTo = &mailtrapAddress{Email: msg.ReplyTo}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: failed to encode mailtrap payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("notify: mailtrap request build failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiToken))

	resp, err := s.http.Do(req)
	if err != nil {
		s.logger.Error("mailtrap send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: mailtrap request failed: %w", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if readErr != nil {
			s.logger.Error("mailtrap error body unreadable", "status", resp.StatusCode, "error", readErr, "to", msg.To)
			return fmt.Errorf("notify: mailtrap send failed: status %d: reading body: %w", resp.StatusCode, readErr)
		}
		detail := mailtrapErrorText(resp.StatusCode, body)
		s.logger.Error("mailtrap returned error status", "status", resp.StatusCode, "error", detail, "to", msg.To)
		return fmt.Errorf("notify: mailtrap send failed: %s", detail)
	}

	s.logger.Info("email sent via mailtrap", "to", msg.To, "subject", msg.Subject, "status", resp.StatusCode)
	return nil
}

func mailtrapErrorText(status int, body []byte) string {
	var parsed struct {
		Errors  []string `json:"errors"`
		Message string   `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if len(parsed.Errors) > 0 {
			return strings.Join(parsed.Errors, ", ")
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("Mailtrap send API status %d", status)
}

var _ EmailSender = (*MailtrapSender)(nil)

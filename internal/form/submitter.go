package form

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iglloo/lead-intake/internal/leads"
)

// DefaultEndpoint is the path the site posts the contact form to.
const DefaultEndpoint = "/api/send-email"

// HTTPSubmitter posts submissions as JSON and interprets the {ok, error} ack.
type HTTPSubmitter struct {
	endpoint string
	http     *http.Client
}

// NewHTTPSubmitter targets endpoint, an absolute URL. A nil client gets a
// 15 second timeout.
func NewHTTPSubmitter(endpoint string, client *http.Client) (*HTTPSubmitter, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("form: endpoint required")
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPSubmitter{endpoint: endpoint, http: client}, nil
}

type ack struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Submit returns nil only for a 2xx response whose body says ok.
func (s *HTTPSubmitter) Submit(ctx context.Context, sub leads.Submission) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("form: encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("form: request build failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("form: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("form: read response failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("form: request failed with status %d", resp.StatusCode)
	}

	var out ack
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("form: decode response failed: %w", err)
	}
	if !out.OK {
		if out.Error != "" {
			return errors.New("form: " + out.Error)
		}
		return errors.New("form: something went wrong")
	}
	return nil
}

var _ Submitter = (*HTTPSubmitter)(nil)

// Package geo resolves a visitor's country from their network address.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoCountry is returned when the lookup service answers without a usable country.
var ErrNoCountry = errors.New("geo: no country in response")

const DefaultURLTemplate = "https://ipapi.co/%s/json/"

// Locator resolves a country name for a public IP address.
type Locator interface {
	Country(ctx context.Context, ip string) (string, error)
}

// Config describes the lookup endpoint.
type Config struct {
	URLTemplate string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// HTTPLocator queries an ipapi-style JSON endpoint.
type HTTPLocator struct {
	urlTemplate string
	http        *http.Client
}

type lookupResponse struct {
	CountryName string `json:"country_name"`
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
}

// NewHTTPLocator returns a locator for cfg. The template must contain one %s
// for the address.
func NewHTTPLocator(cfg Config) (*HTTPLocator, error) {
	tmpl := strings.TrimSpace(cfg.URLTemplate)
	if tmpl == "" {
		tmpl = DefaultURLTemplate
	}
	if strings.Count(tmpl, "%s") != 1 {
		return nil, fmt.Errorf("geo: url template %q must contain exactly one %%s", tmpl)
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPLocator{urlTemplate: tmpl, http: client}, nil
}

// Country looks ip up. Non-2xx statuses, error payloads, malformed JSON and a
// blank country name are all errors.
func (l *HTTPLocator) Country(ctx context.Context, ip string) (string, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return "", errors.New("geo: ip required")
	}
	endpoint := fmt.Sprintf(l.urlTemplate, url.PathEscape(ip))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("geo: request build failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("geo: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("geo: read response failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("geo: %s", resp.Status)
	}

	var out lookupResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("geo: decode response failed: %w", err)
	}
	if out.Error {
		return "", fmt.Errorf("geo: lookup rejected: %s", out.Reason)
	}
	country := strings.TrimSpace(out.CountryName)
	if country == "" {
		return "", ErrNoCountry
	}
	return country, nil
}

var _ Locator = (*HTTPLocator)(nil)

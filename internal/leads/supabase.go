package leads

import (
	"bytes"
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

// SupabaseConfig controls the PostgREST-backed lead store.
type SupabaseConfig struct {
	URL        string
	ServiceKey string
	Table      string
	HTTPClient *http.Client
}

// SupabaseStore inserts leads through the Supabase REST API using the
// service-role key. It is safe for server-side use only.
type SupabaseStore struct {
	endpoint   string
	serviceKey string
	httpClient *http.Client
}

// supabaseRow is the column set written to the leads table.
type supabaseRow struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          *string  `json:"phone"`
	Country        *string  `json:"country"`
	Message        string   `json:"message"`
	SpamScore      float64  `json:"spam_score"`
	SpamSignals    []string `json:"spam_signals"`
	VisitorCountry *string  `json:"visitor_country"`
	IPAddress      *string  `json:"ip_address"`
	UserAgent      *string  `json:"user_agent"`
	Commentary     *string  `json:"commentary"`
}

// NewSupabaseStore validates cfg and builds a store.
func NewSupabaseStore(cfg SupabaseConfig) (*SupabaseStore, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" || strings.TrimSpace(cfg.ServiceKey) == "" {
		return nil, errors.New("leads: SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required")
	}
	table := strings.TrimSpace(cfg.Table)
	if table == "" {
		table = "leads"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &SupabaseStore{
		endpoint:   base + "/rest/v1/" + url.PathEscape(table),
		serviceKey: cfg.ServiceKey,
		httpClient: httpClient,
	}, nil
}

// Insert posts one row. Any non-2xx response is returned as an error.
func (s *SupabaseStore) Insert(ctx context.Context, lead *Lead) error {
	if lead == nil {
		return ErrNilLead
	}
	signals := lead.SpamSignals
	if signals == nil {
		signals = []string{}
	}
	body, err := json.Marshal(supabaseRow{
		ID:             lead.ID,
		Name:           lead.Name,
		Email:          lead.Email,
		Phone:          nullable(lead.Phone),
		Country:        nullable(lead.Country),
		Message:        lead.Message,
		SpamScore:      lead.SpamScore,
		SpamSignals:    signals,
		VisitorCountry: lead.VisitorCountry,
		IPAddress:      nullable(lead.IPAddress),
		UserAgent:      nullable(lead.UserAgent),
		Commentary:     nullable(lead.Commentary),
	})
	if err != nil {
		return fmt.Errorf("leads: marshal supabase row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("leads: build supabase request: %w", err)
	}
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("leads: supabase insert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
		return fmt.Errorf("leads: supabase insert status %d (%s): %s", resp.StatusCode, apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("leads: supabase insert status %d", resp.StatusCode)
}

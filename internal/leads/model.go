package leads

import (
	"strings"
	"time"
)

// Submission is the contact form payload as posted by the browser.
// Company is the honeypot: the input is hidden from real visitors.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
	Message string `json:"message"`
	Company string `json:"company"`
}

// Normalize returns a copy with surrounding whitespace removed from every field.
func (s Submission) Normalize() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.TrimSpace(s.Email),
		Phone:   strings.TrimSpace(s.Phone),
		Country: strings.TrimSpace(s.Country),
		Message: strings.TrimSpace(s.Message),
		Company: strings.TrimSpace(s.Company),
	}
}

// IsBot reports whether the honeypot field was filled in.
func (s Submission) IsBot() bool {
	return strings.TrimSpace(s.Company) != ""
}

// Lead is a validated submission plus the fields derived on the server.
type Lead struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Country        string    `json:"country"`
	Message        string    `json:"message"`
	SpamScore      float64   `json:"spam_score"`
	SpamSignals    []string  `json:"spam_signals"`
	VisitorCountry *string   `json:"visitor_country"`
	IPAddress      string    `json:"ip_address"`
	UserAgent      string    `json:"user_agent"`
	Commentary     string    `json:"commentary,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewLead copies the submitted fields of sub into a Lead. Derived fields are
// left for the caller to fill.
func NewLead(id string, sub Submission, createdAt time.Time) *Lead {
	sub = sub.Normalize()
	return &Lead{
		ID:        id,
		Name:      sub.Name,
		Email:     sub.Email,
		Phone:     sub.Phone,
		Country:   sub.Country,
		Message:   sub.Message,
		CreatedAt: createdAt,
	}
}

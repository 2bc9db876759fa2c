package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/iglloo/lead-intake/internal/leads"
	"github.com/iglloo/lead-intake/pkg/logging"
)

// AdminLeadsHandler serves operator lookups of stored leads.
type AdminLeadsHandler struct {
	reader leads.Reader
	logger *logging.Logger
}

// NewAdminLeadsHandler creates a new admin leads handler.
func NewAdminLeadsHandler(reader leads.Reader, logger *logging.Logger) *AdminLeadsHandler {
	if reader == nil {
		panic("handlers: lead reader required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminLeadsHandler{
		reader: reader,
		logger: logger,
	}
}

// LeadResponse is a stored lead as shown to operators.
type LeadResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone,omitempty"`
	Country        string   `json:"country,omitempty"`
	Message        string   `json:"message"`
	SpamScore      float64  `json:"spam_score"`
	SpamSignals    []string `json:"spam_signals"`
	VisitorCountry string   `json:"visitor_country,omitempty"`
	IPAddress      string   `json:"ip_address,omitempty"`
	UserAgent      string   `json:"user_agent,omitempty"`
	Commentary     string   `json:"commentary,omitempty"`
	CreatedAt      string   `json:"created_at"`
}

// GetLead returns one lead.
// GET /admin/leads/{leadID}
func (h *AdminLeadsHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	leadID := strings.TrimSpace(chi.URLParam(r, "leadID"))
	if _, err := uuid.Parse(leadID); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	lead, err := h.reader.GetByID(r.Context(), leadID)
	if err != nil {
		if errors.Is(err, leads.ErrLeadNotFound) {
			writeJSONError(w, http.StatusNotFound, "lead not found")
			return
		}
		h.logger.Error("failed to load lead", "lead_id", leadID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toLeadResponse(lead))
}

func toLeadResponse(lead *leads.Lead) LeadResponse {
	resp := LeadResponse{
		ID:          lead.ID,
		Name:        lead.Name,
		Email:       lead.Email,
		Phone:       lead.Phone,
		Country:     lead.Country,
		Message:     lead.Message,
		SpamScore:   lead.SpamScore,
		SpamSignals: lead.SpamSignals,
		IPAddress:   lead.IPAddress,
		UserAgent:   lead.UserAgent,
		Commentary:  lead.Commentary,
		CreatedAt:   lead.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if resp.SpamSignals == nil {
		resp.SpamSignals = []string{}
	}
	if lead.VisitorCountry != nil {
		resp.VisitorCountry = *lead.VisitorCountry
	}
	return resp
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

package intake

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iglloo/lead-intake/internal/leads"
	"github.com/iglloo/lead-intake/pkg/logging"
)

const maxBodyBytes = 64 << 10

const (
	msgMethodNotAllowed = "Method not allowed"
	msgInvalidBody      = "Invalid request body."
	msgNotConfigured    = "Email service not configured on server."
	msgFailed           = "Failed to send message."
)

// Submitter is the pipeline the handler drives.
type Submitter interface {
	Submit(ctx context.Context, sub leads.Submission, meta RequestMeta) (Result, error)
}

// Handler exposes the pipeline as the contact form endpoint.
type Handler struct {
	service Submitter
	logger  *logging.Logger
}

type ackResponse struct {
	OK     bool     `json:"ok"`
	Error  string   `json:"error,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

// NewHandler builds the HTTP handler for svc.
func NewHandler(svc Submitter, logger *logging.Logger) *Handler {
	if svc == nil {
		panic("intake: submitter cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: svc, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, ackResponse{Error: msgMethodNotAllowed})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var sub leads.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.logger.Warn("intake: invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, ackResponse{Error: msgInvalidBody})
		return
	}

	_, err := h.service.Submit(r.Context(), sub, RequestMeta{
		RemoteAddr:   r.RemoteAddr,
		ForwardedFor: r.Header.Get("X-Forwarded-For"),
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		if verr, ok := leads.AsValidationError(err); ok {
			writeJSON(w, http.StatusBadRequest, ackResponse{Error: verr.Message, Fields: verr.Fields})
			return
		}
		if errors.Is(err, ErrNoChannels) {
			h.logger.Error("intake: no notification channel configured")
			writeJSON(w, http.StatusInternalServerError, ackResponse{Error: msgNotConfigured})
			return
		}
		h.logger.Error("intake: submit failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ackResponse{Error: msgFailed})
		return
	}

	writeJSON(w, http.StatusOK, ackResponse{OK: true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

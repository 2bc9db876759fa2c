// Package form drives the contact form: field state, local validation, the
// submission request and the resulting UI state.
package form

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/iglloo/lead-intake/internal/leads"
	"github.com/iglloo/lead-intake/pkg/logging"
)

// State is the form's UI state.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// Field names accepted by OnFieldChange. They match the wire keys.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldCountry = "country"
	FieldMessage = "message"
	FieldCompany = "company"
)

const (
	MsgMissing = "Please fill in your name, email, and message."
	MsgFailure = "Something went wrong while sending your message. Please try again."
	MsgSuccess = "Thank you! We've received your inquiry and will get back to you as soon as possible."
)

// ErrUnknownField is returned by OnFieldChange for names that are not form fields.
var ErrUnknownField = errors.New("form: unknown field")

// Submitter sends a submission and reports whether it was acknowledged.
type Submitter interface {
	Submit(ctx context.Context, sub leads.Submission) error
}

// View is a snapshot of what the visitor sees.
type View struct {
	State   State
	Message string
	// Field names the input a validation message refers to, if any.
	Field  string
	Values leads.Submission
}

// Controller holds the form state for one visitor. It is safe for concurrent use.
type Controller struct {
	mu         sync.Mutex
	values     leads.Submission
	state      State
	message    string
	field      string
	errFields  []string
	generation int

	submitter  Submitter
	rules      leads.Rules
	resetAfter time.Duration
	logger     *logging.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithResetAfter makes success and error states revert to idle after d.
func WithResetAfter(d time.Duration) Option {
	return func(c *Controller) { c.resetAfter = d }
}

// WithRules replaces the client-side rules.
func WithRules(rules leads.Rules) Option {
	return func(c *Controller) { c.rules = rules }
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController returns an idle controller posting through submitter.
func NewController(submitter Submitter, opts ...Option) *Controller {
	if submitter == nil {
		panic("form: submitter cannot be nil")
	}
	c := &Controller{
		state:     StateIdle,
		submitter: submitter,
		rules:     leads.ClientRules(),
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnFieldChange stores value and clears a validation message shown for field.
func (c *Controller) OnFieldChange(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch field {
	case FieldName:
		c.values.Name = value
	case FieldEmail:
		c.values.Email = value
	case FieldPhone:
		c.values.Phone = value
	case FieldCountry:
		c.values.Country = value
	case FieldMessage:
		c.values.Message = value
	case FieldCompany:
		c.values.Company = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	if c.state == StateError && slices.Contains(c.errFields, field) {
		c.transition(StateIdle, "", "")
	}
	return nil
}

// OnSubmit validates locally and, when the input passes, posts it. It blocks
// until the request completes. A submit while one is in flight is ignored.
func (c *Controller) OnSubmit(ctx context.Context) View {
	c.mu.Lock()
	if c.state == StateSubmitting {
		v := c.viewLocked()
		c.mu.Unlock()
		return v
	}

	sub := c.values
	if verr := leads.Validate(sub, c.rules); verr != nil {
		msg, field := verr.Message, firstField(verr)
		if verr.Missing {
			msg = MsgMissing
		}
		c.transition(StateError, msg, field)
		c.errFields = append([]string(nil), verr.Fields...)
		v := c.viewLocked()
		c.mu.Unlock()
		return v
	}

	if sub.IsBot() {
		c.logger.Warn("form: honeypot field filled, discarding submission")
		c.values = leads.Submission{}
		c.transition(StateSuccess, MsgSuccess, "")
		v := c.viewLocked()
		c.mu.Unlock()
		return v
	}

	c.transition(StateSubmitting, "", "")
	c.mu.Unlock()

	err := c.submitter.Submit(ctx, sub)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Error("form: submission failed", "error", err)
		c.transition(StateError, MsgFailure, "")
		return c.viewLocked()
	}
	c.values = leads.Submission{}
	c.transition(StateSuccess, MsgSuccess, "")
	return c.viewLocked()
}

// View returns the current snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	return View{State: c.state, Message: c.message, Field: c.field, Values: c.values}
}

// transition must be called with mu held.
func (c *Controller) transition(state State, message, field string) {
	c.generation++
	c.state = state
	c.message = message
	c.field = field
	c.errFields = nil

	if c.resetAfter <= 0 || (state != StateSuccess && state != StateError) {
		return
	}
	gen := c.generation
	time.AfterFunc(c.resetAfter, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation == gen {
			c.generation++
			c.state = StateIdle
			c.message = ""
			c.field = ""
			c.errFields = nil
		}
	})
}

func firstField(verr *leads.ValidationError) string {
	if len(verr.Fields) == 1 {
		return verr.Fields[0]
	}
	return ""
}

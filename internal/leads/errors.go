package leads

import (
	"errors"
	"strings"
)

var (
	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrNilLead is returned when a store is asked to insert nothing
	ErrNilLead = errors.New("leads: lead is nil")
)

// ValidationError describes why a submission was rejected. Its message is
// safe to show to the visitor.
type ValidationError struct {
	Fields  []string
	Message string
	// Missing is set when the failure is an absent required field rather
	// than a malformed one.
	Missing bool
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// HasField reports whether field is among the offending fields.
func (e *ValidationError) HasField(field string) bool {
	if e == nil {
		return false
	}
	for _, f := range e.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

func missingFieldsError(fields []string) *ValidationError {
	return &ValidationError{
		Fields:  fields,
		Message: "Missing required fields: " + strings.Join(fields, ", ") + ".",
		Missing: true,
	}
}

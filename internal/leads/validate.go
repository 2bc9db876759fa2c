package leads

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/iglloo/lead-intake/internal/config"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern   = regexp.MustCompile(`^\+?[0-9\s().\-]{6,20}$`)
	countryPattern = regexp.MustCompile(`^[\p{L}\s]+$`)
)

// Rules controls how strict validation is. The zero value only enforces the
// required fields and the email shape.
type Rules struct {
	RequireCountry   bool
	MinMessageLength int
	MaxMessageLength int
	ValidateFormats  bool
}

// ClientRules mirrors the checks the contact form runs before posting.
func ClientRules() Rules {
	return Rules{
		MinMessageLength: 10,
		ValidateFormats:  true,
	}
}

// ServerRules builds the intake rules from the deployment configuration.
func ServerRules(cfg *config.Config) Rules {
	if cfg == nil {
		return Rules{}
	}
	return Rules{
		RequireCountry:   cfg.RequireCountry,
		MinMessageLength: cfg.MinMessageLength,
		MaxMessageLength: cfg.MaxMessageLength,
		ValidateFormats:  cfg.ValidateFormats,
	}
}

// ValidEmail reports whether email has the basic local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPhone reports whether phone looks like a phone number.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidCountry reports whether country contains only letters and spaces.
func ValidCountry(country string) bool {
	return countryPattern.MatchString(country)
}

// Validate checks sub against rules. It returns nil when sub is acceptable.
func Validate(sub Submission, rules Rules) *ValidationError {
	sub = sub.Normalize()

	var missing []string
	if sub.Name == "" {
		missing = append(missing, "name")
	}
	if sub.Email == "" {
		missing = append(missing, "email")
	}
	if sub.Message == "" {
		missing = append(missing, "message")
	}
	if rules.RequireCountry && sub.Country == "" {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		return missingFieldsError(missing)
	}

	if !ValidEmail(sub.Email) {
		return &ValidationError{Fields: []string{"email"}, Message: "Please enter a valid email address."}
	}

	length := utf8.RuneCountInString(sub.Message)
	if rules.MinMessageLength > 0 && length < rules.MinMessageLength {
		return &ValidationError{Fields: []string{"message"}, Message: "Please add a bit more detail to your message."}
	}
	if rules.MaxMessageLength > 0 && length > rules.MaxMessageLength {
		return &ValidationError{
			Fields:  []string{"message"},
			Message: fmt.Sprintf("Message must be at most %d characters.", rules.MaxMessageLength),
		}
	}

	if !rules.ValidateFormats {
		return nil
	}
	if sub.Phone != "" && !ValidPhone(sub.Phone) {
		return &ValidationError{Fields: []string{"phone"}, Message: "Please enter a valid phone number."}
	}
	if sub.Country != "" && !ValidCountry(sub.Country) {
		return &ValidationError{Fields: []string{"country"}, Message: "Please enter a valid country name."}
	}
	return nil
}

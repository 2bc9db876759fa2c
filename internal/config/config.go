package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	LogFormat          string
	CORSAllowedOrigins []string

	// Primary (sandbox) SMTP relay
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPass       string
	SandboxToEmail string

	// Secondary (production) forwarding channel
	ForwardProvider   string
	ProductionToEmail string
	MailtrapAPIToken  string
	MailtrapAPIURL    string
	SendGridAPIKey    string
	SESConfigSet      string

	MailFromEmail string
	MailFromName  string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Lead persistence
	LeadStore              string
	SupabaseURL            string
	SupabaseServiceRoleKey string
	SupabaseLeadsTable     string
	DatabaseURL            string

	GeoLookupEnabled bool
	GeoLookupURL     string

	// AI commentary
	CommentaryEnabled  bool
	CommentaryProvider string
	GeminiAPIKey       string
	GeminiModel        string
	BedrockModelID     string

	// Server-side validation strictness
	RequireCountry   bool
	MinMessageLength int
	MaxMessageLength int
	ValidateFormats  bool

	ConcurrentFanout    bool
	CollaboratorTimeout time.Duration

	RedisAddr          string
	RedisPassword      string
	RedisTLS           bool
	RateLimitPerMinute int

	AdminJWTSecret string
}

// Load reads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),

		SMTPHost:       getEnv("MAILTRAP_HOST", ""),
		SMTPPort:       getEnvAsInt("MAILTRAP_PORT", 587),
		SMTPUser:       getEnv("MAILTRAP_USER", ""),
		SMTPPass:       getEnv("MAILTRAP_PASS", ""),
		SandboxToEmail: getEnv("SANDBOX_TO_EMAIL", "contact@iglloo.online"),

		ForwardProvider:   strings.ToLower(strings.TrimSpace(getEnv("FORWARD_PROVIDER", "mailtrap"))),
		ProductionToEmail: getEnv("GMAIL_TO_EMAIL", "iglloo.online@gmail.com"),
		MailtrapAPIToken:  getEnv("MAILTRAP_API_TOKEN", ""),
		MailtrapAPIURL:    getEnv("MAILTRAP_API_URL", "https://send.api.mailtrap.io/api/send"),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SESConfigSet:      getEnv("SES_CONFIGURATION_SET", ""),

		MailFromEmail: getEnv("MAIL_FROM_EMAIL", "no-reply@iglloo.online"),
		MailFromName:  getEnv("MAIL_FROM_NAME", "Iglloo Website"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseLeadsTable:     getEnv("SUPABASE_LEADS_TABLE", "leads"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),

		GeoLookupEnabled: getEnvAsBool("GEOLOOKUP_ENABLED", true),
		GeoLookupURL:     getEnv("GEOLOOKUP_URL", "https://ipapi.co/%s/json/"),

		CommentaryEnabled:  getEnvAsBool("COMMENTARY_ENABLED", false),
		CommentaryProvider: strings.ToLower(strings.TrimSpace(getEnv("COMMENTARY_PROVIDER", "gemini"))),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", ""),
		BedrockModelID:     getEnv("BEDROCK_MODEL_ID", ""),

		RequireCountry:   getEnvAsBool("LEAD_REQUIRE_COUNTRY", false),
		MinMessageLength: getEnvAsInt("LEAD_MIN_MESSAGE_LENGTH", 0),
		MaxMessageLength: getEnvAsInt("LEAD_MAX_MESSAGE_LENGTH", 5000),
		ValidateFormats:  getEnvAsBool("LEAD_VALIDATE_FORMATS", false),

		ConcurrentFanout:    getEnvAsBool("INTAKE_CONCURRENT_FANOUT", false),
		CollaboratorTimeout: getEnvAsDuration("COLLABORATOR_TIMEOUT", 10*time.Second),

		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisTLS:           getEnvAsBool("REDIS_TLS", false),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 5),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
	}
	cfg.LeadStore = resolveLeadStore(getEnv("LEAD_STORE", ""), cfg)
	return cfg
}

// SMTPConfigured reports whether the primary relay has everything it needs.
func (c *Config) SMTPConfigured() bool {
	return strings.TrimSpace(c.SMTPHost) != "" &&
		strings.TrimSpace(c.SMTPUser) != "" &&
		strings.TrimSpace(c.SMTPPass) != ""
}

func resolveLeadStore(explicit string, cfg *Config) string {
	explicit = strings.ToLower(strings.TrimSpace(explicit))
	if explicit != "" {
		return explicit
	}
	switch {
	case cfg.SupabaseURL != "":
		return "supabase"
	case cfg.DatabaseURL != "":
		return "postgres"
	default:
		return "none"
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

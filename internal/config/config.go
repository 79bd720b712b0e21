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
	ServiceName        string
	CORSAllowedOrigins []string
	CORSAllowedHeaders []string
	CORSMaxAge         time.Duration
	StaticDir          string

	// Lead qualification policy
	LeadAmountThreshold int64
	LeadIncompleteAfter time.Duration
	LeadSessionTTL      time.Duration
	LeadSweepInterval   time.Duration

	// Lead notification delivery
	NotifyBackend    string
	NotifyTimeout    time.Duration
	NotifyEmailTo    string
	FormspreeURL     string
	FormspreeReplyTo string

	// SendGrid Email Configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	// SES / SMTP Email Configuration
	SESFromEmail        string
	SESConfigurationSet string
	SMTPHost            string
	SMTPPort            int
	SMTPUsername        string
	SMTPPassword        string
	SMTPFromEmail       string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// AI reply generation
	GeminiAPIKey   string
	GeminiModel    string
	BedrockModelID string
	AITimeout      time.Duration
	AISystemPrompt string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	TranscriptTTL time.Duration

	KeepAliveURL      string
	KeepAliveInterval time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		ServiceName:        getEnv("SERVICE_NAME", "Fortis Chatbot API"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		CORSAllowedHeaders: getEnvAsList("CORS_ALLOWED_HEADERS", []string{"Content-Type", "X-Session-ID", "X-Request-ID"}),
		CORSMaxAge:         getEnvAsDuration("CORS_MAX_AGE", 10*time.Minute),
		StaticDir:          getEnv("STATIC_DIR", ""),

		LeadAmountThreshold: getEnvAsInt64("LEAD_AMOUNT_THRESHOLD", 50000),
		LeadIncompleteAfter: getEnvAsDuration("LEAD_INCOMPLETE_AFTER", 10*time.Minute),
		LeadSessionTTL:      getEnvAsDuration("LEAD_SESSION_TTL", 2*time.Hour),
		LeadSweepInterval:   getEnvAsDuration("LEAD_SWEEP_INTERVAL", time.Minute),

		NotifyBackend:    strings.ToLower(strings.TrimSpace(getEnv("NOTIFY_BACKEND", "auto"))),
		NotifyTimeout:    getEnvAsDuration("NOTIFY_TIMEOUT", 10*time.Second),
		NotifyEmailTo:    getEnv("NOTIFY_EMAIL_TO", ""),
		FormspreeURL:     getEnv("FORMSPREE_URL", ""),
		FormspreeReplyTo: getEnv("FORMSPREE_REPLY_TO", "bot@fortissteelbot.com"),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Fortis Chatbot"),

		SESFromEmail:        getEnv("SES_FROM_EMAIL", ""),
		SESConfigurationSet: getEnv("SES_CONFIGURATION_SET", ""),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:        getEnv("SMTP_USERNAME", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail:       getEnv("SMTP_FROM_EMAIL", ""),

		AWSRegion:           getEnv("AWS_REGION", "eu-central-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),
		AITimeout:      getEnvAsDuration("AI_TIMEOUT", 20*time.Second),
		AISystemPrompt: getEnv("AI_SYSTEM_PROMPT", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		TranscriptTTL: getEnvAsDuration("TRANSCRIPT_TTL", 2*time.Hour),

		KeepAliveURL:      getEnv("KEEPALIVE_URL", ""),
		KeepAliveInterval: getEnvAsDuration("KEEPALIVE_INTERVAL", 0),
	}
}

// AIConfigured reports whether any LLM provider has credentials.
func (c *Config) AIConfigured() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != "" || strings.TrimSpace(c.BedrockModelID) != ""
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := strings.ReplaceAll(getEnv(key, ""), "_", "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
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

// getEnvAsList splits a comma-separated variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

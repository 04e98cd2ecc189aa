package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Auth       AuthConfig
	LLM        LLMConfig
	Graph      GraphConfig
	Resilience ResilienceConfig
	Telemetry  TelemetryConfig
	Redis      RedisConfig
	Storage    StorageConfig
	NATS       NATSConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"3978"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"*"`
	ShutdownTimeout int           `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
	RequestTimeout  time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"120s"`
}

// AuthConfig holds Entra ID bearer token settings
type AuthConfig struct {
	Enabled        bool     `envconfig:"AUTH_ENABLED" default:"true"`
	TenantID       string   `envconfig:"TENANT_ID"`
	ClientID       string   `envconfig:"API_CLIENT_ID"`
	Audience       string   `envconfig:"API_AUDIENCE"`
	RequiredScopes []string `envconfig:"REQUIRED_SCOPES"`
	RequiredRoles  []string `envconfig:"REQUIRED_ROLES"`
	AllowedAppIDs  []string `envconfig:"ALLOWED_APPIDS"`

	// RoleSatisfiesScope lets an app-only token holding any required role
	// pass the scope check
	RoleSatisfiesScope bool          `envconfig:"AUTH_ROLE_SATISFIES_SCOPE" default:"false"`
	JWKSURL            string        `envconfig:"JWKS_URL"`
	JWKSCacheTTL       time.Duration `envconfig:"JWKS_CACHE_TTL" default:"1h"`
	ClockSkew          time.Duration `envconfig:"AUTH_CLOCK_SKEW" default:"60s"`
}

// LLMConfig holds the OpenAI-compatible model endpoint settings
type LLMConfig struct {
	Token        string        `envconfig:"GITHUB_TOKEN"`
	Endpoint     string        `envconfig:"GITHUB_MODELS_ENDPOINT" default:"https://models.inference.ai.azure.com"`
	Models       []string      `envconfig:"GITHUB_MODELS_LIST" default:"gpt-4o,gpt-4o-mini"`
	DefaultModel string        `envconfig:"GITHUB_MODELS_DEFAULT" default:"gpt-4o"`
	Temperature  float64       `envconfig:"LLM_TEMPERATURE" default:"0.3"`
	HTTPTimeout  time.Duration `envconfig:"LLM_HTTP_TIMEOUT" default:"90s"`
}

// GraphConfig holds Microsoft Graph settings for Planner and Teams
type GraphConfig struct {
	ClientID     string  `envconfig:"GRAPH_CLIENT_ID"`
	ClientSecret string  `envconfig:"GRAPH_CLIENT_SECRET"`
	TenantID     string  `envconfig:"GRAPH_TENANT_ID"`
	BaseURL      string  `envconfig:"GRAPH_BASE_URL" default:"https://graph.microsoft.com/v1.0"`
	TokenURL     string  `envconfig:"GRAPH_TOKEN_URL"`
	PlanID       string  `envconfig:"PLANNER_PLAN_ID"`
	BucketID     string  `envconfig:"PLANNER_BUCKET_ID"`
	TeamID       string  `envconfig:"TEAMS_TEAM_ID"`
	ChannelID    string  `envconfig:"TEAMS_CHANNEL_ID"`
	RateLimit    float64 `envconfig:"GRAPH_RATE_LIMIT" default:"4"`
	RateBurst    int     `envconfig:"GRAPH_RATE_BURST" default:"4"`
}

// Enabled reports whether Graph credentials are configured
func (g GraphConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.TenantID != ""
}

// ResilienceConfig holds retry and circuit breaker settings
type ResilienceConfig struct {
	RetryMaxAttempts        int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	RetryInitialDelay       time.Duration `envconfig:"RETRY_INITIAL_DELAY" default:"1s"`
	RetryMaxDelay           time.Duration `envconfig:"RETRY_MAX_DELAY" default:"10s"`
	RetryBackoffMultiplier  float64       `envconfig:"RETRY_BACKOFF_MULTIPLIER" default:"2"`
	BreakerFailureThreshold int           `envconfig:"BREAKER_FAILURE_THRESHOLD" default:"5"`
	BreakerSuccessThreshold int           `envconfig:"BREAKER_SUCCESS_THRESHOLD" default:"2"`
	BreakerResetTimeout     time.Duration `envconfig:"BREAKER_RESET_TIMEOUT" default:"60s"`
	ExtractionTimeout       time.Duration `envconfig:"EXTRACTION_TIMEOUT" default:"60s"`
	ActionTimeout           time.Duration `envconfig:"ACTION_TIMEOUT" default:"30s"`
}

// TelemetryConfig holds tracing, metrics and log redaction settings
type TelemetryConfig struct {
	ExporterType     string  `envconfig:"OTEL_EXPORTER_TYPE" default:"console"`
	OTLPEndpoint     string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName      string  `envconfig:"OTEL_SERVICE_NAME" default:"external-agent-taskmanagement"`
	SampleRate       float64 `envconfig:"OTEL_SAMPLE_RATE" default:"1"`
	MetricsNamespace string  `envconfig:"METRICS_NAMESPACE" default:"meeting_agent"`
	PIIFilterEnabled bool    `envconfig:"PII_FILTER_ENABLED" default:"true"`
}

// RedisConfig holds Redis configuration. An empty host disables Redis.
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// StorageConfig holds MinIO configuration for evaluation reports. An empty
// endpoint disables archiving.
type StorageConfig struct {
	Endpoint        string `envconfig:"STORAGE_ENDPOINT"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY"`
	BucketName      string `envconfig:"STORAGE_BUCKET" default:"meeting-agent-evaluations"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
}

// NATSConfig holds the summary event publisher settings. An empty URL
// disables publishing.
type NATSConfig struct {
	URL     string `envconfig:"NATS_URL"`
	Subject string `envconfig:"NATS_SUMMARY_SUBJECT" default:"meeting.summary.processed"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config, err := FromEnv()
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// FromEnv reads every section from the process environment without validating
func FromEnv() (*Config, error) {
	config := &Config{}
	sections := []interface{}{
		&config.Server,
		&config.Auth,
		&config.LLM,
		&config.Graph,
		&config.Resilience,
		&config.Telemetry,
		&config.Redis,
		&config.Storage,
		&config.NATS,
	}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	config.Server.AllowedOrigins = trimList(config.Server.AllowedOrigins)
	config.Auth.RequiredScopes = trimList(config.Auth.RequiredScopes)
	config.Auth.RequiredRoles = trimList(config.Auth.RequiredRoles)
	config.Auth.AllowedAppIDs = trimList(config.Auth.AllowedAppIDs)
	config.LLM.Models = trimList(config.LLM.Models)

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.LLM.Token == "" {
		return fmt.Errorf("GITHUB_TOKEN is required")
	}
	if c.Auth.Enabled {
		if c.Auth.TenantID == "" {
			return fmt.Errorf("TENANT_ID is required when AUTH_ENABLED=true")
		}
		if c.Auth.Audience == "" && c.Auth.ClientID == "" {
			return fmt.Errorf("API_AUDIENCE or API_CLIENT_ID is required when AUTH_ENABLED=true")
		}
	}
	if c.Graph.Enabled() && (c.Graph.PlanID == "" || c.Graph.BucketID == "") {
		return fmt.Errorf("PLANNER_PLAN_ID and PLANNER_BUCKET_ID are required when Graph credentials are set")
	}
	switch c.Telemetry.ExporterType {
	case "console", "otlp":
	default:
		return fmt.Errorf("OTEL_EXPORTER_TYPE must be console or otlp, got %q", c.Telemetry.ExporterType)
	}
	if c.Telemetry.ExporterType == "otlp" && c.Telemetry.OTLPEndpoint == "" {
		return fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required for the otlp exporter")
	}
	if c.Resilience.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

// IsProduction reports whether diagnostics must be hidden from clients
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// JWKSURL returns the signing key endpoint for the configured tenant
func (c *Config) JWKSURL() string {
	if c.Auth.JWKSURL != "" {
		return c.Auth.JWKSURL
	}
	return fmt.Sprintf("https://login.microsoftonline.com/%s/discovery/v2.0/keys", c.Auth.TenantID)
}

// Issuer returns the expected token issuer for the configured tenant
func (c *Config) Issuer() string {
	return fmt.Sprintf("https://sts.windows.net/%s/", c.Auth.TenantID)
}

// Helper functions

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

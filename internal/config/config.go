package config

import (
	"os"
	"strconv"
)

// FailurePolicy controls what the AI orchestrator does when a model
// call transport-fails or returns invalid output.
type FailurePolicy string

const (
	// PolicyFallback degrades to a locally synthesized result (default).
	PolicyFallback FailurePolicy = "fallback"
	// PolicyError propagates the failure to the caller instead.
	PolicyError FailurePolicy = "error"
)

// Config holds all configuration for the Caseflow backend.
type Config struct {
	Port      int
	Version   string
	Telemetry TelemetryConfig
	AI        AIConfig
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// AIConfig configures the model transport and orchestrator behavior.
// FailurePolicy is deliberately an explicit configuration value rather
// than something inferred from a deployment environment flag.
type AIConfig struct {
	Endpoint       string
	APIKey         string
	Model          string
	TimeoutSeconds int
	MaxRetries     int
	FailurePolicy  FailurePolicy
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envInt("CASEFLOW_PORT", 8080),
		Version: envStr("CASEFLOW_VERSION", "0.4.0"),
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", true),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "caseflow-backend"),
		},
		AI: AIConfig{
			Endpoint:       envStr("OPENROUTER_ENDPOINT", "https://openrouter.ai/api/v1"),
			APIKey:         envStr("OPENROUTER_API_KEY", ""),
			Model:          envStr("OPENROUTER_MODEL", "anthropic/claude-3.5-sonnet"),
			TimeoutSeconds: envInt("CASEFLOW_AI_TIMEOUT", 60),
			MaxRetries:     envInt("CASEFLOW_AI_RETRIES", 2),
			FailurePolicy:  FailurePolicy(envStr("CASEFLOW_AI_FAILURE_POLICY", string(PolicyFallback))),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

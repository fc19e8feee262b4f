package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("AI_API_KEY", "sk-test")
}

func TestLoadProductionConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.AI.MaxTokens)
	assert.Equal(t, 2000, cfg.AI.SubjectLineMaxTokens)
	assert.Equal(t, 0.7, cfg.AI.DefaultTemperature)
	assert.Equal(t, 0.8, cfg.AI.SubjectLineTemperature)
	assert.Equal(t, 300*time.Second, cfg.Worker.HardTimeLimit)
	assert.Equal(t, 270*time.Second, cfg.Worker.SoftTimeLimit)
	assert.Equal(t, DefaultGenerationConfig(), cfg.Generation)
}

func TestLoadProductionConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AI_PROVIDER", "mock")
	t.Setenv("AI_API_KEY", "")
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("WORKER_SOFT_TIME_LIMIT", "90s")
	t.Setenv("WORKER_HARD_TIME_LIMIT", "2m")
	t.Setenv("GENERATION_ESTIMATE_GENERATE", "45")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, "mock", cfg.AI.Provider)
	assert.Equal(t, 8, cfg.Worker.Concurrency)
	assert.Equal(t, 90*time.Second, cfg.Worker.SoftTimeLimit)
	assert.Equal(t, 45, cfg.Generation.EstimateGenerate)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestValidateProductionConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"short jwt secret", map[string]string{"JWT_SECRET_KEY": "short"}, "JWT_SECRET_KEY must be at least 32 characters long"},
		{"openai without key", map[string]string{"AI_API_KEY": ""}, "AI_API_KEY is required"},
		{"unknown provider", map[string]string{"AI_PROVIDER": "bedrock"}, "AI_PROVIDER must be one of"},
		{"soft limit above hard limit", map[string]string{"WORKER_SOFT_TIME_LIMIT": "10m"}, "WORKER_SOFT_TIME_LIMIT must be positive and below WORKER_HARD_TIME_LIMIT"},
		{"confidence out of range", map[string]string{"GENERATION_CONFIDENCE_REFINEMENT": "1.5"}, "GENERATION_CONFIDENCE_REFINEMENT must be between 0 and 1"},
		{"bad log level", map[string]string{"LOG_LEVEL": "trace"}, "LOG_LEVEL must be one of"},
		{"per page above max", map[string]string{"GENERATION_DEFAULT_PER_PAGE": "500"}, "GENERATION_DEFAULT_PER_PAGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadProductionConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// Package config provides configuration management and environment variable handling for the application
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ProductionConfig holds all configuration for production environment
type ProductionConfig struct {
	Database   DatabaseConfig   `json:"database"`
	Server     ServerConfig     `json:"server"`
	Security   SecurityConfig   `json:"security"`
	JWT        JWTConfig        `json:"jwt"`
	Logging    LoggingConfig    `json:"logging"`
	Metrics    MetricsConfig    `json:"metrics"`
	Cache      CacheConfig      `json:"cache"`
	AI         AIConfig         `json:"ai"`
	Worker     WorkerConfig     `json:"worker"`
	Generation GenerationConfig `json:"generation"`
	Deployment DeploymentConfig `json:"deployment"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	SlowQueryLog    bool          `json:"slow_query_log"`
	SlowQueryTime   time.Duration `json:"slow_query_time"`
}

// DSN returns the postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type ServerConfig struct {
	Host              string        `json:"host"`
	Port              int           `json:"port"`
	ReadTimeout       time.Duration `json:"read_timeout"`
	WriteTimeout      time.Duration `json:"write_timeout"`
	IdleTimeout       time.Duration `json:"idle_timeout"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout"`
	BodyLimit         int           `json:"body_limit"`
	EnableMetrics     bool          `json:"enable_metrics"`
	TrustedProxies    []string      `json:"trusted_proxies"`
	ProxyHeader       string        `json:"proxy_header"`
	EnableCompression bool          `json:"enable_compression"`
}

type SecurityConfig struct {
	// CORS
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	CORSMaxAge       int      `json:"cors_max_age"`

	// Rate Limiting
	GlobalRateLimit     int           `json:"global_rate_limit"`     // requests per window
	GenerationRateLimit int           `json:"generation_rate_limit"` // job creations per window
	RateLimitWindow     time.Duration `json:"rate_limit_window"`

	// Content Security
	CSPPolicy      string `json:"csp_policy"`
	XFrameOptions  string `json:"x_frame_options"`
	ReferrerPolicy string `json:"referrer_policy"`
	HSTSMaxAge     int    `json:"hsts_max_age"`
}

type JWTConfig struct {
	SecretKey      string        `json:"secret_key"`
	PrivateKey     string        `json:"private_key"`  // RSA private key in PEM format
	PublicKey      string        `json:"public_key"`   // RSA public key in PEM format
	UseRSAKeys     bool          `json:"use_rsa_keys"` // Whether to use RSA keys instead of secret key
	AccessTokenTTL time.Duration `json:"access_token_ttl"`
	Issuer         string        `json:"issuer"`
	Audience       string        `json:"audience"`
}

type LoggingConfig struct {
	Level            string `json:"level"`  // debug, info, warn, error
	Format           string `json:"format"` // json, console
	Output           string `json:"output"` // stdout, file, both
	FilePath         string `json:"file_path"`
	MaxSize          int    `json:"max_size"` // MB
	MaxBackups       int    `json:"max_backups"`
	MaxAge           int    `json:"max_age"` // days
	Compress         bool   `json:"compress"`
	EnableCaller     bool   `json:"enable_caller"`
	EnableStacktrace bool   `json:"enable_stacktrace"`
	EnableAccessLog  bool   `json:"enable_access_log"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type CacheConfig struct {
	Enabled        bool          `json:"enabled"`
	RedisURL       string        `json:"redis_url"`
	RedisDB        int           `json:"redis_db"`
	RedisPrefix    string        `json:"redis_prefix"`
	HealthInterval time.Duration `json:"health_interval"`
}

// AIConfig configures the text generation provider
type AIConfig struct {
	Provider               string        `json:"provider"` // openai, mock
	BaseURL                string        `json:"base_url"`
	APIKey                 string        `json:"-"`
	Model                  string        `json:"model"`
	MaxTokens              int           `json:"max_tokens"`
	SubjectLineMaxTokens   int           `json:"subject_line_max_tokens"`
	DefaultTemperature     float64       `json:"default_temperature"`
	SubjectLineTemperature float64       `json:"subject_line_temperature"`
	RequestTimeout         time.Duration `json:"request_timeout"`
	RequestsPerSecond      float64       `json:"requests_per_second"`
	Burst                  int           `json:"burst"`
}

// WorkerConfig configures the out-of-process generation workers
type WorkerConfig struct {
	QueueName         string        `json:"queue_name"`
	Concurrency       int           `json:"concurrency"`
	DequeueTimeout    time.Duration `json:"dequeue_timeout"`
	HardTimeLimit     time.Duration `json:"hard_time_limit"`
	SoftTimeLimit     time.Duration `json:"soft_time_limit"`
	ReconcileInterval time.Duration `json:"reconcile_interval"`
	StalePendingAge   time.Duration `json:"stale_pending_age"`
	ReconcileBatch    int           `json:"reconcile_batch"`
	HTTPPort          int           `json:"http_port"`
}

// GenerationConfig holds the business constants of the generation pipeline
type GenerationConfig struct {
	GenerationConfidence   float64 `json:"generation_confidence"`
	RefinementConfidence   float64 `json:"refinement_confidence"`
	SubjectLineConfidence  float64 `json:"subject_line_confidence"`
	RawFallbackConfidence  float64 `json:"raw_fallback_confidence"`
	EstimateGenerate       int     `json:"estimate_generate_seconds"`
	EstimateRefine         int     `json:"estimate_refine_seconds"`
	EstimateSubjectLines   int     `json:"estimate_subject_lines_seconds"`
	EstimateOptimize       int     `json:"estimate_optimize_seconds"`
	DefaultPerPage         int     `json:"default_per_page"`
	MaxPerPage             int     `json:"max_per_page"`
	SubjectLineContentCap  int     `json:"subject_line_content_cap"`
	DefaultSubjectLineSize int     `json:"default_subject_line_count"`
}

type DeploymentConfig struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
	CommitHash  string `json:"commit_hash"`
	BuildTime   string `json:"build_time"`
}

// DefaultGenerationConfig returns the generation constants used when no environment overrides exist
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		GenerationConfidence:   0.7,
		RefinementConfidence:   0.85,
		SubjectLineConfidence:  0.8,
		RawFallbackConfidence:  0.7,
		EstimateGenerate:       30,
		EstimateRefine:         25,
		EstimateSubjectLines:   15,
		EstimateOptimize:       25,
		DefaultPerPage:         20,
		MaxPerPage:             100,
		SubjectLineContentCap:  1000,
		DefaultSubjectLineSize: 5,
	}
}

// LoadProductionConfig loads and validates configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	// Variables already present in the environment take precedence over .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	gen := DefaultGenerationConfig()

	cfg := &ProductionConfig{
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "mailwright"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
			SlowQueryLog:    getEnvBool("DB_SLOW_QUERY_LOG", true),
			SlowQueryTime:   getEnvDuration("DB_SLOW_QUERY_TIME", 1*time.Second),
		},
		Server: ServerConfig{
			Host:              getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:              getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:       getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:      getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:       getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout:   getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:         getEnvInt("SERVER_BODY_LIMIT", 4*1024*1024), // 4MB
			EnableMetrics:     getEnvBool("SERVER_ENABLE_METRICS", true),
			TrustedProxies:    getEnvStringSlice("SERVER_TRUSTED_PROXIES", []string{"127.0.0.1"}),
			ProxyHeader:       getEnvString("SERVER_PROXY_HEADER", "X-Real-IP"),
			EnableCompression: getEnvBool("SERVER_ENABLE_COMPRESSION", true),
		},
		Security: SecurityConfig{
			AllowedOrigins:      getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods:      getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:      getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Request-ID"}),
			AllowCredentials:    getEnvBool("CORS_ALLOW_CREDENTIALS", false),
			CORSMaxAge:          getEnvInt("CORS_MAX_AGE", 86400),
			GlobalRateLimit:     getEnvInt("GLOBAL_RATE_LIMIT", 1000),
			GenerationRateLimit: getEnvInt("GENERATION_RATE_LIMIT", 30),
			RateLimitWindow:     getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
			CSPPolicy:           getEnvString("CSP_POLICY", "default-src 'self'"),
			XFrameOptions:       getEnvString("X_FRAME_OPTIONS", "DENY"),
			ReferrerPolicy:      getEnvString("REFERRER_POLICY", "strict-origin-when-cross-origin"),
			HSTSMaxAge:          getEnvInt("HSTS_MAX_AGE", 31536000),
		},
		JWT: JWTConfig{
			SecretKey:      getEnvString("JWT_SECRET_KEY", ""),
			PrivateKey:     getEnvString("JWT_PRIVATE_KEY", ""),
			PublicKey:      getEnvString("JWT_PUBLIC_KEY", ""),
			UseRSAKeys:     getEnvBool("JWT_USE_RSA_KEYS", false),
			AccessTokenTTL: getEnvDuration("JWT_ACCESS_TOKEN_TTL", 24*time.Hour),
			Issuer:         getEnvString("JWT_ISSUER", "mailwright"),
			Audience:       getEnvString("JWT_AUDIENCE", "mailwright-api"),
		},
		Logging: LoggingConfig{
			Level:            getEnvString("LOG_LEVEL", "info"),
			Format:           getEnvString("LOG_FORMAT", "json"),
			Output:           getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:         getEnvString("LOG_FILE_PATH", "/var/log/mailwright/app.log"),
			MaxSize:          getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups:       getEnvInt("LOG_MAX_BACKUPS", 10),
			MaxAge:           getEnvInt("LOG_MAX_AGE", 30),
			Compress:         getEnvBool("LOG_COMPRESS", true),
			EnableCaller:     getEnvBool("LOG_ENABLE_CALLER", true),
			EnableStacktrace: getEnvBool("LOG_ENABLE_STACKTRACE", false),
			EnableAccessLog:  getEnvBool("LOG_ENABLE_ACCESS", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnvString("METRICS_PATH", "/metrics"),
		},
		Cache: CacheConfig{
			Enabled:        getEnvBool("CACHE_ENABLED", true),
			RedisURL:       getEnvString("CACHE_REDIS_URL", "redis://localhost:6379"),
			RedisDB:        getEnvInt("CACHE_REDIS_DB", 0),
			RedisPrefix:    getEnvString("CACHE_REDIS_PREFIX", "mailwright:"),
			HealthInterval: getEnvDuration("CACHE_HEALTH_INTERVAL", 30*time.Second),
		},
		AI: AIConfig{
			Provider:               getEnvString("AI_PROVIDER", "openai"),
			BaseURL:                getEnvString("AI_BASE_URL", "https://api.anthropic.com/v1/"),
			APIKey:                 getEnvString("AI_API_KEY", ""),
			Model:                  getEnvString("AI_MODEL", "claude-sonnet-4-20250514"),
			MaxTokens:              getEnvInt("AI_MAX_TOKENS", 4000),
			SubjectLineMaxTokens:   getEnvInt("AI_SUBJECT_LINE_MAX_TOKENS", 2000),
			DefaultTemperature:     getEnvFloat("AI_DEFAULT_TEMPERATURE", 0.7),
			SubjectLineTemperature: getEnvFloat("AI_SUBJECT_LINE_TEMPERATURE", 0.8),
			RequestTimeout:         getEnvDuration("AI_REQUEST_TIMEOUT", 270*time.Second),
			RequestsPerSecond:      getEnvFloat("AI_REQUESTS_PER_SECOND", 2),
			Burst:                  getEnvInt("AI_BURST", 4),
		},
		Worker: WorkerConfig{
			QueueName:         getEnvString("WORKER_QUEUE_NAME", "ai_generation"),
			Concurrency:       getEnvInt("WORKER_CONCURRENCY", 4),
			DequeueTimeout:    getEnvDuration("WORKER_DEQUEUE_TIMEOUT", 5*time.Second),
			HardTimeLimit:     getEnvDuration("WORKER_HARD_TIME_LIMIT", 300*time.Second),
			SoftTimeLimit:     getEnvDuration("WORKER_SOFT_TIME_LIMIT", 270*time.Second),
			ReconcileInterval: getEnvDuration("WORKER_RECONCILE_INTERVAL", 1*time.Minute),
			StalePendingAge:   getEnvDuration("WORKER_STALE_PENDING_AGE", 2*time.Minute),
			ReconcileBatch:    getEnvInt("WORKER_RECONCILE_BATCH", 100),
			HTTPPort:          getEnvInt("WORKER_HTTP_PORT", 9091),
		},
		Generation: GenerationConfig{
			GenerationConfidence:   getEnvFloat("GENERATION_CONFIDENCE_DEFAULT", gen.GenerationConfidence),
			RefinementConfidence:   getEnvFloat("GENERATION_CONFIDENCE_REFINEMENT", gen.RefinementConfidence),
			SubjectLineConfidence:  getEnvFloat("GENERATION_CONFIDENCE_SUBJECT_LINE", gen.SubjectLineConfidence),
			RawFallbackConfidence:  getEnvFloat("GENERATION_CONFIDENCE_RAW_FALLBACK", gen.RawFallbackConfidence),
			EstimateGenerate:       getEnvInt("GENERATION_ESTIMATE_GENERATE", gen.EstimateGenerate),
			EstimateRefine:         getEnvInt("GENERATION_ESTIMATE_REFINE", gen.EstimateRefine),
			EstimateSubjectLines:   getEnvInt("GENERATION_ESTIMATE_SUBJECT_LINES", gen.EstimateSubjectLines),
			EstimateOptimize:       getEnvInt("GENERATION_ESTIMATE_OPTIMIZE", gen.EstimateOptimize),
			DefaultPerPage:         getEnvInt("GENERATION_DEFAULT_PER_PAGE", gen.DefaultPerPage),
			MaxPerPage:             getEnvInt("GENERATION_MAX_PER_PAGE", gen.MaxPerPage),
			SubjectLineContentCap:  getEnvInt("GENERATION_SUBJECT_LINE_CONTENT_CAP", gen.SubjectLineContentCap),
			DefaultSubjectLineSize: getEnvInt("GENERATION_DEFAULT_SUBJECT_LINE_COUNT", gen.DefaultSubjectLineSize),
		},
		Deployment: DeploymentConfig{
			Environment: getEnvString("APP_ENV", "production"),
			Version:     getEnvString("VERSION", "1.0.0"),
			CommitHash:  getEnvString("COMMIT_HASH", "unknown"),
			BuildTime:   getEnvString("BUILD_TIME", "unknown"),
		},
	}

	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// ValidateProductionConfig validates the production configuration
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var errors []string

	// Validate database configuration
	if cfg.Database.Host == "" {
		errors = append(errors, "DB_HOST is required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		errors = append(errors, "DB_PORT must be between 1 and 65535")
	}
	if cfg.Database.Name == "" {
		errors = append(errors, "DB_NAME is required")
	}
	if cfg.Database.User == "" {
		errors = append(errors, "DB_USER is required")
	}

	// Validate JWT configuration
	if cfg.JWT.UseRSAKeys {
		if cfg.JWT.PublicKey == "" {
			errors = append(errors, "JWT_PUBLIC_KEY is required when JWT_USE_RSA_KEYS is set")
		}
	} else if len(cfg.JWT.SecretKey) < 32 {
		errors = append(errors, "JWT_SECRET_KEY must be at least 32 characters long")
	}
	if cfg.JWT.AccessTokenTTL <= 0 {
		errors = append(errors, "JWT_ACCESS_TOKEN_TTL must be positive")
	}

	// Validate server configuration
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}
	if cfg.Server.ReadTimeout <= 0 {
		errors = append(errors, "SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		errors = append(errors, "SERVER_WRITE_TIMEOUT must be positive")
	}

	// Validate logging configuration
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.Logging.Level) {
		errors = append(errors, "LOG_LEVEL must be one of: [debug info warn error]")
	}
	if !slices.Contains([]string{"stdout", "file", "both"}, cfg.Logging.Output) {
		errors = append(errors, "LOG_OUTPUT must be one of: [stdout file both]")
	}
	if cfg.Logging.Output != "stdout" && cfg.Logging.FilePath == "" {
		errors = append(errors, "LOG_FILE_PATH is required when logging to a file")
	}

	// Validate cache configuration if enabled
	if cfg.Cache.Enabled && cfg.Cache.RedisURL == "" {
		errors = append(errors, "CACHE_REDIS_URL is required when cache is enabled")
	}

	// Validate AI configuration
	switch cfg.AI.Provider {
	case "openai":
		if cfg.AI.APIKey == "" {
			errors = append(errors, "AI_API_KEY is required for the openai provider")
		}
	case "mock":
	default:
		errors = append(errors, "AI_PROVIDER must be one of: [openai mock]")
	}
	if cfg.AI.Model == "" {
		errors = append(errors, "AI_MODEL is required")
	}
	if cfg.AI.MaxTokens <= 0 || cfg.AI.SubjectLineMaxTokens <= 0 {
		errors = append(errors, "AI_MAX_TOKENS and AI_SUBJECT_LINE_MAX_TOKENS must be positive")
	}
	if cfg.AI.DefaultTemperature < 0 || cfg.AI.DefaultTemperature > 1 {
		errors = append(errors, "AI_DEFAULT_TEMPERATURE must be between 0 and 1")
	}
	if cfg.AI.RequestsPerSecond <= 0 || cfg.AI.Burst <= 0 {
		errors = append(errors, "AI_REQUESTS_PER_SECOND and AI_BURST must be positive")
	}

	// Validate worker configuration
	if cfg.Worker.QueueName == "" {
		errors = append(errors, "WORKER_QUEUE_NAME is required")
	}
	if cfg.Worker.Concurrency <= 0 {
		errors = append(errors, "WORKER_CONCURRENCY must be positive")
	}
	if cfg.Worker.SoftTimeLimit <= 0 || cfg.Worker.SoftTimeLimit >= cfg.Worker.HardTimeLimit {
		errors = append(errors, "WORKER_SOFT_TIME_LIMIT must be positive and below WORKER_HARD_TIME_LIMIT")
	}
	if cfg.Worker.ReconcileInterval <= 0 {
		errors = append(errors, "WORKER_RECONCILE_INTERVAL must be positive")
	}

	// Validate generation constants
	for name, v := range map[string]float64{
		"GENERATION_CONFIDENCE_DEFAULT":      cfg.Generation.GenerationConfidence,
		"GENERATION_CONFIDENCE_REFINEMENT":   cfg.Generation.RefinementConfidence,
		"GENERATION_CONFIDENCE_SUBJECT_LINE": cfg.Generation.SubjectLineConfidence,
		"GENERATION_CONFIDENCE_RAW_FALLBACK": cfg.Generation.RawFallbackConfidence,
	} {
		if v < 0 || v > 1 {
			errors = append(errors, fmt.Sprintf("%s must be between 0 and 1", name))
		}
	}
	if cfg.Generation.DefaultPerPage <= 0 || cfg.Generation.DefaultPerPage > cfg.Generation.MaxPerPage {
		errors = append(errors, "GENERATION_DEFAULT_PER_PAGE must be positive and not above GENERATION_MAX_PER_PAGE")
	}

	if len(errors) > 0 {
		slices.Sort(errors)
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Redis      RedisConfig      `mapstructure:"redis"`
	NATS       NATSConfig       `mapstructure:"nats"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Trust      TrustConfig      `mapstructure:"trust"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type RedisConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	ResultTTL time.Duration `mapstructure:"result_ttl"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"`
	StreamName string `mapstructure:"stream_name"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// ClassifierConfig configures the URL classifier adapter
type ClassifierConfig struct {
	ModelPath string `mapstructure:"model_path"`
}

// LLMConfig configures the contextual analyzer's external model
type LLMConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Provider    string        `mapstructure:"provider"` // claude, openai
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AnalysisConfig exposes the tunable scoring constants
type AnalysisConfig struct {
	// Context heuristic decision threshold: score above it means phishing.
	PhishingThreshold int `mapstructure:"phishing_threshold"`
	// Classification tier boundaries on the combined 0-100 score.
	SafeCutoff       float64 `mapstructure:"safe_cutoff"`
	LowRiskCutoff    float64 `mapstructure:"low_risk_cutoff"`
	SuspiciousCutoff float64 `mapstructure:"suspicious_cutoff"`
}

// TrustConfig holds the trusted-domain allow list
type TrustConfig struct {
	Domains []string `mapstructure:"domains"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/tanabbah")
	}

	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("TANABBAH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("redis.enabled", "TANABBAH_REDIS_ENABLED")
	v.BindEnv("redis.host", "TANABBAH_REDIS_HOST")
	v.BindEnv("redis.port", "TANABBAH_REDIS_PORT")
	v.BindEnv("redis.password", "TANABBAH_REDIS_PASSWORD")
	v.BindEnv("nats.enabled", "TANABBAH_NATS_ENABLED")
	v.BindEnv("nats.url", "TANABBAH_NATS_URL")
	v.BindEnv("llm.enabled", "TANABBAH_LLM_ENABLED")
	v.BindEnv("llm.api_key", "TANABBAH_LLM_API_KEY")
	v.BindEnv("llm.provider", "TANABBAH_LLM_PROVIDER")
	v.BindEnv("classifier.model_path", "TANABBAH_CLASSIFIER_MODEL_PATH")
	v.BindEnv("app.environment", "TANABBAH_APP_ENVIRONMENT")

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional, defaults plus env are enough to run.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "tanabbah")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "2.1.0")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.key_prefix", "tanabbah:")
	v.SetDefault("redis.result_ttl", 10*time.Minute)

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.stream_name", "TANABBAH_DETECTIONS")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Accept", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.requests_per_minute", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.provider", "claude")
	v.SetDefault("llm.timeout", 30*time.Second)

	v.SetDefault("analysis.phishing_threshold", 55)
	v.SetDefault("analysis.safe_cutoff", 30.0)
	v.SetDefault("analysis.low_risk_cutoff", 55.0)
	v.SetDefault("analysis.suspicious_cutoff", 75.0)

	v.SetDefault("trust.domains", []string{
		"absher.sa",
		"najiz.sa",
		"moi.gov.sa",
		"moj.gov.sa",
		"spa.gov.sa",
		"my.gov.sa",
		".gov.sa",
	})
}

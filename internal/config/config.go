package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/answer-engine/internal/fuse"
)

// Config holds the full application configuration.
type Config struct {
	Brave     ProviderConfig  `yaml:"brave" mapstructure:"brave"`
	Serper    ProviderConfig  `yaml:"serper" mapstructure:"serper"`
	Tavily    ProviderConfig  `yaml:"tavily" mapstructure:"tavily"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Answer    AnswerConfig    `yaml:"answer" mapstructure:"answer"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ProviderConfig holds one search provider's credentials and limits.
// A provider with an empty key is left out of the fan-out.
type ProviderConfig struct {
	Key            string  `yaml:"key" mapstructure:"key"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	Enabled        bool    `yaml:"enabled" mapstructure:"enabled"`
	RatePerSecond  float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	Burst          int     `yaml:"burst" mapstructure:"burst"`
	CallsPerMinute int     `yaml:"calls_per_minute" mapstructure:"calls_per_minute"`
	CallsPerMonth  int     `yaml:"calls_per_month" mapstructure:"calls_per_month"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// SearchConfig configures the provider fan-out.
type SearchConfig struct {
	ProviderTimeoutSecs int `yaml:"provider_timeout_secs" mapstructure:"provider_timeout_secs"`
	MaxResults          int `yaml:"max_results" mapstructure:"max_results"`
}

// ScoringConfig configures result ranking.
type ScoringConfig struct {
	Weights       fuse.Weights `yaml:"weights" mapstructure:"weights"`
	TopN          int          `yaml:"top_n" mapstructure:"top_n"`
	AuthorityFile string       `yaml:"authority_file" mapstructure:"authority_file"`
}

// AnswerConfig configures synthesis and validation.
type AnswerConfig struct {
	MinLength   int    `yaml:"min_length" mapstructure:"min_length"`
	MinSections int    `yaml:"min_sections" mapstructure:"min_sections"`
	Complexity  string `yaml:"complexity" mapstructure:"complexity"`
}

// MetricsConfig configures the in-memory metrics buffer.
type MetricsConfig struct {
	RingSize int `yaml:"ring_size" mapstructure:"ring_size"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ProviderTimeout returns the per-provider search deadline.
func (c SearchConfig) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSecs) * time.Second
}

// Timeout returns the LLM call deadline.
func (c AnthropicConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Validate checks that the configuration can support the given run
// mode ("serve" or "ask"). Problems are collected and reported together.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "ask":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Anthropic.Key == "" {
		problems = append(problems, "anthropic.key is required")
	}
	if !c.Brave.usable() && !c.Serper.usable() && !c.Tavily.usable() {
		problems = append(problems, "at least one search provider needs a key and enabled: true")
	}
	w := c.Scoring.Weights
	if w.Relevance < 0 || w.Authority < 0 || w.Freshness < 0 || w.Trust < 0 {
		problems = append(problems, "scoring.weights values must be >= 0")
	}
	switch c.Answer.Complexity {
	case "simple", "balanced", "detailed":
	default:
		problems = append(problems, "answer.complexity must be simple, balanced, or detailed")
	}
	if c.Search.ProviderTimeoutSecs <= 0 {
		problems = append(problems, "search.provider_timeout_secs must be > 0")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (p ProviderConfig) usable() bool {
	return p.Enabled && p.Key != ""
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ANSWER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("brave.base_url", "https://api.search.brave.com/res/v1")
	v.SetDefault("brave.enabled", true)
	v.SetDefault("brave.rate_per_second", 1)
	v.SetDefault("brave.burst", 1)
	v.SetDefault("brave.calls_per_minute", 60)
	v.SetDefault("brave.calls_per_month", 2000)
	v.SetDefault("serper.base_url", "https://google.serper.dev")
	v.SetDefault("serper.enabled", true)
	v.SetDefault("serper.rate_per_second", 5)
	v.SetDefault("serper.burst", 5)
	v.SetDefault("serper.calls_per_minute", 300)
	v.SetDefault("serper.calls_per_month", 2500)
	v.SetDefault("tavily.base_url", "https://api.tavily.com")
	v.SetDefault("tavily.enabled", true)
	v.SetDefault("tavily.rate_per_second", 2)
	v.SetDefault("tavily.burst", 2)
	v.SetDefault("tavily.calls_per_minute", 100)
	v.SetDefault("tavily.calls_per_month", 1000)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("anthropic.temperature", 0.7)
	v.SetDefault("anthropic.timeout_secs", 45)
	v.SetDefault("search.provider_timeout_secs", 15)
	v.SetDefault("search.max_results", 10)
	v.SetDefault("scoring.weights.relevance", 0.4)
	v.SetDefault("scoring.weights.authority", 0.3)
	v.SetDefault("scoring.weights.freshness", 0.2)
	v.SetDefault("scoring.weights.trust", 0.1)
	v.SetDefault("scoring.top_n", 15)
	v.SetDefault("answer.min_length", 200)
	v.SetDefault("answer.min_sections", 2)
	v.SetDefault("answer.complexity", "balanced")
	v.SetDefault("metrics.ring_size", 512)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

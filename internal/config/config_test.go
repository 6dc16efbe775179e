package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "https://api.search.brave.com/res/v1", cfg.Brave.BaseURL)
	assert.True(t, cfg.Brave.Enabled)
	assert.Equal(t, 2000, cfg.Brave.CallsPerMonth)
	assert.Equal(t, "https://google.serper.dev", cfg.Serper.BaseURL)
	assert.Equal(t, 2500, cfg.Serper.CallsPerMonth)
	assert.Equal(t, "https://api.tavily.com", cfg.Tavily.BaseURL)
	assert.Equal(t, 1000, cfg.Tavily.CallsPerMonth)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, 2048, cfg.Anthropic.MaxTokens)
	assert.Equal(t, 15, cfg.Search.ProviderTimeoutSecs)
	assert.Equal(t, 10, cfg.Search.MaxResults)
	assert.InDelta(t, 0.4, cfg.Scoring.Weights.Relevance, 0.001)
	assert.InDelta(t, 0.3, cfg.Scoring.Weights.Authority, 0.001)
	assert.InDelta(t, 0.2, cfg.Scoring.Weights.Freshness, 0.001)
	assert.InDelta(t, 0.1, cfg.Scoring.Weights.Trust, 0.001)
	assert.Equal(t, 15, cfg.Scoring.TopN)
	assert.Equal(t, 200, cfg.Answer.MinLength)
	assert.Equal(t, 2, cfg.Answer.MinSections)
	assert.Equal(t, "balanced", cfg.Answer.Complexity)
	assert.Equal(t, 512, cfg.Metrics.RingSize)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
  format: console
server:
  port: 9090
brave:
  key: brv-key
  calls_per_month: 500
scoring:
  top_n: 20
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "brv-key", cfg.Brave.Key)
	assert.Equal(t, 500, cfg.Brave.CallsPerMonth)
	assert.Equal(t, 20, cfg.Scoring.TopN)
	// Defaults still apply for unset values
	assert.Equal(t, 10, cfg.Search.MaxResults)
	assert.True(t, cfg.Brave.Enabled)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
anthropic:
  model: claude-haiku-4-5-20251001
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("ANSWER_LOG_LEVEL", "warn")
	t.Setenv("ANSWER_ANTHROPIC_MODEL", "claude-opus-4-6")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "claude-opus-4-6", cfg.Anthropic.Model)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("ANSWER_SERVER_PORT", "3000")
	t.Setenv("ANSWER_TAVILY_KEY", "tvly-abc")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "tvly-abc", cfg.Tavily.Key)
}

func TestTimeoutHelpers(t *testing.T) {
	sc := SearchConfig{ProviderTimeoutSecs: 15}
	assert.Equal(t, 15*time.Second, sc.ProviderTimeout())

	ac := AnthropicConfig{TimeoutSecs: 45}
	assert.Equal(t, 45*time.Second, ac.Timeout())
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config that passes validation for both modes.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Anthropic.Key = "sk-ant-key"
	cfg.Brave.Key = "brv-key"
	cfg.Brave.Enabled = true
	cfg.Search.ProviderTimeoutSecs = 15
	cfg.Answer.Complexity = "balanced"
	return cfg
}

func TestValidateServe_AllPresent(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateAsk_PortIgnored(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	assert.NoError(t, cfg.Validate("ask"))
}

func TestValidate_MissingAnthropicKey(t *testing.T) {
	cfg := validDefaults()
	cfg.Anthropic.Key = ""

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")
}

func TestValidate_NoUsableProvider(t *testing.T) {
	cfg := validDefaults()
	cfg.Brave.Key = ""
	cfg.Serper = ProviderConfig{Enabled: true} // enabled but no key
	cfg.Tavily = ProviderConfig{Key: "tvly-abc"} // key but disabled

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least one search provider")
}

func TestValidate_NegativeWeights(t *testing.T) {
	cfg := validDefaults()
	cfg.Scoring.Weights.Authority = -0.1

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "scoring.weights values must be >= 0")
}

func TestValidate_BadComplexity(t *testing.T) {
	cfg := validDefaults()
	cfg.Answer.Complexity = "verbose"

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "answer.complexity")
}

func TestValidate_CollectsMultipleProblems(t *testing.T) {
	cfg := validDefaults()
	cfg.Anthropic.Key = ""
	cfg.Search.ProviderTimeoutSecs = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")
	assert.Contains(t, err.Error(), "search.provider_timeout_secs must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

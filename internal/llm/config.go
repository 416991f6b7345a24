package llm

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "gemini", "anthropic", "openai", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout is the maximum duration for a single LLM request
	// (including retries). Default: 30s.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for OpenRouter or compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// envSpec mirrors the FAREFIT_* environment variables. Empty values keep
// the defaults from DefaultConfig.
type envSpec struct {
	Provider string        `envconfig:"LLM_PROVIDER"`
	Timeout  time.Duration `envconfig:"LLM_TIMEOUT"`
	Retries  int           `envconfig:"LLM_MAX_ATTEMPTS"`

	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `envconfig:"ANTHROPIC_MODEL"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel   string `envconfig:"OPENAI_MODEL"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL"`

	OpenRouterAPIKey string `envconfig:"OPENROUTER_API_KEY"`
	OpenRouterModel  string `envconfig:"OPENROUTER_MODEL"`
}

// discoverSpec holds the vendor-standard API key variables.
type discoverSpec struct {
	Gemini     string `envconfig:"GEMINI_API_KEY"`
	OpenAI     string `envconfig:"OPENAI_API_KEY"`
	Anthropic  string `envconfig:"ANTHROPIC_API_KEY"`
	OpenRouter string `envconfig:"OPENROUTER_API_KEY"`
}

// ConfigFromEnv builds a Config from FAREFIT_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	var env envSpec
	if err := envconfig.Process("farefit", &env); err != nil {
		return cfg, fmt.Errorf("read LLM environment: %w", err)
	}

	setString(&cfg.Provider, env.Provider)
	setString(&cfg.Anthropic.APIKey, env.AnthropicAPIKey)
	setString(&cfg.Anthropic.Model, env.AnthropicModel)
	setString(&cfg.OpenAI.APIKey, env.OpenAIAPIKey)
	setString(&cfg.OpenAI.Model, env.OpenAIModel)
	setString(&cfg.OpenAI.BaseURL, env.OpenAIBaseURL)
	setString(&cfg.Gemini.APIKey, env.GeminiAPIKey)
	setString(&cfg.Gemini.Model, env.GeminiModel)
	setString(&cfg.OpenRouter.APIKey, env.OpenRouterAPIKey)
	setString(&cfg.OpenRouter.Model, env.OpenRouterModel)
	if env.Timeout > 0 {
		cfg.Timeout = env.Timeout
	}
	if env.Retries > 0 {
		cfg.Retry.MaxAttempts = env.Retries
	}

	return cfg, nil
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemini → OpenAI → Anthropic → OpenRouter) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	var keys discoverSpec
	if err := envconfig.Process("", &keys); err != nil {
		return Config{}, false
	}

	switch {
	case keys.Gemini != "":
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = keys.Gemini
	case keys.OpenAI != "":
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = keys.OpenAI
	case keys.Anthropic != "":
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = keys.Anthropic
	case keys.OpenRouter != "":
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = keys.OpenRouter
	default:
		return Config{}, false
	}
	return cfg, true
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("FAREFIT_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("FAREFIT_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("FAREFIT_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("FAREFIT_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

// Model returns the model ID the selected provider will call, with
// friendly names resolved.
func (c Config) Model() string {
	switch c.Provider {
	case "anthropic":
		return resolveModel(c.Anthropic.Model, anthropicModels)
	case "openai":
		return resolveModel(c.OpenAI.Model, openaiModels)
	case "gemini":
		return resolveModel(c.Gemini.Model, geminiModels)
	case "openrouter":
		return c.OpenRouter.Model
	}
	return ""
}

// Resolve returns the FAREFIT_* configuration when it validates, otherwise
// the first discovered vendor key. ok is false when no provider is usable.
func Resolve() (cfg Config, ok bool, err error) {
	cfg, err = ConfigFromEnv()
	if err != nil {
		return Config{}, false, err
	}
	if cfg.Validate() == nil {
		return cfg, true, nil
	}
	if discovered, found := DiscoverConfig(); found {
		return discovered, true, nil
	}
	return Config{}, false, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

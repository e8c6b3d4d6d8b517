// Package profile holds the runtime configuration of the bot process.
package profile

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Profile is configuration to start the bot.
type Profile struct {
	// Unified LLM configuration (OpenAI-compatible protocol)
	LLMProvider string // Provider identifier: openai, deepseek, openrouter, ollama
	LLMAPIKey   string // LLM API key
	LLMBaseURL  string // LLM base URL (optional, has default per provider)
	LLMModel    string // Model name: gpt-4o, deepseek-chat, etc.
	LLMTimeout  int    // LLM request timeout in seconds (default: 120)

	// Telegram configuration
	TelegramToken string // Bot API token issued by BotFather

	// Conversation expiry configuration
	SweepInterval time.Duration // How often the sweeper scans for idle conversations
	IdleThreshold time.Duration // Idle time after which a conversation is evicted

	// Ops server
	Addr string
	Port int

	Mode    string // "prod" or "dev"
	Version string
}

// Provider default configurations for the LLM.
// Used when the base URL or model is not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"openrouter": {
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "deepseek/deepseek-chat",
	},
	"ollama": {
		BaseURL: "http://localhost:11434",
		Model:   "llama3.1",
	},
}

const (
	// DefaultSweepInterval bounds worst-case staleness of evicted conversations.
	DefaultSweepInterval = 24 * time.Second

	// DefaultIdleThreshold is the idle time after which per-guild state is dropped.
	DefaultIdleThreshold = 86340 * time.Second
)

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.LLMProvider = getEnvOrDefault("TRIVIABOT_LLM_PROVIDER", "openai")
	p.LLMAPIKey = getEnvOrDefault("TRIVIABOT_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("TRIVIABOT_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("TRIVIABOT_LLM_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("TRIVIABOT_LLM_TIMEOUT_SECONDS", 120)

	p.TelegramToken = getEnvOrDefault("TRIVIABOT_TELEGRAM_TOKEN", "")

	p.SweepInterval = time.Duration(getEnvOrDefaultInt("TRIVIABOT_SWEEP_INTERVAL_SECONDS", int(DefaultSweepInterval/time.Second))) * time.Second
	p.IdleThreshold = time.Duration(getEnvOrDefaultInt("TRIVIABOT_IDLE_THRESHOLD_SECONDS", int(DefaultIdleThreshold/time.Second))) * time.Second

	if p.LLMProvider != "" {
		if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
			slog.Warn("unknown LLM provider, using default: openai", "provider", p.LLMProvider)
			p.LLMProvider = "openai"
		}
	}
	if p.LLMBaseURL == "" || p.LLMModel == "" {
		if defaults, ok := llmProviderDefaults[p.LLMProvider]; ok {
			if p.LLMBaseURL == "" {
				p.LLMBaseURL = defaults.BaseURL
			}
			if p.LLMModel == "" {
				p.LLMModel = defaults.Model
			}
		}
	}
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.TelegramToken == "" {
		return errors.New("telegram token is required (set TRIVIABOT_TELEGRAM_TOKEN)")
	}
	if p.LLMAPIKey == "" {
		return errors.New("LLM API key is required (set TRIVIABOT_LLM_API_KEY)")
	}

	if p.SweepInterval <= 0 {
		p.SweepInterval = DefaultSweepInterval
	}
	if p.IdleThreshold <= 0 {
		p.IdleThreshold = DefaultIdleThreshold
	}
	if p.SweepInterval >= p.IdleThreshold {
		return errors.Errorf("sweep interval %s must be smaller than idle threshold %s", p.SweepInterval, p.IdleThreshold)
	}

	if p.Port <= 0 || p.Port > 65535 {
		return errors.Errorf("invalid ops server port %d", p.Port)
	}

	return nil
}

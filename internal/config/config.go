// Package config provides the configuration schema and loader for the Pravka
// bot. Settings come from a YAML file; secrets (the bot token and provider
// API keys) come from the environment and are overlaid after parsing.
package config

// LogLevel controls log verbosity for the bot.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for Pravka.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Telegram TelegramConfig `yaml:"telegram"`
	LLM      LLMConfig      `yaml:"llm"`
	STT      STTConfig      `yaml:"stt"`
	Editor   EditorConfig   `yaml:"editor"`
}

// ServerConfig holds network and logging settings for the health and metrics
// endpoint.
type ServerConfig struct {
	// ListenAddr is the TCP address the HTTP server listens on (e.g., ":8080").
	// The PORT environment variable, when set, overrides it.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// TelegramConfig holds the bot's connection settings.
type TelegramConfig struct {
	// Token is the Bot API token. Normally left empty in the file and
	// supplied via the BOT_TOKEN environment variable.
	Token string `yaml:"token"`
}

// LLMConfig declares the ordered list of language model candidates. The first
// candidate is the primary; the rest are fallbacks tried in file order.
type LLMConfig struct {
	Candidates []LLMCandidate `yaml:"candidates"`
}

// LLMCandidate selects one language model backend.
type LLMCandidate struct {
	// Provider is the backend name (e.g., "gemini", "openai", "ollama").
	Provider string `yaml:"provider"`

	// Model is the provider-specific model identifier (e.g., "gemini-2.0-flash").
	Model string `yaml:"model"`

	// APIKey authenticates against the provider. Usually left empty here so
	// the provider reads its own environment variable (GEMINI_API_KEY,
	// OPENAI_API_KEY, and so on).
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`
}

// STTConfig selects and configures the speech recognition backends.
type STTConfig struct {
	// Backends lists the recognisers in fallback order. Valid names:
	// "google", "whisper". When empty, "google" is used on its own.
	Backends []string `yaml:"backends"`

	// Locale is the BCP-47 recognition language tag (e.g., "ru-RU", "en-US").
	Locale string `yaml:"locale"`

	// GoogleAPIKey overrides the built-in public Web Speech key.
	// The GOOGLE_SPEECH_API_KEY environment variable takes precedence.
	GoogleAPIKey string `yaml:"google_api_key"`

	// WhisperAPIKey authenticates the Whisper backend. Usually supplied via
	// the OPENAI_API_KEY environment variable.
	WhisperAPIKey string `yaml:"whisper_api_key"`
}

// EditorConfig tunes the correction and explanation engines.
type EditorConfig struct {
	// TriggerWords are the case-insensitive prefixes that turn a text message
	// into a follow-up question about the previous correction. When empty,
	// the built-in English defaults apply.
	TriggerWords []string `yaml:"trigger_words"`

	// Temperature is passed to the language model. Zero means the engine
	// default.
	Temperature float64 `yaml:"temperature"`
}

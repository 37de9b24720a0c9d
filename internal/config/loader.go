package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

const defaultListenAddr = ":8080"

// ValidLLMProviders lists the language model backend names the loader
// recognises. Used by [Validate] to warn about likely typos.
var ValidLLMProviders = []string{
	"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile",
}

// ValidSTTBackends lists the recognised speech backend names.
var ValidSTTBackends = []string{"google", "whisper"}

// Load reads the YAML configuration file at path, overlays environment
// variables, and returns a validated [Config]. A missing file is not an
// error: the bot can run entirely from environment variables, so Load falls
// back to defaults in that case.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("config file not found, using defaults and environment", "path", path)
			cfg := &Config{}
			applyDefaults(cfg)
			ApplyEnv(cfg)
			dropUnkeyedBackends(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, overlays environment
// variables, and validates the result. Useful in tests where configs are
// constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	ApplyEnv(cfg)
	dropUnkeyedBackends(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays secrets and platform settings from the environment.
// Environment variables always win over file values.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.ListenAddr = ":" + v
	}
	if v := os.Getenv("GOOGLE_SPEECH_API_KEY"); v != "" {
		cfg.STT.GoogleAPIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.STT.WhisperAPIKey == "" {
		cfg.STT.WhisperAPIKey = v
	}
}

// dropUnkeyedBackends removes STT backends whose required key is absent. A
// missing key degrades the selection instead of failing startup; the free
// google backend needs no key and is the fallback when nothing survives.
func dropUnkeyedBackends(cfg *Config) {
	kept := cfg.STT.Backends[:0]
	for _, b := range cfg.STT.Backends {
		if b == "whisper" && cfg.STT.WhisperAPIKey == "" {
			slog.Warn("stt backend has no API key, skipping", "backend", b)
			continue
		}
		kept = append(kept, b)
	}
	if len(kept) == 0 {
		slog.Warn("no usable stt backend configured, falling back to google")
		kept = append(kept, "google")
	}
	cfg.STT.Backends = kept
}

func applyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = defaultListenAddr
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if len(cfg.STT.Backends) == 0 {
		cfg.STT.Backends = []string{"google"}
	}
	if cfg.STT.Locale == "" {
		cfg.STT.Locale = "en-US"
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Telegram.Token == "" {
		errs = append(errs, fmt.Errorf("telegram.token is required; set it in the file or via BOT_TOKEN"))
	}

	for i, c := range cfg.LLM.Candidates {
		prefix := fmt.Sprintf("llm.candidates[%d]", i)
		if c.Provider == "" {
			errs = append(errs, fmt.Errorf("%s.provider is required", prefix))
		} else if !slices.Contains(ValidLLMProviders, c.Provider) {
			slog.Warn("unknown LLM provider name, may be a typo",
				"provider", c.Provider,
				"known", ValidLLMProviders,
			)
		}
		if c.Model == "" {
			errs = append(errs, fmt.Errorf("%s.model is required", prefix))
		}
	}
	if len(cfg.LLM.Candidates) == 0 {
		slog.Warn("no LLM candidates configured; corrections will be answered with a fixed error reply")
	}

	for i, b := range cfg.STT.Backends {
		if !slices.Contains(ValidSTTBackends, b) {
			errs = append(errs, fmt.Errorf("stt.backends[%d] %q is invalid; valid values: google, whisper", i, b))
		}
	}

	if cfg.Editor.Temperature < 0 || cfg.Editor.Temperature > 2 {
		errs = append(errs, fmt.Errorf("editor.temperature %.2f is out of range [0, 2]", cfg.Editor.Temperature))
	}

	return errors.Join(errs...)
}

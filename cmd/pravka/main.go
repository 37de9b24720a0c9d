// Command pravka is the main entry point for the Pravka editing bot.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/pravkabot/pravka/internal/config"
	"github.com/pravkabot/pravka/internal/editor"
	"github.com/pravkabot/pravka/internal/health"
	"github.com/pravkabot/pravka/internal/observe"
	"github.com/pravkabot/pravka/internal/pipeline"
	"github.com/pravkabot/pravka/internal/resilience"
	"github.com/pravkabot/pravka/internal/session"
	"github.com/pravkabot/pravka/internal/telegram"
	"github.com/pravkabot/pravka/pkg/provider/llm"
	"github.com/pravkabot/pravka/pkg/provider/llm/anyllm"
	"github.com/pravkabot/pravka/pkg/provider/stt"
	"github.com/pravkabot/pravka/pkg/provider/stt/google"
	"github.com/pravkabot/pravka/pkg/provider/stt/whisper"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Environment ───────────────────────────────────────────────────────────
	// A missing .env file is fine; production deployments set real env vars.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "pravka: load .env: %v\n", err)
		return 1
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pravka: %v\n", err)
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("pravka starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
		"locale", cfg.STT.Locale,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Metrics ───────────────────────────────────────────────────────────────
	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise metrics", "err", err)
		return 1
	}
	metrics := observe.DefaultMetrics()

	// ── Providers ─────────────────────────────────────────────────────────────
	llmProvider := buildLLM(cfg)
	if llmProvider == nil {
		slog.Warn("running without a language model; corrections will report the missing configuration")
	}

	sttProvider, err := buildSTT(cfg)
	if err != nil {
		slog.Error("failed to build STT providers", "err", err)
		return 1
	}

	// ── Engines ───────────────────────────────────────────────────────────────
	var editorOpts []editor.Option
	if cfg.Editor.Temperature > 0 {
		editorOpts = append(editorOpts, editor.WithTemperature(cfg.Editor.Temperature))
	}
	corrector := editor.NewCorrector(llmProvider, editorOpts...)
	explainer := editor.NewExplainer(llmProvider, editorOpts...)

	transcriber := pipeline.NewTranscriber(sttProvider,
		pipeline.WithLanguage(cfg.STT.Locale),
		pipeline.WithMetrics(metrics),
	)

	// ── Telegram bot ──────────────────────────────────────────────────────────
	bot, err := telegram.NewBot(cfg.Telegram.Token)
	if err != nil {
		slog.Error("failed to create Telegram bot", "err", err)
		return 1
	}

	routerOpts := []telegram.RouterOption{telegram.WithRouterMetrics(metrics)}
	if len(cfg.Editor.TriggerWords) > 0 {
		routerOpts = append(routerOpts, telegram.WithTriggerWords(cfg.Editor.TriggerWords))
	}
	router := telegram.NewRouter(bot, session.NewStore(), corrector, explainer, transcriber, routerOpts...)
	bot.SetRouter(router)

	// ── Health and metrics server ─────────────────────────────────────────────
	checker := health.New(
		health.Checker{Name: "llm", Check: func(context.Context) error {
			if llmProvider == nil {
				return errors.New("no language model configured")
			}
			return nil
		}},
	)
	mux := http.NewServeMux()
	checker.Register(mux)

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           observe.Middleware(metrics)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("http server listening", "addr", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "err", err)
		}
	}()

	// ── Run ───────────────────────────────────────────────────────────────────
	slog.Info("bot ready — press Ctrl+C to shut down")
	bot.Start(ctx)

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("shutdown signal received, stopping…")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http server shutdown error", "err", err)
	}
	if err := shutdownMetrics(shutdownCtx); err != nil {
		slog.Warn("metrics shutdown error", "err", err)
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// buildLLM assembles the ordered language model chain from the configured
// candidates. A candidate whose construction fails (missing API key, unknown
// backend) is skipped with a warning rather than aborting startup. Returns
// nil when no candidate survives; the engines then answer with their fixed
// not-configured reply.
func buildLLM(cfg *config.Config) llm.Provider {
	var chain *resilience.LLMFallback
	for _, c := range cfg.LLM.Candidates {
		var opts []anyllmlib.Option
		if c.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(c.APIKey))
		}
		if c.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(c.BaseURL))
		}

		p, err := anyllm.New(c.Provider, c.Model, opts...)
		if err != nil {
			slog.Warn("llm candidate unavailable, skipping",
				"provider", c.Provider, "model", c.Model, "err", err)
			continue
		}

		name := c.Provider + "/" + c.Model
		if chain == nil {
			chain = resilience.NewLLMFallback(p, name)
		} else {
			chain.AddFallback(name, p)
		}
		slog.Info("llm candidate registered", "provider", c.Provider, "model", c.Model)
	}
	if chain == nil {
		return nil
	}
	return chain
}

// buildSTT assembles the speech recognition chain in configured order.
func buildSTT(cfg *config.Config) (stt.Provider, error) {
	var chain *resilience.STTFallback
	for i, name := range cfg.STT.Backends {
		var (
			p   stt.Provider
			err error
		)
		switch name {
		case "google":
			var opts []google.Option
			if cfg.STT.GoogleAPIKey != "" {
				opts = append(opts, google.WithAPIKey(cfg.STT.GoogleAPIKey))
			}
			opts = append(opts, google.WithLanguage(cfg.STT.Locale))
			p, err = google.New(opts...)
		case "whisper":
			p, err = whisper.New(cfg.STT.WhisperAPIKey)
		default:
			err = fmt.Errorf("unknown backend %q", name)
		}
		if err != nil {
			return nil, fmt.Errorf("create stt backend %q: %w", name, err)
		}

		if i == 0 {
			chain = resilience.NewSTTFallback(p, name)
		} else {
			chain.AddFallback(name, p)
		}
		slog.Info("stt backend registered", "name", name)
	}
	return chain, nil
}

// newLogger builds the default text logger at the configured level.
func newLogger(level config.LogLevel) *slog.Logger {
	var l slog.Level
	switch level {
	case config.LogDebug:
		l = slog.LevelDebug
	case config.LogWarn:
		l = slog.LevelWarn
	case config.LogError:
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

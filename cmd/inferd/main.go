package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"inferd/internal/config"
	"inferd/internal/httpapi"
	"inferd/internal/manager"
	"inferd/internal/registry"
	"inferd/internal/session"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var (
		configPath  string
		corsEnabled bool
		corsOrigins string
		corsMethods string
		corsHeaders string
	)
	cfg := config.Config{
		Addr:      ":8080",
		ModelsDir: "~/models/llm",
		LogLevel:  "info",
	}

	root := &cobra.Command{
		Use:          "inferd",
		Short:        "Local LLM inference daemon",
		Long:         "inferd serves local LLM inference over HTTP with NDJSON streaming, per-model sessions, and idle eviction.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				fileCfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = mergeConfig(fileCfg, cfg, cmd)
			}
			return run(cfg, corsEnabled, splitCSV(corsOrigins), splitCSV(corsMethods), splitCSV(corsHeaders))
		},
	}

	f := root.Flags()
	f.StringVar(&configPath, "config", "", "Path to a yaml/json/toml config file")
	f.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address, e.g. :8080")
	f.StringVar(&cfg.ModelsDir, "models-dir", cfg.ModelsDir, "Directory to scan for *.gguf model files")
	f.StringVar(&cfg.DefaultModel, "default-model", cfg.DefaultModel, "Default model id when request omits model")
	f.IntVar(&cfg.MaxQueueDepth, "max-queue-depth", cfg.MaxQueueDepth, "Per-session admission queue depth (0=default)")
	f.IntVar(&cfg.MaxWaitSec, "max-wait-sec", cfg.MaxWaitSec, "Max seconds a request waits in the queue (0=default)")
	f.IntVar(&cfg.IdleTTLSec, "idle-ttl-sec", cfg.IdleTTLSec, "Seconds an unused session stays loaded (0=default)")
	f.IntVar(&cfg.DrainTimeoutSec, "drain-timeout-sec", cfg.DrainTimeoutSec, "Seconds unload waits for in-flight work (0=default)")
	f.IntVar(&cfg.GenTimeoutSec, "gen-timeout-sec", cfg.GenTimeoutSec, "Max seconds a generate request may run (0=disabled)")
	f.Int64Var(&cfg.MaxBodyBytes, "max-body-bytes", cfg.MaxBodyBytes, "Max JSON request body size in bytes (0=default 1MiB)")
	f.IntVar(&cfg.LlamaCtx, "llama-ctx", cfg.LlamaCtx, "Context window for the llama backend (0=backend default)")
	f.IntVar(&cfg.LlamaThreads, "llama-threads", cfg.LlamaThreads, "Threads for the llama backend (0=backend default)")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	f.BoolVar(&corsEnabled, "cors-enabled", false, "Enable CORS middleware")
	f.StringVar(&corsOrigins, "cors-origins", "", "Comma-separated allowed origins")
	f.StringVar(&corsMethods, "cors-methods", "GET,POST,OPTIONS", "Comma-separated allowed methods")
	f.StringVar(&corsHeaders, "cors-headers", "Content-Type", "Comma-separated allowed headers")

	return root
}

// mergeConfig overlays flag values the user actually set on top of the file
// config. Flags left at their defaults defer to the file.
func mergeConfig(file, flags config.Config, cmd *cobra.Command) config.Config {
	out := file
	set := func(name string) bool { return cmd.Flags().Changed(name) }
	if set("addr") || out.Addr == "" {
		out.Addr = flags.Addr
	}
	if set("models-dir") || out.ModelsDir == "" {
		out.ModelsDir = flags.ModelsDir
	}
	if set("default-model") || out.DefaultModel == "" {
		out.DefaultModel = flags.DefaultModel
	}
	if set("max-queue-depth") {
		out.MaxQueueDepth = flags.MaxQueueDepth
	}
	if set("max-wait-sec") {
		out.MaxWaitSec = flags.MaxWaitSec
	}
	if set("idle-ttl-sec") {
		out.IdleTTLSec = flags.IdleTTLSec
	}
	if set("drain-timeout-sec") {
		out.DrainTimeoutSec = flags.DrainTimeoutSec
	}
	if set("gen-timeout-sec") {
		out.GenTimeoutSec = flags.GenTimeoutSec
	}
	if set("max-body-bytes") {
		out.MaxBodyBytes = flags.MaxBodyBytes
	}
	if set("llama-ctx") {
		out.LlamaCtx = flags.LlamaCtx
	}
	if set("llama-threads") {
		out.LlamaThreads = flags.LlamaThreads
	}
	if set("log-level") || out.LogLevel == "" {
		out.LogLevel = flags.LogLevel
	}
	return out
}

func run(cfg config.Config, corsEnabled bool, corsOrigins, corsMethods, corsHeaders []string) error {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(lvl)

	log.Info().Bool("llama_built", session.LlamaBuilt()).Msg("runtime support")

	reg, err := registry.LoadDir(cfg.ModelsDir)
	if err != nil {
		log.Error().Err(err).Str("dir", cfg.ModelsDir).Msg("failed to load models")
		return err
	}
	log.Info().Int("models", len(reg)).Str("dir", cfg.ModelsDir).Msg("registry loaded")

	mgr := manager.NewWithConfig(manager.Config{
		Registry:      reg,
		DefaultModel:  cfg.DefaultModel,
		MaxQueueDepth: cfg.MaxQueueDepth,
		MaxWait:       time.Duration(cfg.MaxWaitSec) * time.Second,
		IdleTTL:       time.Duration(cfg.IdleTTLSec) * time.Second,
		DrainTimeout:  time.Duration(cfg.DrainTimeoutSec) * time.Second,
		Logger:        log,
		LlamaCtx:      cfg.LlamaCtx,
		LlamaThreads:  cfg.LlamaThreads,
	})
	defer mgr.Close()

	httpapi.SetLogger(log)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetGenerateTimeoutSeconds(int64(cfg.GenTimeoutSec))
	httpapi.SetCORSOptions(corsEnabled, corsOrigins, corsMethods, corsHeaders)

	// Base context lets shutdown cancel in-flight generations.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("inferd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

// splitCSV splits a comma-separated flag value, trimming whitespace and
// dropping empty elements.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

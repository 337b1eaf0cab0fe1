package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/craftwatch/craftwatch/internal/bot"
	"github.com/craftwatch/craftwatch/internal/config"
	"github.com/craftwatch/craftwatch/internal/mcping"
	"github.com/craftwatch/craftwatch/internal/metrics"
	"github.com/craftwatch/craftwatch/internal/registry"
	"github.com/craftwatch/craftwatch/internal/render"
	"github.com/craftwatch/craftwatch/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file")
	mode := flag.String("mode", "", "Transport mode override (stdio or http)")
	showVersion := flag.Bool("version", false, "Show version information")
	showHelp := flag.Bool("help", false, "Show help message")
	flag.Parse()

	if *showHelp {
		printHelp()
		return
	}
	if *showVersion {
		fmt.Printf("craftwatch %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Server.Mode = *mode
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
			os.Exit(1)
		}
	}

	logger, err := buildLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting craftwatch",
		zap.String("version", Version),
		zap.String("commit", GitCommit),
		zap.String("mode", cfg.Server.Mode))

	store := registry.NewStore(cfg.Data.Dir)
	client := &mcping.Client{Timeout: cfg.Ping.Timeout.Std()}

	var cache *mcping.StatusCache
	if cfg.Ping.CacheTTL.Std() > 0 {
		cache = mcping.NewStatusCache(cfg.Ping.CacheSize, cfg.Ping.CacheTTL.Std())
	}

	faces, err := render.LoadFaces(cfg.Render.FontPaths, cfg.Render.BoldFontPaths)
	if err != nil {
		logger.Fatal("failed to load fonts", zap.Error(err))
	}

	b := bot.New(bot.Deps{
		Store:    store,
		Pinger:   client,
		Cache:    cache,
		Renderer: render.NewRenderer(faces, cfg.Render.MaxPlayers),
		Metrics:  metrics.NewCollector(),
		Log:      logger,
		Prefix:   cfg.Bot.CommandPrefix,
	})

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Cleanup.Enabled {
		policy := registry.CleanupPolicy{
			MaxFailures: cfg.Cleanup.MaxFailures,
			StaleAfter:  cfg.Cleanup.StaleAfter.Std(),
		}
		go runJanitor(runCtx, logger, store, policy, cfg.Cleanup.Interval.Std())
	}

	switch cfg.Server.Mode {
	case "http":
		runHTTP(runCtx, cancel, cfg, b, logger)
	default:
		runStdio(runCtx, cancel, b, logger)
	}
}

// runStdio serves the pipe transport until EOF or a signal.
func runStdio(ctx context.Context, cancel context.CancelFunc, b *bot.Bot, logger *zap.Logger) {
	s := server.NewStdio(b, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal("stdio transport failed", zap.Error(err))
		}
	}
}

// runHTTP serves the webhook transport until a signal, then drains
// in-flight requests.
func runHTTP(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, b *bot.Bot, logger *zap.Logger) {
	h := server.NewHTTP(b, logger, cfg.Server.WebhookToken, Version)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("webhook listening", zap.String("addr", cfg.Server.Addr))
		errCh <- h.Start(cfg.Server.Addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Fatal("http transport failed", zap.Error(err))
		}
		return
	}
	cancel()

	shutdownCtx, release := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer release()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

// runJanitor periodically prunes servers that stopped answering.
func runJanitor(ctx context.Context, logger *zap.Logger, store *registry.Store, policy registry.CleanupPolicy, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.CleanupAll(policy)
			if err != nil {
				logger.Warn("registry cleanup failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Info("registry cleanup removed servers", zap.Int("removed", removed))
			}
		}
	}
}

// buildLogger writes structured logs to stderr; stdout belongs to the
// stdio transport.
func buildLogger() (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	if os.Getenv("CRAFTWATCH_LOG_LEVEL") == "debug" {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zcfg.Build()
}

func printHelp() {
	fmt.Println("craftwatch - Minecraft server status bot")
	fmt.Println()
	fmt.Println("Usage: craftwatch [flags]")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -config   Path to YAML configuration file")
	fmt.Println("  -mode     Transport mode override (stdio or http)")
	fmt.Println("  -version  Show version information")
	fmt.Println("  -help     Show this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  CRAFTWATCH_MODE             Transport mode (stdio or http)")
	fmt.Println("  CRAFTWATCH_ADDR             HTTP listen address")
	fmt.Println("  CRAFTWATCH_WEBHOOK_TOKEN    Bearer token for the webhook endpoint")
	fmt.Println("  CRAFTWATCH_DATA_DIR         Registry data directory")
	fmt.Println("  CRAFTWATCH_PING_TIMEOUT     Server ping timeout (e.g. 5s)")
	fmt.Println("  CRAFTWATCH_COMMAND_PREFIX   Command prefix (default \"/\")")
	fmt.Println("  CRAFTWATCH_LOG_LEVEL=debug  Enable debug logging")
	fmt.Println()
	fmt.Println("In stdio mode the bot reads chat messages as JSON lines on stdin")
	fmt.Println("and writes reply envelopes to stdout; logs go to stderr.")
}

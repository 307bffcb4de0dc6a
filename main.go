// Command giveaway-tender is the main entrypoint for the gamepass giveaway
// service. It:
//   - Loads configuration and initializes structured logging.
//   - Optionally connects to Postgres and runs idempotent migrations for the
//     round journal.
//   - Connects to the configured chat source (YouTube live chat or Twitch IRC).
//   - Runs the giveaway round loop: intake, winner selection, fulfillment.
//   - Exposes a minimal HTTP server with /healthz, /readyz, /status, /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // G108: pprof endpoints enabled only when ENABLE_PPROF=1
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/onnwee/giveaway-tender/chat"
	"github.com/onnwee/giveaway-tender/config"
	"github.com/onnwee/giveaway-tender/db"
	"github.com/onnwee/giveaway-tender/giveaway"
	"github.com/onnwee/giveaway-tender/roblox"
	"github.com/onnwee/giveaway-tender/server"
	"github.com/onnwee/giveaway-tender/telemetry"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		// unknown level -> keep info but note once using temporary logger
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()), slog.String("format", map[bool]string{true: "json", false: "text"}[format == "json"]))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.ValidateGiveawayReady(); err != nil {
		slog.Error("config validation failed", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("giveaway-tender", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Round journal (optional): enabled only when DB_DSN is set.
	var journal giveaway.Journal
	var database *sql.DB
	if cfg.DBDsn != "" {
		sqldb, err := db.Connect()
		if err != nil {
			slog.Error("failed to open db", slog.Any("err", err))
			os.Exit(1)
		}
		defer func() {
			if err := sqldb.Close(); err != nil {
				slog.Error("failed to close database", slog.Any("err", err))
			}
		}()
		slog.Info("running database migrations", slog.String("component", "db_migrate"))
		if err := db.Migrate(ctx, sqldb); err != nil {
			slog.Error("failed to migrate db", slog.Any("err", err))
			os.Exit(1)
		}
		journal = &db.RoundStore{DB: sqldb}
		database = sqldb
	} else {
		slog.Info("round journal disabled (DB_DSN not set)")
	}

	// Chat source: a failed session lookup is fatal, the stream must be live.
	var source chat.Source
	switch cfg.ChatSource {
	case config.SourceTwitch:
		tw := chat.NewTwitchSource(cfg.TwitchChannel, cfg.TwitchBotUsername, cfg.TwitchOAuthToken)
		defer tw.Close()
		source = tw
	default:
		yt, err := chat.NewYouTubeSource(ctx, cfg.YTVideoID, cfg.YTAPIKey)
		if err != nil {
			slog.Error("youtube live chat lookup failed", slog.Any("err", err), slog.String("video_id", cfg.YTVideoID))
			os.Exit(1)
		}
		source = yt
	}

	// Roblox client and giveaway pipeline
	client := &roblox.Client{Cookie: cfg.RobloxCookie}
	history := giveaway.NewWinHistory()
	sched := &giveaway.Scheduler{
		Source:        source,
		Resolver:      &giveaway.CatalogResolver{Client: client, MaxPrice: cfg.MaxPrice},
		Fulfiller:     &giveaway.CommerceFulfiller{Client: client},
		History:       history,
		Journal:       journal,
		CommandPrefix: cfg.CommandPrefix,
		RoundDuration: cfg.RoundDuration,
		MaxWins:       cfg.MaxWins,
		Cooldown:      cfg.Cooldown,
		PollInterval:  cfg.PollInterval,
	}

	// Enable pprof profiling endpoints in debug mode (ENABLE_PPROF=1)
	if os.Getenv("ENABLE_PPROF") == "1" {
		pprofAddr := os.Getenv("PPROF_ADDR")
		if pprofAddr == "" {
			pprofAddr = "localhost:6060"
		}
		go func() {
			slog.Info("pprof profiling enabled", slog.String("addr", pprofAddr))
			// Use an http.Server with timeouts to satisfy G114 and avoid DoS risks
			srv := &http.Server{
				Addr:              pprofAddr,
				Handler:           nil, // default mux exposes /debug/pprof
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      10 * time.Second,
				IdleTimeout:       60 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil {
				slog.Error("pprof server error", slog.Any("err", err))
			}
		}()
	}

	// HTTP server (health/readiness/status/metrics)
	handlers := &server.Handlers{
		DB:        database,
		Scheduler: sched,
		History:   history,
		Source:    source,
	}
	go func() {
		if err := server.Start(ctx, handlers, cfg.HTTPAddr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Round loop blocks until shutdown signal
	sched.Run(ctx)
	slog.Info("shutting down")
}

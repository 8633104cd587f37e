package main

//	@title						FleetPulse API
//	@version					0.2.0
//	@description				Global device status aggregation for companion devices.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/HerbHall/fleetpulse/api/swagger"
	"github.com/HerbHall/fleetpulse/internal/auth"
	"github.com/HerbHall/fleetpulse/internal/cloud"
	"github.com/HerbHall/fleetpulse/internal/config"
	"github.com/HerbHall/fleetpulse/internal/event"
	"github.com/HerbHall/fleetpulse/internal/history"
	"github.com/HerbHall/fleetpulse/internal/registry"
	"github.com/HerbHall/fleetpulse/internal/server"
	"github.com/HerbHall/fleetpulse/internal/status"
	"github.com/HerbHall/fleetpulse/internal/store"
	"github.com/HerbHall/fleetpulse/internal/version"
	"github.com/HerbHall/fleetpulse/internal/ws"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Println(version.Info())
		return
	}

	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Load configuration (before logger, so log level/format can be configured).
	viperCfg, err := server.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(viperCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("FleetPulse server starting", zap.String("version", version.Short()))

	if f := viperCfg.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded",
			zap.String("component", "config"),
			zap.String("source", f),
		)
	} else {
		logger.Warn("no configuration file found, using defaults",
			zap.String("component", "config"),
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open database.
	dbPath := viperCfg.GetString("database.path")
	db, err := store.New(dbPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.CheckVersion(ctx, version.Version); err != nil {
		logger.Fatal("database version check failed", zap.Error(err))
	}
	logger.Info("database initialized",
		zap.String("component", "database"),
		zap.String("path", dbPath),
	)

	bus := event.NewBus(logger.Named("event"))

	// Upstream clients.
	records := registry.NewClient(
		viperCfg.GetString("registry.base_url"),
		viperCfg.GetString("registry.api_key"),
		viperCfg.GetDuration("registry.timeout"),
	)
	probe := cloud.NewClient(
		viperCfg.GetString("cloud.base_url"),
		viperCfg.GetString("cloud.access_token"),
		viperCfg.GetDuration("cloud.timeout"),
		viperCfg.GetFloat64("cloud.probe_rps"),
		viperCfg.GetInt("cloud.probe_burst"),
	)
	logger.Info("upstream clients initialized",
		zap.String("registry", viperCfg.GetString("registry.base_url")),
		zap.String("cloud", viperCfg.GetString("cloud.base_url")),
	)

	// Status engine.
	productID := viperCfg.GetString("cloud.product_id")
	cache := status.NewCache(records, probe, status.NewReconciler(productID), status.Config{
		ProbeCooldown: viperCfg.GetDuration("status.probe_cooldown"),
		ProbeTimeout:  viperCfg.GetDuration("status.probe_timeout"),
		PageLimit:     viperCfg.GetInt("registry.page_limit"),
	}, logger.Named("status"))

	aliases := cloud.DefaultAliases()
	aliases.Merge(viperCfg.GetStringMapString("cloud.device_aliases"))
	cache.SetNameResolver(aliases)
	cache.SetBus(bus)

	if viperCfg.GetBool("cloud.lan_fallback.enabled") {
		lan := cloud.NewLANProbe(viperCfg.GetDuration("cloud.lan_fallback.ping_timeout"), logger.Named("lan"))
		cache.SetLANFallback(lan)
		logger.Info("LAN reachability fallback enabled", zap.String("component", "cloud"))
	}

	// History log.
	histStore, err := history.NewStore(ctx, db)
	if err != nil {
		logger.Fatal("failed to initialize history store", zap.Error(err))
	}
	recorder := history.NewRecorder(histStore, bus,
		viperCfg.GetDuration("history.retention_period"), logger.Named("history"))
	histHandler := history.NewHandler(histStore, logger.Named("history"))
	logger.Info("history store initialized", zap.String("component", "history"))

	// Refresh scheduler.
	ownerID := viperCfg.GetString("status.owner")
	contacts := viperCfg.GetStringSlice("status.contacts")
	scheduler := status.NewScheduler(cache,
		viperCfg.GetDuration("status.refresh_interval"), logger.Named("scheduler"))
	if ownerID != "" {
		scheduler.Start(ctx, ownerID, contacts)
	} else {
		logger.Warn("status.owner not configured, auto refresh disabled",
			zap.String("component", "scheduler"),
		)
	}

	// Auth.
	jwtSecret := viperCfg.GetString("auth.jwt_secret")
	if jwtSecret == "" {
		// Ephemeral secret -- tokens won't survive restarts.
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			logger.Fatal("failed to generate JWT secret", zap.Error(err))
		}
		jwtSecret = hex.EncodeToString(b)
		logger.Info("using auto-generated JWT secret (set auth.jwt_secret in config to persist sessions across restarts)",
			zap.String("component", "auth"),
		)
	}
	tokens := auth.NewTokenService([]byte(jwtSecret), viperCfg.GetDuration("auth.access_token_ttl"))
	authService := auth.NewService(tokens,
		viperCfg.GetString("auth.username"),
		viperCfg.GetString("auth.password_hash"),
		logger.Named("auth"))

	var authRegistrar server.RouteRegistrar
	var wsTokens ws.TokenValidator
	if authService.Enabled() {
		authRegistrar = authService
		wsTokens = authService
		logger.Info("operator authentication enabled", zap.String("component", "auth"))
	} else {
		logger.Warn("auth.password_hash not set, API is unauthenticated",
			zap.String("component", "auth"),
		)
	}

	// HTTP surface.
	statusHandler := status.NewHandler(cache, scheduler, ownerID, contacts, logger.Named("status"))
	wsHandler := ws.NewHandler(cache, bus, wsTokens, logger.Named("ws"))

	addr := viperCfg.GetString("server.host") + ":" + viperCfg.GetString("server.port")
	if addr == ":" {
		addr = "0.0.0.0:8080"
	}
	devMode := viperCfg.GetBool("server.dev_mode")
	readyCheck := server.ReadinessChecker(func(ctx context.Context) error {
		return db.DB().PingContext(ctx)
	})
	srv := server.New(addr, logger.Named("server"), readyCheck, authRegistrar, devMode,
		statusHandler, histHandler, wsHandler)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("FleetPulse server ready", zap.String("addr", addr))

	// Wait for shutdown signal.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	scheduler.Stop()
	recorder.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("FleetPulse server stopped")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/devdocai/piiguard/internal/cache"
	"github.com/devdocai/piiguard/internal/config"
	"github.com/devdocai/piiguard/internal/logger"
	"github.com/devdocai/piiguard/internal/privacy"
	"github.com/devdocai/piiguard/internal/reporting"
	"github.com/devdocai/piiguard/internal/server"
)

var (
	version = server.Version
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
		healthCheck = flag.Bool("health-check", false, "Perform health check and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("PIIGuard %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if *healthCheck {
		performHealthCheck()
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if cfg.Logging.File.Enabled {
		loggerConfig.File = &logger.FileConfig{
			Enabled:  cfg.Logging.File.Enabled,
			Path:     cfg.Logging.File.Path,
			MaxSize:  cfg.Logging.File.MaxSize,
			MaxAge:   cfg.Logging.File.MaxAge,
			Compress: cfg.Logging.File.Compress,
		}
	}

	log, err := logger.New(loggerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting PIIGuard",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("build_date", date),
		zap.Int("port", cfg.Server.Port),
	)

	library, err := privacy.NewDefaultLibrary(cfg.Detection.PatternFile)
	if err != nil {
		log.Fatal("Failed to build pattern library", zap.Error(err))
	}
	detector := privacy.NewDetector(library, privacy.DetectorConfig{
		MaxDocumentBytes: cfg.Detection.MaxDocumentBytes,
	})

	opts := server.Options{}
	if cfg.Cache.Enabled {
		scanCache, err := cache.NewScanCache(cache.Config{
			Address:  cfg.Cache.Address,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      cfg.Cache.TTL,
			PoolSize: cfg.Cache.PoolSize,
		}, log.WithComponent("cache").Logger)
		if err != nil {
			log.Fatal("Failed to initialize scan cache", zap.Error(err))
		}
		defer scanCache.Close()
		opts.ScanCache = scanCache
	}
	if cfg.Reporting.Enabled {
		store, err := reporting.NewStore(&reporting.Config{
			DatabaseURL:     cfg.Reporting.DatabaseURL,
			MaxConnections:  cfg.Reporting.MaxConnections,
			ConnMaxLifetime: cfg.Reporting.ConnMaxLifetime,
		}, log.WithComponent("reporting").Logger)
		if err != nil {
			log.Fatal("Failed to initialize report store", zap.Error(err))
		}
		defer store.Close()
		opts.Reports = store
	}

	srv := server.New(cfg, log, detector, opts)

	// Hot reload: config changes rebuild the pattern library without a
	// restart.
	if err := config.Watch(cfg, func(newCfg *config.Config) {
		recognizers, err := privacy.DefaultRecognizers()
		if err != nil {
			log.Error("Pattern reload failed", zap.Error(err))
			return
		}
		if newCfg.Detection.PatternFile != "" {
			overrides, err := privacy.LoadRecognizerFile(newCfg.Detection.PatternFile)
			if err != nil {
				log.Error("Pattern reload failed", zap.Error(err))
				return
			}
			if overrides != nil {
				recognizers = privacy.MergeRecognizers(recognizers, overrides.Recognizers)
			}
		}
		if err := srv.ReloadPatterns(recognizers); err != nil {
			log.Error("Pattern reload rejected", zap.Error(err))
			return
		}
		log.Info("Pattern library reloaded", zap.String("pattern_file", newCfg.Detection.PatternFile))
	}); err != nil {
		log.Warn("Config watch unavailable", zap.Error(err))
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Error("Server error", zap.Error(err))
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Give outstanding requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Stop(ctx); err != nil {
			log.Error("Failed to shutdown server gracefully", zap.Error(err))
			os.Exit(1)
		}

		log.Info("Server shutdown complete")
	}
}

// performHealthCheck performs a health check against the running server
func performHealthCheck() {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Get("http://localhost:8080/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: HTTP %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("Health check passed")
	os.Exit(0)
}

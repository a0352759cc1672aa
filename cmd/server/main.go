package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"parksmart/internal/api"
	"parksmart/internal/auth"
	"parksmart/internal/cache"
	"parksmart/internal/config"
	"parksmart/internal/database"
	"parksmart/internal/metrics"
	"parksmart/internal/notify"
	"parksmart/internal/service"
	"parksmart/internal/ticket"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("PARKSMART_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if cfg.Firebase.APIKey == "" {
		logger.Fatal().Msg("set firebase.api_key in config or FIREBASE_API_KEY")
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authn, err := auth.NewFirebaseAuthenticator(ctx, cfg.Firebase.APIKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("create firebase authenticator error")
	}

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	slots := cache.NewSlotCache(rdb, cfg.SlotCacheTTL(), logger)

	var notifier notify.Notifier
	if cfg.Email.Enabled && cfg.Email.APIKey != "" {
		notifier = notify.NewBrevoClient(notify.BrevoConfig{
			BaseURL:       cfg.Email.BaseURL,
			APIKey:        cfg.Email.APIKey,
			SenderName:    cfg.Email.SenderName,
			SenderEmail:   cfg.Email.SenderEmail,
			RatePerSecond: cfg.Email.RatePerSecond,
			Burst:         cfg.Email.Burst,
		}, logger)
	} else {
		logger.Warn().Msg("email delivery disabled")
		notifier = notify.NopNotifier{Log: logger}
	}

	renderer := ticket.NewRenderer(cfg.Storage.ArtifactsDir, logger)
	svc := service.New(db, authn, renderer, notifier, slots, logger)

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(cfg.Database.Path, database.BackupConfig{
			Enabled:       cfg.Backup.Enabled,
			Interval:      cfg.BackupInterval(),
			StoragePath:   cfg.Backup.Path,
			RetentionDays: cfg.Backup.RetentionDays,
		}, &logger)
		go backup.Start(ctx)
	}

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	server := api.NewHTTPServer(api.Config{
		Port:          cfg.Server.Port,
		PublicBaseURL: cfg.Server.PublicBaseURL,
		CORSOrigins:   cfg.Server.FrontendOrigins,
	}, svc, authn, logger)

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			logger.Error().Err(err).Msg("http shutdown error")
		}
	}()

	logger.Info().Int("port", cfg.Server.Port).Msg("parksmart server started")
	if err := server.Start(); err != nil {
		logger.Error().Err(err).Msg("http server error")
	}

	// Let in-flight ticket jobs finish before the process exits.
	svc.Wait()
	logger.Info().Msg("parksmart server stopped")
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

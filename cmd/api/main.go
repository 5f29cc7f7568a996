package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"safescribe.org/internal/auth"
	"safescribe.org/internal/config"
	"safescribe.org/internal/httpapi"
	"safescribe.org/internal/notes"
	"safescribe.org/internal/obs"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	configPath := flag.String("config", os.Getenv("SAFESCRIBE_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := obs.InitLogger(cfg.Logger.Level, "safescribe-api", version)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	obs.Init()
	obs.InitBuildInfo(version, commit)

	// Revocation store: Redis when configured, process-local otherwise.
	var (
		blacklist   auth.Blacklist
		readyProbe  httpapi.ReadyProbe
		redisClient *redis.Client
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		blacklist = auth.NewRedisBlacklist(redisClient)
		readyProbe = httpapi.ReadyProbe{Ping: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}}
		logger.Info("using redis revocation store", zap.String("addr", cfg.Redis.Addr))
	} else {
		blacklist = auth.NewMemoryBlacklist()
	}

	creds := auth.NewCredentialStore()
	codec, err := auth.NewTokenCodec(cfg.JWT.Secret,
		auth.WithIssuer(cfg.JWT.Issuer),
		auth.WithAudience(cfg.JWT.Audience),
		auth.WithTTL(cfg.JWT.TokenTTL.Std()),
	)
	if err != nil {
		logger.Fatal("token codec", zap.Error(err))
	}
	authSvc, err := auth.NewService(creds, codec, blacklist)
	if err != nil {
		logger.Fatal("auth service", zap.Error(err))
	}

	noteStore := notes.NewInMemory()

	api := httpapi.New(authSvc, noteStore, readyProbe, httpapi.Config{
		Version:       version,
		RateBurst:     cfg.RateLimit.Burst,
		RatePerSecond: cfg.RateLimit.PerSecond,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout.Std(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout.Std(),
		WriteTimeout:      cfg.Server.WriteTimeout.Std(),
		IdleTimeout:       cfg.Server.IdleTimeout.Std(),
	}

	logger.Info("starting safescribe-api",
		zap.String("version", version),
		zap.String("addr", srv.Addr),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer cancel()

	_ = srv.Shutdown(ctx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
	logger.Info("stopped")
}

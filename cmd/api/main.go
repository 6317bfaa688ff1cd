package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"cvstudio/api/internal/ai"
	"cvstudio/api/internal/app"
	"cvstudio/api/internal/authpw"
	"cvstudio/api/internal/avatars"
	"cvstudio/api/internal/config"
	"cvstudio/api/internal/export"
	"cvstudio/api/internal/history"
	"cvstudio/api/internal/search"
	"cvstudio/api/internal/session"
	"cvstudio/api/internal/store"
	"cvstudio/api/internal/template"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatal("apply migrations", zap.Error(err))
	}

	pg := store.NewPostgresStore(db)

	deps := app.Deps{
		Store:     pg,
		Passwords: authpw.NewService(pg),
		History:   history.New(cfg.SnapshotsDir),
		Assistant: ai.NewClient(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel),
		Log:       log,
	}

	registry := template.DefaultRegistry()
	deps.Registry = registry
	deps.Exporter = export.NewService(registry, log)

	// Optional backends. Each one missing degrades a feature, never the API.
	if cfg.RedisURL != "" {
		client, err := session.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, refresh sessions stay in postgres", zap.Error(err))
		} else {
			defer client.Close()
			deps.Refresh = session.NewRedisStore(client)
			deps.Catalog = template.NewCatalog(pg, registry, client, log)
		}
	}
	if deps.Catalog == nil {
		deps.Catalog = template.NewCatalog(pg, registry, nil, log)
	}

	var meili *search.Meili
	if cfg.MeiliURL != "" {
		meili = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey, log)
		defer meili.Close()
	}
	deps.Search = search.NewService(meili, search.NewPgFTS(db), log)

	if cfg.MinioEndpoint != "" {
		av, err := avatars.New(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Warn("minio unavailable, avatar uploads disabled", zap.Error(err))
		} else {
			deps.Avatars = av
		}
	}

	svc := app.New(cfg, deps)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.NewHTTPServer(svc, cfg.CORSOrigin, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	svc.Shutdown(shutdownCtx)
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
}

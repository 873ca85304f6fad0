package main

import (
	"DressCode/internal/config"
	"DressCode/internal/handlers"
	"DressCode/internal/middleware"
	"DressCode/internal/repo"
	"DressCode/internal/service"
	"DressCode/internal/storage"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		sugar.Fatalw("failed to get sql.DB", "error", err)
	}
	defer sqlDB.Close()

	var store storage.Store
	if cfg.S3Bucket != "" {
		store, err = storage.NewS3Store(ctx, cfg.S3Bucket, cfg.AWSRegion)
	} else {
		store, err = storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
	}
	if err != nil {
		sugar.Fatalw("failed to initialize storage", "error", err)
	}

	providers, closeProviders, err := service.NewProviders(ctx, cfg.TagProvider, cfg.TryOnProvider, cfg.GeminiAPIKey, cfg.GeminiModel, sugar)
	if err != nil {
		sugar.Fatalw("failed to initialize model providers", "error", err)
	}
	defer func() {
		if err := closeProviders(); err != nil {
			sugar.Warnw("failed to close model providers", "error", err)
		}
	}()

	userService := service.NewUserService(repo.NewUserRepository(gormDB))
	closetService := service.NewClosetService(repo.NewClosetRepository(gormDB), store, providers.Tagger, sugar)

	h := handlers.NewHandler(handlers.Deps{
		Users:     userService,
		Closet:    closetService,
		Providers: providers,
		Store:     store,
		Ping:      sqlDB.PingContext,
	}, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"DatabaseDSN", cfg.DatabaseDSN,
		"UploadDir", cfg.UploadDir,
		"S3Bucket", cfg.S3Bucket,
		"TagProvider", providers.Tagger.Name(),
		"TryOnProvider", providers.TryOn.Name(),
	)

	srv := &http.Server{Addr: addr, Handler: h.Router, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		sugar.Errorw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}

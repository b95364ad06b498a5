// @title        ProjectLink API
// @version      1.0
// @description  Social platform for students to publish projects, follow peers and track activity.
// @BasePath     /api
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/projectlink/projectlink-api/internal/api"
	"github.com/projectlink/projectlink-api/internal/core/ports"
	"github.com/projectlink/projectlink-api/internal/core/service"
	mongodb "github.com/projectlink/projectlink-api/internal/infrastructure/db/mongo"
	redisdb "github.com/projectlink/projectlink-api/internal/infrastructure/db/redis"
	"github.com/projectlink/projectlink-api/internal/infrastructure/http/handlers"
	"github.com/projectlink/projectlink-api/internal/infrastructure/queue"
	"github.com/projectlink/projectlink-api/internal/infrastructure/viewcache"
	"github.com/projectlink/projectlink-api/internal/pkg/config"
	"github.com/projectlink/projectlink-api/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	startupTimeout  = 30 * time.Second
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "projectlink-api",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, db, err := mongodb.ConnectWithRetry(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	}, cfg.Mongo.ConnectRetries, cfg.Mongo.RetryDelay, log)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		_ = client.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	userRepo := mongodb.NewUserRepository(db)
	projectRepo := mongodb.NewProjectRepository(db)

	indexCtx, indexDone := context.WithTimeout(ctx, startupTimeout)
	if err := userRepo.EnsureIndexes(indexCtx); err != nil {
		log.Fatal().Err(err).Msg("user indexes")
	}
	if err := projectRepo.EnsureIndexes(indexCtx); err != nil {
		log.Fatal().Err(err).Msg("project indexes")
	}
	indexDone()

	var background sync.WaitGroup

	var views ports.ViewDeduper
	switch cfg.Views.Backend {
	case "redis":
		views = redisdb.NewViewDeduper(rdb, cfg.Views.Cooldown)
	default:
		memory := viewcache.NewMemoryDeduper(cfg.Views.Cooldown, logger.Component("viewcache"))
		background.Add(1)
		go func() {
			defer background.Done()
			memory.Run(ctx, cfg.Views.SweepInterval)
		}()
		views = memory
	}

	reconciler := service.NewReconciler(userRepo, logger.Component("reconciler"))
	dispatcher := queue.NewDispatcher(cfg.Graph.RepairWorkers, reconciler.RepairEdge, logger.Component("repair-queue"))
	dispatcher.Start(ctx)
	background.Add(1)
	go func() {
		defer background.Done()
		reconciler.Run(ctx, cfg.Graph.ReconcileInterval)
	}()

	tx := mongodb.NewTxRunner(client, cfg.Mongo.Transactions)

	e := api.NewRouter(api.Services{
		Auth:       service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL),
		Projects:   service.NewProjectService(projectRepo, userRepo, views, logger.Component("projects")),
		Social:     service.NewSocialService(userRepo, projectRepo, tx, dispatcher, logger.Component("social")),
		Comments:   service.NewCommentService(projectRepo, userRepo, logger.Component("comments")),
		Feed:       service.NewFeedService(userRepo, projectRepo, redisdb.NewReadStateStore(rdb), cfg.Feed.NotificationWindow, logger.Component("feed")),
		Users:      service.NewUserService(userRepo),
		Admin:      service.NewAdminService(userRepo, projectRepo, logger.Component("admin")),
		Reconciler: reconciler,
	}, api.Options{
		JWTSecret:      cfg.JWTSecret,
		Development:    cfg.IsDevelopment(),
		CORSOrigins:    cfg.CORSOrigins,
		AuthRateLimit:  cfg.AuthRateLimit,
		AuthRateWindow: cfg.AuthRateWindow,
		Readiness: map[string]handlers.Check{
			"mongodb": handlers.MongoCheck(db),
			"redis":   handlers.RedisCheck(rdb),
		},
	}, log)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Env).Msg("ProjectLink API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info().Msg("shutting down")

	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}

	cancel()
	dispatcher.Wait()
	background.Wait()
}

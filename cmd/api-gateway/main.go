package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/hackathon-mentor-api/api/swagger"
	"github.com/noah-isme/hackathon-mentor-api/internal/bootstrap"
	"github.com/noah-isme/hackathon-mentor-api/internal/handler"
	"github.com/noah-isme/hackathon-mentor-api/internal/router"
	"github.com/noah-isme/hackathon-mentor-api/pkg/config"
	"github.com/noah-isme/hackathon-mentor-api/pkg/database"
	"github.com/noah-isme/hackathon-mentor-api/pkg/logger"
)

// @title Hackathon Mentor API
// @version 1.0.0
// @description Mentor distribution and AI judging for hackathon submissions
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to initialise dependencies", zap.Error(err))
	}
	defer app.Close()

	if err := database.Migrate(ctx, app.DB); err != nil {
		logr.Fatal("failed to apply migrations", zap.Error(err))
	}

	app.Evaluations.Start(ctx)
	defer app.Evaluations.Stop()

	engine := router.New(router.Deps{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Auth:           app.Auth,
		Metrics:        app.Metrics,
		Checks: map[string]handler.ReadinessCheck{
			"postgres": app.DB.PingContext,
			"redis":    app.CacheRepo.Ping,
		},
		Mentors:      handler.NewMentorHandler(app.Mentors),
		Assignments:  handler.NewAssignmentHandler(app.Assignments),
		Distribution: handler.NewDistributionHandler(app.Scheduler, app.Classifier),
		Evaluations:  handler.NewEvaluationHandler(app.Evaluations),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

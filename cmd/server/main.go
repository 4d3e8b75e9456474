package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"prodplan/internal/calendar"
	"prodplan/internal/catalog"
	"prodplan/internal/config"
	"prodplan/internal/db"
	"prodplan/internal/handler"
	"prodplan/internal/httpserver"
	"prodplan/internal/mq"
	"prodplan/internal/optimizer"
	"prodplan/internal/planner"
	"prodplan/internal/redis"
	"prodplan/internal/repository"
	"prodplan/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting prodplan server...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("catalog_url", cfg.Catalog.URL),
	)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	// Redis
	rdb := redis.NewClient(cfg.Redis)
	defer rdb.Close()

	// MQ publisher
	log.Info("Initializing MQ publisher...", zap.String("mq_url", cfg.MQ.URL))
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Repositories
	planRepo := repository.NewPlanRepository(dbConn, log)
	calendarRepo := repository.NewCalendarRepository(dbConn, log)
	userRepo := repository.NewUserRepository(dbConn, log)

	// Calendar
	cal := calendar.New(calendarRepo, log)
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := cal.Load(loadCtx); err != nil {
		log.Fatal("Failed to load calendar configuration", zap.Error(err))
	}
	loadCancel()

	// Catalog
	catalogClient := catalog.NewClient(
		cfg.Catalog.URL,
		rdb,
		time.Duration(cfg.Catalog.CacheTTL)*time.Second,
		log,
	)

	// Scheduling core
	plannerSvc := planner.New(cal, catalogClient, log)
	optimizerSvc := optimizer.New(cal, catalogClient, log)

	// HTTP
	authHandler := handler.NewAuthHandler(userRepo, cfg.JWT.Secret, log)
	planHandler := handler.NewPlanHandler(plannerSvc, planRepo, publisher, log)
	calendarHandler := handler.NewCalendarHandler(cal, log)
	optimizerHandler := handler.NewOptimizerHandler(optimizerSvc, log)

	router := httpserver.NewRouter(
		authHandler,
		planHandler,
		calendarHandler,
		optimizerHandler,
		cfg.JWT.Secret,
		dbConn,
		publisher,
		log,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router.Engine,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("prodplan server is fully initialized and running",
		zap.String("http_port", cfg.Server.Port),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down prodplan server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("prodplan server shutdown complete")
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/5sursyncIT/edusync-sub001/config"
	"github.com/5sursyncIT/edusync-sub001/internal/api/handler"
	"github.com/5sursyncIT/edusync-sub001/internal/api/router"
	"github.com/5sursyncIT/edusync-sub001/internal/dto"
	"github.com/5sursyncIT/edusync-sub001/internal/gateway"
	"github.com/5sursyncIT/edusync-sub001/internal/repository"
	"github.com/5sursyncIT/edusync-sub001/internal/service"
	"github.com/5sursyncIT/edusync-sub001/pkg/database"
	"github.com/5sursyncIT/edusync-sub001/pkg/jwt"
	applogger "github.com/5sursyncIT/edusync-sub001/pkg/logger"
	"github.com/5sursyncIT/edusync-sub001/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	// 1. configuration; a missing .env is fine
	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("gateway", cfg.Gateway.Mode),
		zap.String("log_level", cfg.Log.Level),
	)

	if err := dto.RegisterValidators(); err != nil {
		logger.Fatal("register validators", zap.Error(err))
	}

	checks := make(map[string]handler.HealthCheck)

	// 3. gateway
	var (
		gw    gateway.Gateway
		sqlDB *sql.DB
	)
	switch cfg.Gateway.Mode {
	case config.GatewayStore:
		db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			logger.Fatal("connect database", zap.Error(err))
		}
		sqlDB, err = db.DB()
		if err != nil {
			logger.Fatal("get sql.DB", zap.Error(err))
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			logger.Fatal("run migrations", zap.Error(err))
		}
		repo := repository.NewRepository(db)
		gw = gateway.NewStoreGateway(repo.Timetable, logger)
		checks["database"] = sqlDB.PingContext
	default:
		erp := gateway.NewERPClient(cfg.ERP, nil, logger)
		gw = erp
		checks["erp"] = func(ctx context.Context) error {
			_, err := erp.List(ctx, gateway.ListQuery{PageSize: 1})
			return err
		}
		logger.Info("using ERP gateway", zap.String("base_url", cfg.ERP.BaseURL))
	}

	// 4. Redis (optional: commit locks and rate limits fall back to process-local)
	var (
		rdb    *redis.Client
		locker service.CommitLocker = service.NewLocalLocker()
	)
	if cfg.Redis.Enabled() {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, using process-local locks", zap.Error(err))
			rdb = nil
		} else {
			locker = rdb
			checks["redis"] = rdb.Ping
		}
	}

	// 5. JWT (nil only when auth.allow_anonymous is set without a secret)
	var jwtMgr *jwt.Manager
	if cfg.Auth.Enabled() {
		jwtMgr = jwt.NewManager(&cfg.Auth)
	} else {
		logger.Warn("auth.allow_anonymous is set, every request runs as the local admin")
	}

	// 6. wiring: Gateway → Service → Handler
	svc := service.NewService(cfg, gw, locker, logger)
	if err := svc.Editing.Start(); err != nil {
		logger.Fatal("start session sweeper", zap.Error(err))
	}
	h := handler.NewHandler(svc, checks)

	// 7. router
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 8. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}
	if err := svc.Editing.Stop(ctx); err != nil {
		logger.Error("session sweeper shutdown", zap.Error(err))
	}
	if sqlDB != nil {
		sqlDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}

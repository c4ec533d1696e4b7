package server

import (
	"context"
	"date-booker/core/cache"
	"date-booker/core/config"
	"date-booker/core/constants"
	"date-booker/core/database"
	"date-booker/core/logger"
	"date-booker/core/middleware"
	"date-booker/core/queue"
	"date-booker/core/realtime"
	"date-booker/core/storage"
	"date-booker/core/utils"
	"date-booker/core/validator"
	"date-booker/modules/auth"
	"date-booker/modules/availability"
	"date-booker/modules/chat"
	"date-booker/modules/export"
	"date-booker/modules/instance"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Run wires every dependency, starts the HTTP server and the background worker
// and blocks until SIGINT or SIGTERM.
func Run() error {
	cfg, err := config.Get()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// Infrastructure

	db, err := database.InitDB(database.DatabaseConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	redisConfig := cache.RedisConfig{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	redisClient, err := cache.NewRedisClient(ctx, redisConfig)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cache.Options{
		MaxLoginAttempts: cfg.Auth.MaxJoinAttempts,
		BlockDuration:    cfg.Auth.BlockDuration,
	})
	broker := realtime.NewBroker(redisClient)

	objectStorage := storage.NewS3Storage(storage.S3Config{
		Endpoint:     cfg.Storage.Endpoint,
		Region:       cfg.Storage.Region,
		Bucket:       cfg.Storage.Bucket,
		AccessKey:    cfg.Storage.AccessKey,
		SecretKey:    cfg.Storage.SecretKey,
		UsePathStyle: cfg.Storage.UsePathStyle,
	})

	queueRedis := queue.RedisConfig{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	queueClient := queue.NewClient(queueRedis, cfg.Worker.TaskRetention)
	defer queueClient.Close()

	// =========================================================================
	// HTTP

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: utils.NewRequestID}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomw.BodyLimit(cfg.Server.BodyLimit))
	e.Use(middleware.RequestLogger())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	mw := middleware.NewMiddleware(cfg.JWT.Secret, redisCache)

	instanceService := instance.Init(e, db, mw, broker, cfg)
	availabilityService := availability.Init(e, db, mw, instanceService, broker)
	auth.Init(e, mw, instanceService, redisCache, cfg)
	messageService := chat.Init(e, db, mw, instanceService, broker)
	exportService := export.Init(e, mw, export.Dependencies{
		Instances:  instanceService,
		Boards:     availabilityService,
		Messages:   messageService,
		Queue:      queueClient,
		Storage:    objectStorage,
		PresignTTL: cfg.Storage.PresignTTL,
	})

	// =========================================================================
	// Worker

	if cfg.Worker.Enabled {
		worker := queue.NewWorker(queueRedis, queue.WorkerConfig{Concurrency: cfg.Worker.Concurrency})
		worker.Handle(constants.TaskInstanceExport, exportService.HandleExportTask)
		worker.Handle(constants.TaskInstanceCleanup, exportService.HandleCleanupTask)
		if cfg.Worker.CleanupCron != "" {
			if err := worker.Schedule(cfg.Worker.CleanupCron, constants.TaskInstanceCleanup, struct{}{}); err != nil {
				return err
			}
		}
		if err := worker.Start(); err != nil {
			return err
		}
		defer worker.Shutdown()
	}

	// =========================================================================
	// Serve until signalled

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", cfg.Server.Addr())
		if err := e.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server:Shutdown:Error", "error", err)
		return e.Close()
	}

	logger.Info("Server stopped")
	return nil
}

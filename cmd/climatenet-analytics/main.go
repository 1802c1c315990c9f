package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/climatenet-analytics/internal/api/http"
	"github.com/i474232898/climatenet-analytics/internal/app"
	"github.com/i474232898/climatenet-analytics/internal/config"
	"github.com/i474232898/climatenet-analytics/internal/logging"
	"github.com/i474232898/climatenet-analytics/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync()

	service := app.NewService(cfg, zlog)

	// Scheduler that keeps today's extremes and the ranking warm.
	sched := scheduler.New(service, cfg.RefreshInterval, cfg.RecommendationsAt, zlog)
	if err := sched.Start(); err != nil {
		zlog.Fatalw("failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	fiberApp := fiber.New(fiber.Config{
		AppName:               "climatenet-analytics",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Cache misses run a full scan.
		WriteTimeout: 10 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	fiberApp.Use(logger.New())
	fiberApp.Use(recover.New())

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "climatenet-analytics",
		})
	})

	httpapi.RegisterRoutes(fiberApp, service)

	go func() {
		if err := fiberApp.Listen(":" + cfg.Port); err != nil {
			zlog.Infow("fiber server stopped", "error", err)
		}
	}()
	zlog.Infow("listening", "port", cfg.Port)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Warnw("error during shutdown", "error", err)
	}
}

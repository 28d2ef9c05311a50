package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"

	httpapi "github.com/fairchild/envmonitor/internal/api/http"
	"github.com/fairchild/envmonitor/internal/config"
	"github.com/fairchild/envmonitor/internal/dashboard"
	"github.com/fairchild/envmonitor/internal/logging"
	"github.com/fairchild/envmonitor/internal/metrics"
	"github.com/fairchild/envmonitor/internal/monitor"
	"github.com/fairchild/envmonitor/internal/monitor/adapters"
	"github.com/fairchild/envmonitor/internal/scheduler"
	"github.com/fairchild/envmonitor/internal/store"
)

const appName = "envmonitor"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.AppEnv, logging.ParseLevel(cfg.LogLevel), appName)
	slog.SetDefault(logger)

	ctx := context.Background()

	// Storage backend.
	var st monitor.Store
	var pg *store.PostgresStore
	switch cfg.StoreBackend {
	case "postgres":
		pg, err = store.NewPostgresStore(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		st = pg
	default:
		st = store.NewMemoryStore(cfg.StoreMaxHistory)
	}

	if err := monitor.SeedWebcams(ctx, st); err != nil {
		slog.Error("failed to seed webcams", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	health := monitor.NewHealthTracker(st)
	upserter := monitor.NewFireUpserter(st)

	if cfg.AirNowAPIKey == "" {
		slog.Warn("AIRNOW_API_KEY not set; air quality fetches will fail")
	}

	srcAdapters := []monitor.Adapter{
		adapters.NewStationWeatherAdapter(httpClient, st, cfg.WeatherBaseURL),
		adapters.NewGriddedForecastAdapter(httpClient, st, cfg.MeteoBaseURL),
		adapters.NewMarineAdapter(httpClient, st, cfg.MarineBaseURL),
		adapters.NewAirQualityAdapter(httpClient, st, cfg.AirQualityBaseURL, cfg.AirNowAPIKey),
		adapters.NewWildfireAdapter(httpClient, upserter, cfg.FireBaseURL),
	}

	service := monitor.NewService(srcAdapters, health, collector)

	sched := scheduler.New(service, cfg.Intervals)
	if err := sched.Start(); err != nil {
		slog.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	dashboards := dashboard.NewService(st, collector, cfg.DashboardCacheTTL)

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
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

	app.Use(requestid.New())
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, dashboards, service, registry)

	go func() {
		slog.Info("starting http server", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal.
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "error", err)
	}
}

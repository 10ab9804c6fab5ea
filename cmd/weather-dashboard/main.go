package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	httpapi "github.com/surabhi-app/the-weather-forecasting-app/internal/api/http"
	"github.com/surabhi-app/the-weather-forecasting-app/internal/config"
	"github.com/surabhi-app/the-weather-forecasting-app/internal/scheduler"
	"github.com/surabhi-app/the-weather-forecasting-app/internal/store"
	"github.com/surabhi-app/the-weather-forecasting-app/internal/weather"
	"github.com/surabhi-app/the-weather-forecasting-app/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck
	zap.ReplaceGlobals(zlog)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory history for the watch-list, with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	provs := buildProviders(cfg, httpClient, zlog)
	service := weather.NewService(memStore, provs, cfg.DescriptionPriority, zlog)

	sched := scheduler.New(cfg.Locations, cfg.FetchInterval, service, zlog)
	if err := sched.Start(); err != nil {
		zlog.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * cfg.HTTPTimeout,
		ErrorHandler:          errorHandler(zlog),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD",
	}))
	app.Use(logger.New(logger.Config{
		Format:     "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: time.RFC3339,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   "weather-dashboard",
			"providers": cfg.Providers,
		})
	})

	httpapi.RegisterRoutes(app, service)

	go func() {
		addr := ":" + cfg.Port
		zlog.Info("starting server", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			zlog.Error("fiber server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}

func buildProviders(cfg *config.AppConfig, client *http.Client, zlog *zap.Logger) []weather.Provider {
	geo := providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)

	var provs []weather.Provider
	for _, name := range cfg.Providers {
		switch name {
		case config.ProviderOpenWeather:
			if cfg.OpenWeatherAPIKey == "" {
				zlog.Warn("OPENWEATHER_API_KEY not set; skipping provider", zap.String("provider", name))
				continue
			}
			provs = append(provs, providers.NewOpenWeatherProvider(client, providers.OpenWeatherConfig{
				APIKey: cfg.OpenWeatherAPIKey,
				Units:  cfg.OpenWeatherUnits,
			}, zlog))
		case config.ProviderOpenMeteo:
			if geo == nil {
				zlog.Info("GEOCODER_API_KEY not set; open-meteo will only serve coordinate searches")
				provs = append(provs, providers.NewOpenMeteoProvider(client, nil, zlog))
				continue
			}
			provs = append(provs, providers.NewOpenMeteoProvider(client, geo, zlog))
		}
	}
	if len(provs) == 0 {
		zlog.Warn("no weather providers available; dashboard searches will fail")
	}
	return provs
}

// errorHandler renders every error as {"error": true, "message": ...}.
func errorHandler(zlog *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			zlog.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{
			"error":   true,
			"message": err.Error(),
		})
	}
}

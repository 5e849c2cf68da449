package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"outreachDesk/internal/config"
	transport "outreachDesk/internal/modules/gateway/interface"
	"outreachDesk/internal/modules/leads/application/usecase"
	leads "outreachDesk/internal/modules/leads/infrastructure"
	settings "outreachDesk/internal/modules/settings/infrastructure"
	stats "outreachDesk/internal/modules/stats/infrastructure"
	templates "outreachDesk/internal/modules/templates/infrastructure"
	"outreachDesk/internal/platform/apiclient"
	"outreachDesk/internal/platform/broker"
	"outreachDesk/internal/shared/auth"
	"outreachDesk/internal/shared/logging"
)

func main() {
	// Load .env so local runs pick up overrides.
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logger, logFile, err := logging.OpenDaily(cfg.Logging.Directory, logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	apiCfg := apiclient.Config{Token: cfg.API.Token, BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout}
	api := apiclient.New(apiCfg, nil, logger)
	slog.Info("backend api configured",
		slog.String("baseUrl", api.Config().BaseURL),
		slog.Duration("timeout", api.Config().Timeout),
		slog.String("token", api.Config().RedactedToken()))
	if !api.Config().HasValidToken() {
		slog.Warn("backend api token is missing, the development mock or expired")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	leadsClient := leads.NewLeadsHTTPClient(api)
	watchers := usecase.NewPollerRegistry(ctx, leadsClient, logger)
	defer watchers.Close()

	slog.Info("kafka config resolved",
		slog.Any("brokers", cfg.Kafka.Brokers),
		slog.String("group", cfg.Kafka.GroupID),
		slog.String("topic", cfg.Kafka.ImportTopic))
	waitConsumers := broker.StartImportConsumers(ctx,
		broker.RefetchHandler(watchers, logger),
		cfg.Kafka.Brokers, cfg.Kafka.GroupID, []string{cfg.Kafka.ImportTopic}, logger)

	validator := auth.NewHMACValidator(cfg.Security.JWTSecret)
	if !validator.Enabled() {
		slog.Warn("JWT_SECRET not set, gateway accepts unauthenticated requests")
	}

	handler := transport.NewHandler(transport.Services{
		Settings:  settings.NewSettingsHTTPClient(api),
		Stats:     stats.NewStatsHTTPClient(api),
		Templates: templates.NewTemplatesHTTPClient(api, logger),
		Leads:     leadsClient,
		Watchers:  watchers,
	}, validator, logger)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	handler.Register(e)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", slog.Any("error", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", slog.Any("error", err))
	}
	cancel()
	waitConsumers()
}

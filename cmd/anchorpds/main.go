package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"

	"github.com/dropanchorapp/anchorpds/client"
	"github.com/dropanchorapp/anchorpds/internal/config"
	"github.com/dropanchorapp/anchorpds/internal/infra/cache"
	"github.com/dropanchorapp/anchorpds/internal/infra/database"
	"github.com/dropanchorapp/anchorpds/internal/infra/repository"
	"github.com/dropanchorapp/anchorpds/internal/present/rest"
	"github.com/dropanchorapp/anchorpds/internal/present/rest/middleware"
	"github.com/dropanchorapp/anchorpds/internal/service"
	"github.com/dropanchorapp/anchorpds/internal/usecase"
)

func main() {
	configPath := flag.String("c", "config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if conf.Server.EnableTrace {
		shutdown, err := setupTracer(conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("Failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer shutdown()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("Failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = database.MigratePostgres(db)
	if err != nil {
		slog.Error("Failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	checkinRepo := repository.NewCheckinRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	var records usecase.RecordCache
	if conf.Server.MemcachedAddr != "" {
		records = cache.NewMemcachedRecords(database.NewMemcached(conf.Server.MemcachedAddr))
	} else {
		records = cache.NewLocalRecords()
	}

	signal := service.NewSignalService(nil)
	if conf.Server.RedisAddr != "" {
		signal = service.NewSignalService(database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB))
	}

	sessions := client.New(conf.Auth.Timeout())
	identity := service.NewIdentityService(conf.Auth, sessions)

	checkinUC := usecase.NewCheckinUsecase(checkinRepo, settingsRepo, records, signal)
	settingsUC := usecase.NewSettingsUsecase(settingsRepo)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("anchorpds"))
	}

	auth := middleware.NewAuthMiddleware(identity)
	e.Use(auth.IdentifyRequester)

	handler := rest.NewHandler(checkinUC, settingsUC, signal)
	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.Listen))
}

func setupTracer(endpoint string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint))
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName("anchorpds")),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			slog.Error("Failed to shut down tracer", slog.String("error", err.Error()))
		}
	}, nil
}

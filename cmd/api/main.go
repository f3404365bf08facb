package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/backoffice-api/internal/auth"
	"github.com/joao-fontenele/backoffice-api/internal/config"
	"github.com/joao-fontenele/backoffice-api/internal/cupons"
	"github.com/joao-fontenele/backoffice-api/internal/httpapi"
	"github.com/joao-fontenele/backoffice-api/internal/messaging"
	"github.com/joao-fontenele/backoffice-api/internal/orders"
	"github.com/joao-fontenele/backoffice-api/internal/products"
	"github.com/joao-fontenele/backoffice-api/internal/telemetry"
)

const (
	serviceName    = "backoffice-api"
	serviceVersion = "0.1.0"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadAPI(".env")
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	db, err := telemetry.OpenDB(cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var (
		orderEvents orders.Publisher
		cuponEvents cupons.Publisher
	)
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		orderProducer := messaging.NewProducer(brokers, messaging.TopicOrderEvents)
		defer func() { _ = orderProducer.Close() }()
		cuponProducer := messaging.NewProducer(brokers, messaging.TopicCuponEvents)
		defer func() { _ = cuponProducer.Close() }()

		orderEvents = orderProducer
		cuponEvents = cuponProducer
	} else {
		logger.Warn("KAFKA_BROKERS not set, domain events will not be published")
	}

	orderService := orders.NewService(orders.NewOrderRepository(db), orderEvents, orders.WithLogger(logger))
	cuponService := cupons.NewService(cupons.NewCuponRepository(db), cuponEvents, cupons.WithLogger(logger))
	productService := products.NewService(products.NewProductRepository(db))

	limiter := httpapi.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)

	router := httpapi.NewRouter(httpapi.Handlers{
		Orders:   orders.NewHandler(orderService, logger),
		Cupons:   cupons.NewHandler(cuponService, logger),
		Products: products.NewHandler(productService, logger),
	}, httpapi.RouterConfig{
		Auth:        auth.NewMiddleware(cfg.JWTSecret, logger),
		RateLimiter: limiter,
		Metrics:     metricsHandler,
		TrustProxy:  cfg.TrustProxy,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(router, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	pruneCtx, stopPrune := context.WithCancel(ctx)
	defer stopPrune()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-pruneCtx.Done():
				return
			case now := <-ticker.C:
				limiter.Prune(now)
			}
		}
	}()

	go func() {
		logger.Info("starting backoffice api", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

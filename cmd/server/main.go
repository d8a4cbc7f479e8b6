package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/config"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/export"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/service"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/internal/storage/postgres"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
	"github.com/mmynk/settleup/pkg/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", logging.KeyError, err)
		os.Exit(1)
	}
	if cfg.UsingDefaultSecret() {
		logger.Warn("JWT_SECRET is not set, using the development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed", logging.KeyError, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "backend", cfg.DataBackend)

	publisher, err := openPublisher(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize events: %w", err)
	}
	defer publisher.Close()

	m := metrics.New()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)
	notifier := service.NewNotifier(store, publisher, m, logger)

	opts := connect.WithInterceptors(
		m.Interceptor(),
		middleware.RequireAuth(jwtManager, apiconnect.PublicAuthProcedures...),
		middleware.LoggingInterceptor(logger),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(service.NewAuthService(authenticator, jwtManager, store, logger), opts))
	mux.Handle(apiconnect.NewGroupServiceHandler(service.NewGroupService(store, notifier, logger), opts))
	mux.Handle(apiconnect.NewExpenseServiceHandler(service.NewExpenseService(store, notifier, logger), opts))
	mux.Handle(apiconnect.NewSettlementServiceHandler(service.NewSettlementService(store, notifier, m, logger), opts))
	mux.Handle(apiconnect.NewCategoryServiceHandler(service.NewCategoryService(store, logger), opts))
	mux.Handle(apiconnect.NewNotificationServiceHandler(service.NewNotificationService(store, logger), opts))

	mux.Handle("/export/", middleware.RequireAuthHTTP(jwtManager, export.NewHandler(store, logger)))
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if cfg.StaticPath != "" {
		static, err := staticHandler(cfg.StaticPath)
		if err != nil {
			return err
		}
		mux.Handle("/", static)
		logger.Info("Serving static files", "path", cfg.StaticPath)
	}

	handler := middleware.RequestLogger(logger, middleware.CORS(cfg.AllowOrigin, mux))

	server := &http.Server{
		Addr: ":" + cfg.Port,
		// h2c serves HTTP/2 without TLS, which Connect's gRPC protocol needs.
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", server.Addr, "url", "http://localhost:"+cfg.Port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.DataBackend {
	case config.BackendPostgres:
		return postgres.New(ctx, postgres.DefaultConfig(cfg.DatabaseURL))
	default:
		return sqlite.New(cfg.SQLiteDBPath)
	}
}

func openPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		return events.NewLogPublisher(logger), nil
	}
	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, err
	}
	logger.Info("Publishing events to AMQP", "exchange", cfg.AMQPExchange)
	return publisher, nil
}

// staticHandler serves the frontend. Unknown paths get index.html so client-side
// routes survive a reload.
func staticHandler(path string) (http.Handler, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve static path: %w", err)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/settleup.v1.") {
			http.NotFound(w, r)
			return
		}
		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}
		filePath := filepath.Join(dir, filepath.Clean(urlPath))
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		http.ServeFile(w, r, filePath)
	}), nil
}

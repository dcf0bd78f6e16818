package app

import (
	"context"
	"errors"
	"feedloader/internal/config"
	"feedloader/internal/logger"
	"feedloader/internal/migrations"
	server "feedloader/internal/transport/http"
	"feedloader/internal/usecase"
	"feedloader/storage"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App представляет эталонный сервер страниц лент.
// Координирует HTTP-сервер, базу данных и систему логирования.
// Обеспечивает graceful startup и shutdown.
type App struct {
	config   *config.Config
	logger   *slog.Logger
	server   *http.Server
	storage  storage.Storage
	stopChan chan os.Signal
	wg       sync.WaitGroup
}

// New создает и инициализирует сервер страниц.
// Выполняет настройку логгера, подключение к базе данных, применение миграций
// и сборку HTTP-обработчиков. Возвращает ошибку в случае сбоя любой из процедур.
func New(cfg *config.Config) (*App, error) {
	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	slog.SetDefault(appLogger)
	ctx := context.Background()
	dbPool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if err := migrations.Apply(ctx, appLogger, dbPool); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("migrations failed: %w", err)
	}
	dbStorage := storage.NewPostgresPostDB(dbPool, appLogger)

	feedNames := make([]string, 0, len(cfg.Feeds))
	for _, feed := range cfg.Feeds {
		feedNames = append(feedNames, feed.Name)
	}
	pageGetter := usecase.NewPageGetterUseCase(dbStorage, cfg.Engine.PageSize, feedNames)

	router := NewRouter(appLogger, pageGetter, NewRegistry())

	return &App{
		config:  cfg,
		logger:  appLogger,
		storage: dbStorage,
		server: &http.Server{
			Addr:              cfg.Server.Address,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		stopChan: make(chan os.Signal, 1),
	}, nil
}

// NewRegistry создает реестр Prometheus со стандартными коллекторами процесса.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewRouter собирает обработчики сервера страниц и эндпоинт /metrics поверх reg.
func NewRouter(log *slog.Logger, pages *usecase.PageGetterUseCase, reg *prometheus.Registry) http.Handler {
	handler := server.NewHandler(log, pages)
	return server.NewServer(log, handler, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}

// Run запускает HTTP-сервер и блокируется до сигнала завершения.
// Возвращает ошибку, если не удалось открыть порт.
func (a *App) Run() error {
	a.logger.Info("Starting feed page server",
		slog.String("component", "app"),
		slog.Int("feed_count", len(a.config.Feeds)),
		slog.Int("page_size", a.config.Engine.PageSize),
	)
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	a.logger.Info("HTTP server ready",
		slog.String("component", "server"),
		slog.String("address", listener.Addr().String()),
	)
	failed := make(chan struct{})
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server failed", slog.String("component", "server"), slog.Any("error", err))
			close(failed)
		}
	}()
	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-a.stopChan:
		a.logger.Info("Shutdown signal received",
			slog.String("component", "app"),
			slog.String("signal", sig.String()),
		)
	case <-failed:
		a.logger.Warn("Server stopped unexpectedly, initiating shutdown", slog.String("component", "app"))
	}
	return a.Shutdown()
}

// Shutdown выполняет graceful shutdown: завершает HTTP-сервер с таймаутом
// 10 секунд, закрывает хранилище и ожидает завершения горутин.
func (a *App) Shutdown() error {
	a.logger.Info("Starting graceful shutdown", slog.String("component", "app"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var shutdownErr error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", slog.Any("error", err))
		shutdownErr = fmt.Errorf("http shutdown: %w", err)
	}
	if a.storage != nil {
		a.storage.Close()
	}
	a.wg.Wait()
	a.logger.Info("Application stopped gracefully", slog.String("component", "app"))
	return shutdownErr
}

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"taskFlow/internal/auth"
	"taskFlow/internal/config"
	"taskFlow/internal/handlers"
	"taskFlow/internal/logger"
	"taskFlow/internal/metrics"
	"taskFlow/internal/migrations"
	"taskFlow/internal/repository/inmemory"
	"taskFlow/internal/repository/postgres"
	"taskFlow/internal/service"
	"taskFlow/internal/worker"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Storage - хранилище, обслуживающее все сервисы
type Storage interface {
	service.TaskRepository
	service.CategoryRepository
	service.UserRepository
	Close()
}

type App struct {
	config    *config.Config
	server    *http.Server
	handler   http.Handler
	storage   Storage
	worker    *worker.OverdueWorker
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(logger.Options{
		Development: a.config.Logging.Development,
		File:        a.config.Logging.File,
		MaxSizeMB:   a.config.Logging.MaxSizeMB,
		MaxBackups:  a.config.Logging.MaxBackups,
		MaxAgeDays:  a.config.Logging.MaxAgeDays,
	}); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	storage, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	a.storage = storage
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Закрытие хранилища...")
		storage.Close()
	})

	m := metrics.New()
	tokens := auth.NewTokenManager(a.config.Auth.JWTSecret, a.config.Auth.TokenTTL)

	taskService := service.NewTaskService(storage, storage, service.WithMetrics(m))
	categoryService := service.NewCategoryService(storage, service.WithMetrics(m))
	statsService := service.NewStatsService(storage, service.WithMetrics(m))
	userService := service.NewUserService(storage, tokens, service.WithMetrics(m))

	router := handlers.NewRouter(handlers.RouterConfig{
		Tasks:        taskService,
		Categories:   categoryService,
		Stats:        statsService,
		Users:        userService,
		Tokens:       tokens,
		Metrics:      m,
		RateLimitRPM: a.config.Server.RateLimitRPM,
		CORSOrigins:  a.config.Server.CORSOrigins,
	})
	a.handler = otelhttp.NewHandler(router, "taskflow")

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.handler,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	if a.config.Worker.Enabled {
		a.worker = worker.NewOverdueWorker(storage, a.config.Worker.OverdueSchedule, m)
	}

	logger.Info("Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.server.Addr),
		zap.Bool("worker", a.config.Worker.Enabled))
	return nil
}

func (a *App) openStorage(ctx context.Context) (Storage, error) {
	switch a.config.Repository.Type {
	case config.RepositoryInMemory:
		logger.Info("Используется in-memory хранилище")
		return inmemory.New(), nil
	case config.RepositoryPostgres:
		if a.config.Database.MigrateOnStart {
			if err := migrations.Up(a.config.Database.URL); err != nil {
				return nil, fmt.Errorf("миграции: %w", err)
			}
		}
		storage, err := postgres.New(ctx, a.config.Database.URL, postgres.PoolOptions{
			MaxConns:        int32(a.config.Database.MaxConnections),
			MinConns:        int32(a.config.Database.MinConnections),
			MaxConnIdleTime: a.config.Database.IdleTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("подключение к PostgreSQL: %w", err)
		}
		return storage, nil
	}
	return nil, fmt.Errorf("неизвестный тип хранилища %q", a.config.Repository.Type)
}

// Handler - корневой обработчик HTTP, доступен после Init
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run блокируется до отмены ctx или падения сервера, затем
// останавливает сервер и воркер и вызывает shutdowns в обратном порядке
func (a *App) Run(ctx context.Context) error {
	defer a.shutdown()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http сервер: %w", err)
		}
		return nil
	})

	if a.worker != nil {
		g.Go(func() error {
			return a.worker.Start(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Остановка сервера...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("остановка сервера: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *App) shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}

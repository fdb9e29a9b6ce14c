// Package auth собирает HTTP-приложение сервиса аутентификации:
// хранилище, миграции, публикацию событий, сервис и маршруты.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/auth-service/internal/config"
	"github.com/magabrotheeeer/auth-service/internal/events"
	"github.com/magabrotheeeer/auth-service/internal/lib/jwt"
	"github.com/magabrotheeeer/auth-service/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/auth-service/internal/lib/sl"
	"github.com/magabrotheeeer/auth-service/internal/migrations"
	authservice "github.com/magabrotheeeer/auth-service/internal/services/auth"
	"github.com/magabrotheeeer/auth-service/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App — HTTP-приложение сервиса аутентификации вместе с открытыми ресурсами.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	amqp   *amqp.Connection
}

// New подключает хранилище, применяет миграции и собирает маршруты.
// Отмена ctx прерывает подключение к базе при старте.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("migrations applied", slog.String("path", cfg.MigrationsPath))

	var (
		publisher authservice.EventPublisher = events.Noop{}
		conn      *amqp.Connection
	)
	if cfg.RabbitMQ.URL != "" {
		conn, err = rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.ConnectRetries, cfg.RetryDelay)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		ch, err := rabbitmq.SetupExchange(conn, cfg.Exchange)
		if err != nil {
			_ = conn.Close()
			_ = db.Close()
			return nil, err
		}
		publisher = events.NewPublisher(ch, cfg.Exchange)
		logger.Info("publishing events to rabbitmq", slog.String("exchange", cfg.Exchange))
	} else {
		logger.Info("rabbitmq url is empty, events are disabled")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.Secret, cfg.TokenTTL)
	authService := authservice.NewAuthService(db, jwtMaker, publisher, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:   logger,
		Service:  authService,
		Users:    db,
		JWTMaker: jwtMaker,
		Registry: registry,
	})

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   conn,
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливает сервер
// и закрывает хранилище и соединение с брокером.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}

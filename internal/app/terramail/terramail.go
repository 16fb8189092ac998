// Package terramail собирает основное приложение: хранилище, кэш, брокер,
// сервисы и HTTP-сервер.
package terramail

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/terramail/terramail-backend/internal/cache"
	"github.com/terramail/terramail-backend/internal/config"
	"github.com/terramail/terramail-backend/internal/lib/jwt"
	"github.com/terramail/terramail-backend/internal/lib/sl"
	"github.com/terramail/terramail-backend/internal/migrations"
	"github.com/terramail/terramail-backend/internal/rabbitmq"
	accountservice "github.com/terramail/terramail-backend/internal/services/account"
	authservice "github.com/terramail/terramail-backend/internal/services/auth"
	planservice "github.com/terramail/terramail-backend/internal/services/plan"
	sessionservice "github.com/terramail/terramail-backend/internal/services/session"
	statsservice "github.com/terramail/terramail-backend/internal/services/stats"
	throttleservice "github.com/terramail/terramail-backend/internal/services/throttle"
	"github.com/terramail/terramail-backend/internal/storage/repository"
)

// App агрегирует зависимости основного приложения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New инициализирует хранилище, миграции, кэш, брокер и все сервисы,
// собирает маршрутизатор и возвращает готовое приложение.
// Недоступный RabbitMQ не мешает старту: чеки о покупках просто не публикуются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var publisher accountservice.EventPublisher
	conn, err := rabbitmq.Connect(cfg.AddressRabbit, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		logger.Warn("rabbitmq is not available, purchase receipts disabled", sl.Err(err))
	} else {
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.DefaultQueues())
		if err != nil {
			logger.Warn("failed to setup rabbitmq channel, purchase receipts disabled", sl.Err(err))
		} else {
			publisher = rabbitmq.NewPublisher(ch)
		}
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	throttleService := throttleservice.New(db, logger, cfg.MaxFailures, cfg.Window)
	authService := authservice.NewAuthService(db, throttleService, jwtMaker, logger)
	accountService := accountservice.NewAccountService(db, publisher, logger)
	sessionService := sessionservice.NewSessionService(db, logger)
	planService := planservice.NewPlanService(db, cacheRedis, logger)
	statsService := statsservice.NewStatsService(db, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:     authService,
		Account:  accountService,
		Session:  sessionService,
		Plan:     planService,
		Stats:    statsService,
		Throttle: throttleService,
		Pinger:   db,
	}, jwtMaker)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и корректно останавливает его при отмене контекста.
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
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}

// Package notifier собирает фоновый сервис отправки чеков о покупках.
package notifier

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/terramail/terramail-backend/internal/config"
	"github.com/terramail/terramail-backend/internal/lib/smtp"
	"github.com/terramail/terramail-backend/internal/rabbitmq"
	notifierservice "github.com/terramail/terramail-backend/internal/services/notifier"
)

// App агрегирует зависимости сервиса уведомлений.
type App struct {
	conn            *amqp.Connection
	ch              *amqp.Channel
	notifierService *notifierservice.NotifierService
	logger          *slog.Logger
}

// New подключается к брокеру, объявляет очереди и собирает сервис уведомлений.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.AddressRabbit, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.DefaultQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	notifierService := notifierservice.NewNotifierService(transport, logger)

	return &App{
		conn:            conn,
		ch:              ch,
		notifierService: notifierService,
		logger:          logger,
	}, nil
}

// Run запускает потребителя очереди чеков и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.PurchaseQueue, a.notifierService.SendPurchaseReceipt)
	if err != nil {
		a.logger.Error("failed to start purchase receipts consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notifier service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}

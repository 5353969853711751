// Package sender assembles the notification binary that consumes
// renewal and expiry notices and emails the customer.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/vmcandles/commerce-api/internal/config"
	"github.com/vmcandles/commerce-api/internal/lib/rabbitmq"
	"github.com/vmcandles/commerce-api/internal/lib/smtp"
	"github.com/vmcandles/commerce-api/internal/services"
)

type App struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	sender *services.SenderService
	logger *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.OpenChannel(conn)
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	senderService := services.NewSenderService(transport, logger)

	return &App{
		conn:   conn,
		ch:     ch,
		sender: senderService,
		logger: logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.Consume(ctx, a.ch, "notification.renewed", a.sender.SendRenewalConfirmation)
	if err != nil {
		a.logger.Error("failed to start renewed notice consumer", slog.Any("err", err))
		return err
	}

	err = rabbitmq.Consume(ctx, a.ch, "notification.expired", a.sender.SendExpiryNotice)
	if err != nil {
		a.logger.Error("failed to start expiry notice consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	return nil
}

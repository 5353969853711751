// Package scheduler assembles the renewal sweep binary: it advances
// subscription billing periods and publishes renewal and expiry
// notices for the sender.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/vmcandles/commerce-api/internal/config"
	"github.com/vmcandles/commerce-api/internal/lib/rabbitmq"
	"github.com/vmcandles/commerce-api/internal/services"
	"github.com/vmcandles/commerce-api/internal/storage/repository"
)

type App struct {
	renewals *services.RenewalService
	conn     *amqp.Connection
	ch       *amqp.Channel
	interval time.Duration
	logger   *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.OpenChannel(conn)
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	return &App{
		renewals: services.NewRenewalService(db, rabbitmq.NewPublisher(ch), logger),
		conn:     conn,
		ch:       ch,
		interval: cfg.SweepInterval,
		logger:   logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", slog.Any("err", err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", slog.Any("err", err))
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	go a.renewals.Run(ctx, a.interval)

	<-ctx.Done()

	a.logger.Info("shutting down renewal scheduler")
	closeResources(a.ch, a.conn, a.logger)
	return nil
}
